package game

import (
	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/events"
	"github.com/ErenVance/DoomsdayArk/internal/stake"
)

// StakeResult reports an opened stake position.
type StakeResult struct {
	Player         string `json:"player"`
	OrderNumber    uint16 `json:"order_number"`
	StakeAmount    uint64 `json:"stake_amount"`
	TokenRewards   uint64 `json:"token_rewards"`
	VoucherRewards uint64 `json:"voucher_rewards"`
}

// Stake locks whole shards of tokens for a year. The full-term token
// reward is reserved up front and an equal amount of vouchers is paid
// to the player immediately.
func (e *Engine) Stake(playerID string, shards uint64) (*StakeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return nil, err
	}
	if shards == 0 {
		return nil, ErrInvalidAmount
	}

	stakeAmount := shards * e.stake.OneShard
	if p.TokenBalance < stakeAmount {
		return nil, ErrInsufficientFunds
	}

	orderNumber := p.Nonce
	tokenRewards := economy.Proportion(stakeAmount, e.stake.AnnualRate)
	voucherRewards := tokenRewards

	if err := e.stake.Reserve(stakeAmount, tokenRewards, voucherRewards); err != nil {
		return nil, err
	}
	e.state.DistributedStakeRewards += voucherRewards

	o := stake.NewOrder(orderNumber, stakeAmount, e.stake.AnnualRate, e.stake.LockDuration, tokenRewards, voucherRewards, e.now())
	if e.orders[playerID] == nil {
		e.orders[playerID] = make(map[uint16]*stake.Order)
	}
	e.orders[playerID][orderNumber] = o
	p.IncrementNonce()

	p.TokenBalance -= stakeAmount
	e.vouchers.Mint(voucherRewards)
	e.vault.Fund(voucherRewards)
	p.VoucherBalance += voucherRewards

	res := &StakeResult{
		Player:         playerID,
		OrderNumber:    orderNumber,
		StakeAmount:    stakeAmount,
		TokenRewards:   tokenRewards,
		VoucherRewards: voucherRewards,
	}
	e.emit(events.TypeStake, events.InitiatorStake, playerID, res)
	return res, nil
}

func (e *Engine) orderByNumber(playerID string, orderNumber uint16) (*stake.Order, error) {
	o, ok := e.orders[playerID][orderNumber]
	if !ok {
		return nil, ErrStakeOrderNotFound
	}
	return o, nil
}

// RequestEarlyUnstake reprices a locked position at the early-unlock
// APR over the time actually served. The difference against the
// original reservation is burned, including the voucher reward, which
// comes back out of the player's balance. The position then unlocks
// after a one-day delay.
func (e *Engine) RequestEarlyUnstake(playerID string, orderNumber uint16) (*StakeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return nil, err
	}
	if p.Nonce < orderNumber {
		return nil, ErrStakeOrderNotFound
	}
	o, err := e.orderByNumber(playerID, orderNumber)
	if err != nil {
		return nil, err
	}
	if o.IsCompleted {
		return nil, ErrStakeOrderNotFound
	}
	if o.IsEarlyUnstaked {
		return nil, ErrStakeOrderNotFound
	}
	now := e.now()
	if now >= o.UnstakedTimestamp {
		return nil, ErrStillLocked
	}
	if p.VoucherBalance < o.StakeAmount {
		return nil, ErrInsufficientFunds
	}

	tokenRewards := o.TokenRewards
	voucherRewards := o.VoucherRewards

	if err := o.RequestEarlyUnlock(now, e.stake.EarlyUnlockRate, e.stake.EarlyUnlockDuration); err != nil {
		return nil, err
	}

	burnedTokenRewards := tokenRewards - o.TokenRewards
	burnedVoucherRewards := voucherRewards - o.VoucherRewards

	e.state.DistributedStakeRewards -= burnedVoucherRewards
	if err := e.stake.BurnReservation(burnedTokenRewards, burnedVoucherRewards); err != nil {
		return nil, err
	}

	if err := e.vouchers.Burn(burnedVoucherRewards); err != nil {
		return nil, err
	}
	if err := e.vault.Withdraw(burnedVoucherRewards); err != nil {
		return nil, err
	}
	p.VoucherBalance -= burnedVoucherRewards
	e.burn(burnedTokenRewards + burnedVoucherRewards)

	res := &StakeResult{
		Player:         playerID,
		OrderNumber:    orderNumber,
		StakeAmount:    o.StakeAmount,
		TokenRewards:   o.TokenRewards,
		VoucherRewards: o.VoucherRewards,
	}
	e.emit(events.TypeRequestEarlyUnstake, events.InitiatorStake, playerID, res)
	return res, nil
}

// Unstake settles an unlocked position: the principal comes back with
// the reserved token reward.
func (e *Engine) Unstake(playerID string, orderNumber uint16) (*StakeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return nil, err
	}
	if p.Nonce < orderNumber {
		return nil, ErrStakeOrderNotFound
	}
	o, err := e.orderByNumber(playerID, orderNumber)
	if err != nil {
		return nil, err
	}
	if !o.CanUnstake(e.now()) {
		return nil, ErrStillLocked
	}

	stakeAmount := o.StakeAmount
	tokenRewards := o.TokenRewards

	if err := o.Complete(); err != nil {
		return nil, err
	}
	if err := e.stake.CompleteOrder(stakeAmount, tokenRewards); err != nil {
		return nil, err
	}
	e.state.DistributedStakeRewards += tokenRewards

	p.TokenBalance += stakeAmount + tokenRewards

	res := &StakeResult{
		Player:         playerID,
		OrderNumber:    orderNumber,
		StakeAmount:    stakeAmount,
		TokenRewards:   tokenRewards,
		VoucherRewards: o.VoucherRewards,
	}
	e.emit(events.TypeUnstake, events.InitiatorStake, playerID, res)
	return res, nil
}
