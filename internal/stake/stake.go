package stake

import (
	"errors"

	"github.com/ErenVance/DoomsdayArk/internal/economy"
)

// OneShard is the minimum stake unit: one million tokens.
const OneShard = 1_000_000 * economy.LamportsPerToken

const (
	LockDuration        = economy.SecondsPerYear
	EarlyUnlockDuration = economy.SecondsPerDay
)

var (
	ErrOrderCompleted       = errors.New("stake: order already completed")
	ErrEarlyUnlockRequested = errors.New("stake: early unlock already requested")
	ErrCannotUnstake        = errors.New("stake: order is still locked")
	ErrInsufficientStaked   = errors.New("stake: insufficient staked balance")
	ErrInsufficientRewards  = errors.New("stake: insufficient reward budget")
	ErrNoActiveOrders       = errors.New("stake: no active orders")
)

// Pool aggregates all stake orders and carries the reward budgets
// orders reserve against.
type Pool struct {
	StakedAmount uint64

	DistributedTokenRewards   uint64
	BurnedTokenRewards        uint64
	DistributedVoucherRewards uint64
	BurnedVoucherRewards      uint64

	TokenRewardsPoolBalance   uint64
	VoucherRewardsPoolBalance uint64
	DistributableTokenRewards uint64

	OneShard            uint64
	AnnualRate          uint64
	EarlyUnlockRate     uint64
	LockDuration        uint64
	EarlyUnlockDuration uint64

	ActiveOrders uint32
}

// NewPool seeds a pool with its token and voucher reward budgets.
func NewPool(tokenRewards, voucherRewards uint64) *Pool {
	return &Pool{
		OneShard:                  OneShard,
		AnnualRate:                economy.AnnualRate,
		EarlyUnlockRate:           economy.EarlyUnlockAPR,
		LockDuration:              LockDuration,
		EarlyUnlockDuration:       EarlyUnlockDuration,
		TokenRewardsPoolBalance:   tokenRewards,
		DistributableTokenRewards: tokenRewards,
		VoucherRewardsPoolBalance: voucherRewards,
	}
}

// Reserve locks the stake and reserves the full-term token and
// voucher rewards against the pool budgets.
func (p *Pool) Reserve(stakeAmount, tokenRewards, voucherRewards uint64) error {
	if tokenRewards > p.DistributableTokenRewards {
		return ErrInsufficientRewards
	}
	if voucherRewards > p.VoucherRewardsPoolBalance {
		return ErrInsufficientRewards
	}
	p.StakedAmount += stakeAmount
	p.ActiveOrders++
	p.DistributableTokenRewards -= tokenRewards
	p.VoucherRewardsPoolBalance -= voucherRewards
	p.DistributedVoucherRewards += voucherRewards
	return nil
}

// BurnReservation returns clawed-back rewards to the burn tallies
// after an early unlock.
func (p *Pool) BurnReservation(burnedTokenRewards, burnedVoucherRewards uint64) error {
	if p.DistributedVoucherRewards < burnedVoucherRewards {
		return ErrInsufficientRewards
	}
	if p.TokenRewardsPoolBalance < burnedTokenRewards {
		return ErrInsufficientRewards
	}
	p.DistributedVoucherRewards -= burnedVoucherRewards
	p.TokenRewardsPoolBalance -= burnedTokenRewards
	p.BurnedTokenRewards += burnedTokenRewards
	p.BurnedVoucherRewards += burnedVoucherRewards
	return nil
}

// CompleteOrder removes a settled order from the pool and pays out
// its token reward reservation.
func (p *Pool) CompleteOrder(stakedAmount, tokenRewards uint64) error {
	if p.StakedAmount < stakedAmount {
		return ErrInsufficientStaked
	}
	if p.ActiveOrders == 0 {
		return ErrNoActiveOrders
	}
	if p.TokenRewardsPoolBalance < tokenRewards {
		return ErrInsufficientRewards
	}
	p.StakedAmount -= stakedAmount
	p.ActiveOrders--
	p.TokenRewardsPoolBalance -= tokenRewards
	p.DistributedTokenRewards += tokenRewards
	return nil
}

// Order is one player's stake position.
type Order struct {
	Number uint16

	StakeAmount    uint64
	TokenRewards   uint64
	VoucherRewards uint64

	CreatedTimestamp  uint64
	UnstakedTimestamp uint64

	AnnualRate   uint64
	LockDuration uint64

	IsEarlyUnstaked bool
	IsCompleted     bool
}

// NewOrder opens a position locked for lockDuration with its rewards
// reserved up front.
func NewOrder(number uint16, stakeAmount, annualRate, lockDuration, tokenRewards, voucherRewards, now uint64) *Order {
	return &Order{
		Number:            number,
		StakeAmount:       stakeAmount,
		TokenRewards:      tokenRewards,
		VoucherRewards:    voucherRewards,
		CreatedTimestamp:  now,
		UnstakedTimestamp: now + lockDuration,
		AnnualRate:        annualRate,
		LockDuration:      lockDuration,
	}
}

// RequestEarlyUnlock reprices the order at the early-unlock APR over
// the elapsed time. The voucher reservation is forfeited entirely and
// the position unlocks after the early-unlock delay.
func (o *Order) RequestEarlyUnlock(now, earlyUnlockRate, earlyUnlockDuration uint64) error {
	if o.IsEarlyUnstaked {
		return ErrEarlyUnlockRequested
	}
	elapsed := now - o.CreatedTimestamp
	repriced, err := economy.ProratedInterest(o.StakeAmount, earlyUnlockRate, elapsed)
	if err != nil {
		return err
	}
	o.LockDuration = elapsed
	o.TokenRewards = repriced
	o.VoucherRewards = 0
	o.AnnualRate = earlyUnlockRate
	o.UnstakedTimestamp = now + earlyUnlockDuration
	o.IsEarlyUnstaked = true
	return nil
}

// CanUnstake reports whether the position has unlocked.
func (o *Order) CanUnstake(now uint64) bool {
	return now >= o.UnstakedTimestamp
}

// Complete marks the order settled.
func (o *Order) Complete() error {
	if o.IsCompleted {
		return ErrOrderCompleted
	}
	o.IsCompleted = true
	return nil
}
