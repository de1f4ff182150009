package game

import (
	"context"
	"errors"

	"github.com/ErenVance/DoomsdayArk/internal/events"
	"github.com/ErenVance/DoomsdayArk/internal/lottery"
	"github.com/ErenVance/DoomsdayArk/internal/slots"
)

// slotHashProvider marks commits whose randomness resolves from the
// chain's slot hashes.
const slotHashProvider = "slot-hashes"

// DrawLottery commits a spin. The voucher stake joins the lottery pool
// and the draw locks to the previous slot; the result is revealed
// later against that slot's hash.
func (e *Engine) DrawLottery(ctx context.Context, playerID string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return 0, err
	}

	if e.state.LotteryRewardsPoolBalance < lottery.MinRewardsPoolBalance {
		return 0, ErrLotteryPoolTooLow
	}
	if !p.ResultRevealed {
		return 0, ErrResultNotRevealed
	}

	cost := uint64(lottery.DrawVoucherCost)
	if p.VoucherBalance < cost {
		return 0, ErrInsufficientFunds
	}

	slot, err := e.currentSlot(ctx)
	if err != nil {
		return 0, err
	}
	if slot == 0 {
		return 0, ErrRandomnessNotResolved
	}
	commitSlot := slot - 1

	e.state.LotteryRewardsPoolBalance += cost
	p.UpdateRandomness(slotHashProvider, commitSlot)

	if err := e.vouchers.Burn(cost); err != nil {
		return 0, err
	}
	if err := e.vault.Withdraw(cost); err != nil {
		return 0, err
	}
	p.VoucherBalance -= cost

	e.emit(events.TypeDrawLottery, events.InitiatorLottery, playerID, map[string]any{
		"player":      playerID,
		"bet_amount":  cost,
		"commit_slot": commitSlot,
	})
	return commitSlot, nil
}

// RevealResult resolves a committed spin against the hash of its
// commit slot and pays the multiplier from the lottery pool.
type RevealResult struct {
	Player         string   `json:"player"`
	Symbols        [3]uint8 `json:"symbols"`
	Multiplier     uint64   `json:"multiplier"`
	LotteryRewards uint64   `json:"lottery_rewards"`
}

func (e *Engine) RevealDrawLotteryResult(ctx context.Context, playerID string) (*RevealResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return nil, err
	}

	if p.CommitSlot == 0 || p.ResultRevealed {
		return nil, ErrRandomnessNotResolved
	}

	seed, err := e.slots.SlotHash(ctx, p.CommitSlot)
	if err != nil {
		if errors.Is(err, slots.ErrSlotUnavailable) {
			return nil, ErrRandomnessNotResolved
		}
		return nil, err
	}

	symbols := lottery.Spin(seed[:])
	multiplier := lottery.Multiplier(symbols)
	rewards := uint64(lottery.DrawVoucherCost) * multiplier

	// A pool that cannot cover the line fails the reveal without
	// consuming the commit, so the player can retry once it refills.
	if multiplier > 0 && e.state.LotteryRewardsPoolBalance < rewards {
		return nil, ErrInsufficientPoolBalance
	}

	p.SpinSymbols = symbols
	p.ResultMultiplier = multiplier
	p.ResultRevealed = true
	p.CommitSlot = 0

	if multiplier > 0 {
		e.state.LotteryRewardsPoolBalance -= rewards
		e.state.DistributedLotteryRewards += rewards
		p.CollectedLotteryRewards += rewards
		p.TokenBalance += rewards
	}

	res := &RevealResult{
		Player:         playerID,
		Symbols:        symbols,
		Multiplier:     multiplier,
		LotteryRewards: rewards,
	}
	e.emit(events.TypeRevealLottery, events.InitiatorLottery, playerID, res)
	return res, nil
}
