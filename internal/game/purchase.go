package game

import (
	"context"

	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/events"
)

// PurchaseResult reports how a purchase settled. A zero-ore call is a
// round-end poke: RoundEndCall is set and no funds move.
type PurchaseResult struct {
	Player        string `json:"player"`
	Round         uint16 `json:"round"`
	Period        uint16 `json:"period"`
	Referrer      string `json:"referrer"`
	Team          string `json:"team"`
	PurchasedOres uint32 `json:"purchased_ores"`
	VoucherCost   uint64 `json:"voucher_cost"`
	TokenCost     uint64 `json:"token_cost"`

	RoundEndCall bool  `json:"round_end_call,omitempty"`
	CallCount    uint8 `json:"call_count,omitempty"`
	RoundIsOver  bool  `json:"round_is_over,omitempty"`
}

// Purchase buys ores in the current round, paying with vouchers first
// and tokens for the remainder. Calling with zero ores after the
// countdown expired records a round-end confirmation instead; ten
// confirmations spaced at least 150 slots apart finalize the round.
func (e *Engine) Purchase(ctx context.Context, playerID string, purchasedOres uint32) (*PurchaseResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return nil, err
	}
	r, err := e.currentRound()
	if err != nil {
		return nil, err
	}
	pd, err := e.currentPeriod()
	if err != nil {
		return nil, err
	}
	t, err := e.teamByID(p.Team)
	if err != nil {
		return nil, err
	}

	now := e.now()
	if r.StartTime > now {
		return nil, ErrRoundNotStarted
	}
	if r.IsOver {
		return nil, ErrRoundOver
	}

	// Countdown expired and no ores requested: this is an end call.
	if r.EndTime <= now && purchasedOres == 0 {
		slot, err := e.currentSlot(ctx)
		if err != nil {
			return nil, err
		}
		if r.RecordEndCall(slot) {
			pd.ClampEnd(now)
		}
		res := &PurchaseResult{
			Player:       playerID,
			Round:        r.Number,
			Period:       pd.Number,
			RoundEndCall: true,
			CallCount:    r.CallCount,
			RoundIsOver:  r.IsOver,
		}
		e.emit(events.TypeRoundEnd, events.InitiatorSystem, playerID, res)
		return res, nil
	}

	if purchasedOres == 0 {
		return nil, ErrInvalidAmount
	}
	if !p.IsExited && p.CurrentRound != r.Number {
		return nil, ErrNeedSettlePreviousRound
	}

	totalCost := economy.LamportsPerOre * uint64(purchasedOres)
	voucherCost := min(p.VoucherBalance, totalCost)
	tokenCost := totalCost - voucherCost
	if p.TokenBalance+p.VoucherBalance < totalCost {
		return nil, ErrInsufficientFunds
	}

	preOres := r.AvailableOres
	alloc := economy.Allocate(totalCost)
	consumption := economy.Proportion(tokenCost, economy.ConsumptionPoolShare)
	developer := economy.Proportion(tokenCost, economy.ConsumptionPoolShare)

	today := e.today()

	p.CurrentRound = r.Number
	if p.CurrentPeriod != pd.Number {
		p.ResetPeriodData()
	}
	p.CurrentPeriod = pd.Number
	p.RecordPurchaseDay(today)
	p.IsExited = false
	t.UpdateCurrentPeriod(pd.Number)

	// Before anyone holds ores the construction and bonus shares have
	// no recipients, so they roll into the grand prize instead.
	if preOres > 0 {
		e.state.ConstructionRewardsPoolBalance += alloc.Construction
		e.state.BonusRewardsPoolBalance += alloc.Bonus
	} else {
		r.GrandPrizePoolBalance += alloc.Construction + alloc.Bonus
	}
	e.state.LotteryRewardsPoolBalance += alloc.Lottery
	if p.Referrer != DefaultPlayer {
		e.state.ReferralRewardsPoolBalance += alloc.Referral
	}
	r.GrandPrizePoolBalance += alloc.GrandPrizes

	if preOres > 0 {
		r.AccrueEarnings(alloc.Construction)
	}

	r.AddOres(purchasedOres)
	r.TouchParticipant(playerID)
	r.UpdateEndTime(now)

	if err := p.Settle(r.EarningsPerOre); err != nil {
		return nil, err
	}
	p.AvailableOres += purchasedOres
	p.PurchasedOres += purchasedOres

	if p.Referrer != DefaultPlayer {
		ref, err := e.playerByID(p.Referrer)
		if err != nil {
			return nil, err
		}
		ref.CollectableReferralRewards += alloc.Referral
	}

	t.PurchasedOres += purchasedOres
	t.LastUpdatedTimestamp = now

	if pd.IsOngoing(now) {
		p.CurrentPeriodPurchasedOres += purchasedOres
		pd.UpdateTopPlayer(playerID, p.CurrentPeriodPurchasedOres)
		e.mirror.RecordPlayerOres(ctx, pd.Number, playerID, p.CurrentPeriodPurchasedOres)

		t.CurrentPeriodPurchasedOres += purchasedOres
		if p.Team != e.state.DefaultTeam {
			pd.UpdateTopTeam(p.Team, t.CurrentPeriodPurchasedOres)
			e.mirror.RecordTeamOres(ctx, pd.Number, p.Team, t.CurrentPeriodPurchasedOres)
		}
	}

	if developer > 0 && e.state.ConsumptionRewardsPoolBalance >= developer {
		e.state.ConsumptionRewardsPoolBalance -= developer
		e.state.DistributableConsumptionRewards -= developer
		e.state.DeveloperRewardsPoolBalance += developer
	}

	if consumption > 0 && e.state.DistributableConsumptionRewards >= consumption {
		e.state.DistributableConsumptionRewards -= consumption
		p.CollectableConsumptionRewards += consumption
	}

	if voucherCost > 0 {
		if err := e.vouchers.Burn(voucherCost); err != nil {
			return nil, err
		}
		if err := e.vault.Withdraw(voucherCost); err != nil {
			return nil, err
		}
		p.VoucherBalance -= voucherCost
	}
	p.TokenBalance -= tokenCost

	// An orphaned referral share is destroyed rather than pooled.
	if p.Referrer == DefaultPlayer {
		e.burn(alloc.Referral)
	}

	res := &PurchaseResult{
		Player:        playerID,
		Round:         r.Number,
		Period:        pd.Number,
		Referrer:      p.Referrer,
		Team:          p.Team,
		PurchasedOres: purchasedOres,
		VoucherCost:   voucherCost,
		TokenCost:     tokenCost,
	}
	e.emit(events.TypePurchase, events.InitiatorPlayer, playerID, res)
	return res, nil
}
