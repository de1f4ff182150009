package game

import (
	"context"

	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/events"
)

// ReinvestResult reports a reinvestment.
type ReinvestResult struct {
	Player        string `json:"player"`
	Round         uint16 `json:"round"`
	Period        uint16 `json:"period"`
	Team          string `json:"team"`
	PurchasedOres uint32 `json:"purchased_ores"`
	HalfCost      uint64 `json:"half_cost"`
}

// Reinvest converts pending construction rewards into new ores at
// double buying power: the player pays half the cost from their
// collectable rewards and the bonus pool matches the other half.
func (e *Engine) Reinvest(ctx context.Context, playerID string) (*ReinvestResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reinvest(ctx, playerID, false)
}

// AutoReinvest runs a reinvestment on behalf of a player who opted in.
// Only the bot authority may call it.
func (e *Engine) AutoReinvest(ctx context.Context, botAuthority, playerID string) (*ReinvestResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if botAuthority != e.state.BotAuthority {
		return nil, ErrUnauthorized
	}
	return e.reinvest(ctx, playerID, true)
}

func (e *Engine) reinvest(ctx context.Context, playerID string, auto bool) (*ReinvestResult, error) {
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
	if p.CurrentRound != r.Number {
		return nil, ErrNeedSettlePreviousRound
	}
	if p.IsExited {
		return nil, ErrAlreadyExited
	}
	if auto && !p.IsAutoReinvesting {
		return nil, ErrAutoReinvestNotEnabled
	}

	if err := p.Settle(r.EarningsPerOre); err != nil {
		return nil, err
	}

	rewards := p.CollectableConstructionRewards
	purchasedOres := uint32(rewards * 2 / economy.LamportsPerOre)
	if purchasedOres == 0 {
		return nil, ErrInsufficientReinvestment
	}

	totalCost := economy.LamportsPerOre * uint64(purchasedOres)
	halfCost := totalCost / 2

	constructionPool, err := economy.Sub(e.state.ConstructionRewardsPoolBalance, halfCost)
	if err != nil {
		return nil, err
	}
	bonusPool, err := economy.Sub(e.state.BonusRewardsPoolBalance, halfCost)
	if err != nil {
		return nil, err
	}
	p.CollectableConstructionRewards -= halfCost
	e.state.ConstructionRewardsPoolBalance = constructionPool
	e.state.BonusRewardsPoolBalance = bonusPool
	e.state.DistributedConstructionRewards += halfCost
	e.state.DistributedBonusRewards += halfCost

	p.CurrentRound = r.Number
	if p.CurrentPeriod != pd.Number {
		p.CurrentPeriod = pd.Number
		p.ResetPeriodData()
	}
	p.RecordPurchaseDay(e.today())

	alloc := economy.Allocate(totalCost)
	consumption := economy.Proportion(totalCost, economy.ConsumptionPoolShare)
	developer := economy.Proportion(totalCost, economy.ConsumptionPoolShare)

	e.state.ConstructionRewardsPoolBalance += alloc.Construction
	e.state.BonusRewardsPoolBalance += alloc.Bonus
	e.state.LotteryRewardsPoolBalance += alloc.Lottery
	if p.Referrer != DefaultPlayer {
		e.state.ReferralRewardsPoolBalance += alloc.Referral
	}
	r.GrandPrizePoolBalance += alloc.GrandPrizes

	if p.Referrer != DefaultPlayer {
		ref, err := e.playerByID(p.Referrer)
		if err != nil {
			return nil, err
		}
		ref.CollectableReferralRewards += alloc.Referral
	}

	r.AccrueEarnings(alloc.Construction)
	r.AddOres(purchasedOres)
	r.TouchParticipant(playerID)
	r.UpdateEndTime(now)

	if err := p.Settle(r.EarningsPerOre); err != nil {
		return nil, err
	}
	p.AvailableOres += purchasedOres
	p.PurchasedOres += purchasedOres

	t.UpdateCurrentPeriod(pd.Number)
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

	if e.state.ConsumptionRewardsPoolBalance >= developer {
		e.state.ConsumptionRewardsPoolBalance -= developer
		e.state.DistributableConsumptionRewards -= developer
		e.state.DeveloperRewardsPoolBalance += developer
	}

	if e.state.DistributableConsumptionRewards >= consumption {
		e.state.DistributableConsumptionRewards -= consumption
		p.CollectableConsumptionRewards += consumption
	}

	if p.Referrer == DefaultPlayer {
		e.burn(alloc.Referral)
	}

	res := &ReinvestResult{
		Player:        playerID,
		Round:         r.Number,
		Period:        pd.Number,
		Team:          p.Team,
		PurchasedOres: purchasedOres,
		HalfCost:      halfCost,
	}
	if auto {
		e.emit(events.TypeAutoReinvest, events.InitiatorSystem, e.state.BotAuthority, res)
	} else {
		e.emit(events.TypeReinvest, events.InitiatorPlayer, playerID, res)
	}
	return res, nil
}

// SetAutoReinvesting opts the player into bot-driven reinvestment.
func (e *Engine) SetAutoReinvesting(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return err
	}
	r, err := e.currentRound()
	if err != nil {
		return err
	}
	if r.IsOver {
		return ErrRoundOver
	}
	if p.IsAutoReinvesting {
		return ErrAutoReinvestEnabled
	}

	p.IsAutoReinvesting = true
	r.AutoReinvestingPlayers++

	e.emit(events.TypeSetAutoReinvest, events.InitiatorPlayer, playerID, map[string]string{"player": playerID})
	return nil
}

// CancelAutoReinvesting opts the player back out.
func (e *Engine) CancelAutoReinvesting(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return err
	}
	r, err := e.currentRound()
	if err != nil {
		return err
	}
	if r.IsOver {
		return ErrRoundOver
	}
	if !p.IsAutoReinvesting {
		return ErrAutoReinvestNotEnabled
	}
	if r.AutoReinvestingPlayers == 0 {
		return ErrAutoReinvestNotEnabled
	}

	p.IsAutoReinvesting = false
	r.AutoReinvestingPlayers--

	e.emit(events.TypeCancelAutoReinvest, events.InitiatorPlayer, playerID, map[string]string{"player": playerID})
	return nil
}
