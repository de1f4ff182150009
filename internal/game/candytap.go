package game

import (
	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/events"
)

// CandyTapResult reports a sugar rush tap.
type CandyTapResult struct {
	Player                string `json:"player"`
	Round                 uint16 `json:"round"`
	LastActiveParticipant string `json:"last_active_participant"`
	TotalCost             uint64 `json:"total_cost"`
}

// CandyTap spends the sugar rush drip accrued since the last tap and
// runs it through the standard purchase allocation. All ore holders
// earn; the referral share goes to the most recent participant, and
// the tapper keeps the consumption share unless they are that
// participant themselves. No ores change hands.
func (e *Engine) CandyTap(playerID string) (*CandyTapResult, error) {
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

	now := e.now()
	if r.StartTime > now {
		return nil, ErrRoundNotStarted
	}
	if r.IsOver {
		return nil, ErrRoundOver
	}
	if p.AvailableOres == 0 {
		return nil, ErrNoOresAvailable
	}

	lastActive := r.LastActiveParticipants[0]
	la, err := e.playerByID(lastActive)
	if err != nil {
		return nil, err
	}

	elapsed := now - r.LastCollectedSugarRushRewardTimestamp
	totalCost := e.state.SugarRushRewardsPerSecond * elapsed
	if e.state.SugarRushRewardsPoolBalance < totalCost {
		return nil, ErrInsufficientPoolBalance
	}
	r.LastCollectedSugarRushRewardTimestamp = now
	e.state.SugarRushRewardsPoolBalance -= totalCost

	alloc := economy.Allocate(totalCost)
	consumption := economy.Proportion(totalCost, economy.ConsumptionPoolShare)
	developer := economy.Proportion(totalCost, economy.ConsumptionPoolShare)

	e.state.ConstructionRewardsPoolBalance += alloc.Construction
	e.state.BonusRewardsPoolBalance += alloc.Bonus
	e.state.LotteryRewardsPoolBalance += alloc.Lottery
	e.state.ReferralRewardsPoolBalance += alloc.Referral
	r.GrandPrizePoolBalance += alloc.GrandPrizes

	r.AccrueEarnings(alloc.Construction)
	r.UpdateEndTime(now)

	la.CollectableReferralRewards += alloc.Referral

	if e.state.ConsumptionRewardsPoolBalance >= developer {
		e.state.ConsumptionRewardsPoolBalance -= developer
		e.state.DistributableConsumptionRewards -= developer
		e.state.DeveloperRewardsPoolBalance += developer
	}

	if e.state.DistributableConsumptionRewards >= consumption {
		e.state.DistributableConsumptionRewards -= consumption
		if playerID == lastActive {
			la.CollectableConsumptionRewards += consumption
		} else {
			p.CollectableConsumptionRewards += consumption
		}
	}

	res := &CandyTapResult{
		Player:                playerID,
		Round:                 r.Number,
		LastActiveParticipant: lastActive,
		TotalCost:             totalCost,
	}
	e.emit(events.TypeCandyTap, events.InitiatorPlayer, playerID, res)
	return res, nil
}
