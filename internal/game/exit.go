package game

import (
	"github.com/ErenVance/DoomsdayArk/internal/economy"
	"github.com/ErenVance/DoomsdayArk/internal/events"
)

// ExitResult reports what an exit paid out.
type ExitResult struct {
	Player              string `json:"player"`
	Round               uint16 `json:"round"`
	AvailableOres       uint32 `json:"available_ores"`
	ConstructionRewards uint64 `json:"construction_rewards"`
	BonusRewards        uint64 `json:"bonus_rewards"`
	ExitRewards         uint64 `json:"exit_rewards"`
}

// Exit cashes a player out of the current round: accrued construction
// rewards plus the matching bonus, and whatever the exit drip has
// accumulated since the last exit. The player's ores leave the round.
func (e *Engine) Exit(playerID string) (*ExitResult, error) {
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
	if p.CurrentRound != r.Number {
		return nil, ErrNeedSettlePreviousRound
	}
	if p.IsExited {
		return nil, ErrAlreadyExited
	}
	if p.AvailableOres == 0 {
		return nil, ErrNoOresAvailable
	}

	if err := p.Settle(r.EarningsPerOre); err != nil {
		return nil, err
	}

	construction := p.CollectableConstructionRewards
	bonus := construction
	ores := p.AvailableOres

	constructionPool, err := economy.Sub(e.state.ConstructionRewardsPoolBalance, construction)
	if err != nil {
		return nil, err
	}
	bonusPool, err := economy.Sub(e.state.BonusRewardsPoolBalance, bonus)
	if err != nil {
		return nil, err
	}
	if err := r.SubtractOres(ores); err != nil {
		return nil, err
	}

	p.CollectableConstructionRewards = 0
	e.state.ConstructionRewardsPoolBalance = constructionPool
	e.state.DistributedConstructionRewards += construction
	e.state.BonusRewardsPoolBalance = bonusPool
	e.state.DistributedBonusRewards += bonus
	p.CollectedConstructionRewards += construction + bonus

	// The exit drip accrues round-wide; whoever exits first collects
	// what built up since the previous exit.
	elapsed := now - r.LastCollectedExitRewardTimestamp
	exitRewards := min(e.state.ExitRewardsPerSecond*elapsed, e.state.ExitRewardsPoolBalance)
	p.CollectedExitRewards += exitRewards
	r.LastCollectedExitRewardTimestamp = now
	e.state.ExitRewardsPoolBalance -= exitRewards
	e.state.DistributedExitRewards += exitRewards

	r.UpdateEndTime(now)

	p.ExitRound()
	p.TokenBalance += construction + bonus + exitRewards

	res := &ExitResult{
		Player:              playerID,
		Round:               r.Number,
		AvailableOres:       ores,
		ConstructionRewards: construction,
		BonusRewards:        bonus,
		ExitRewards:         exitRewards,
	}
	e.emit(events.TypeExit, events.InitiatorPlayer, playerID, res)
	return res, nil
}

// SettlePreviousRound closes a player's position in a finished round
// they never exited. Construction rewards only; the bonus and exit
// drip are forfeited.
func (e *Engine) SettlePreviousRound(playerID string) (*ExitResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return nil, err
	}
	if p.IsExited {
		return nil, ErrAlreadyExited
	}
	r, err := e.roundByNumber(p.CurrentRound)
	if err != nil {
		return nil, err
	}
	if !r.IsOver {
		return nil, ErrRoundNotOver
	}

	if err := p.Settle(r.EarningsPerOre); err != nil {
		return nil, err
	}

	construction := p.CollectableConstructionRewards
	ores := p.AvailableOres

	constructionPool, err := economy.Sub(e.state.ConstructionRewardsPoolBalance, construction)
	if err != nil {
		return nil, err
	}
	if err := r.SubtractOres(ores); err != nil {
		return nil, err
	}

	p.CollectableConstructionRewards = 0
	e.state.ConstructionRewardsPoolBalance = constructionPool
	e.state.DistributedConstructionRewards += construction
	p.CollectedConstructionRewards += construction
	p.ExitRound()
	p.TokenBalance += construction

	res := &ExitResult{
		Player:              playerID,
		Round:               r.Number,
		AvailableOres:       ores,
		ConstructionRewards: construction,
	}
	e.emit(events.TypeSettlePrevious, events.InitiatorPlayer, playerID, res)
	return res, nil
}
