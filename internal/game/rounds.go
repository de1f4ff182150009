package game

import (
	"github.com/ErenVance/DoomsdayArk/internal/events"
	"github.com/ErenVance/DoomsdayArk/internal/period"
	"github.com/ErenVance/DoomsdayArk/internal/round"
)

// CreateRound opens the next mining round. The initial grand prize
// comes out of the round rewards budget, and whatever sits in the
// bonus pool rolls into it on top.
func (e *Engine) CreateRound(botAuthority string, startTime, countdownSeconds, initialGrandPrizes uint64) (*round.Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if botAuthority != e.state.BotAuthority {
		return nil, ErrUnauthorized
	}
	now := e.now()
	if startTime < now {
		return nil, ErrInvalidAmount
	}
	if countdownSeconds == 0 {
		return nil, ErrInvalidAmount
	}
	if initialGrandPrizes > e.state.RoundRewardsPoolBalance {
		return nil, ErrInsufficientPoolBalance
	}

	grandPrizes := initialGrandPrizes + e.state.BonusRewardsPoolBalance

	r := round.New(e.state.RoundNonce, grandPrizes, startTime, countdownSeconds, DefaultPlayer)
	e.rounds[r.Number] = r

	e.state.CurrentRound = r.Number
	e.state.RoundRewardsPoolBalance -= initialGrandPrizes
	e.state.BonusRewardsPoolBalance = 0
	e.state.RoundNonce++

	e.emit(events.TypeCreateRound, events.InitiatorSystem, botAuthority, map[string]any{
		"round":        r.Number,
		"grand_prizes": grandPrizes,
		"start_time":   startTime,
	})
	return r, nil
}

// CreatePeriod opens the next leaderboard window, funding its team and
// individual prize budgets from the period rewards pool.
func (e *Engine) CreatePeriod(botAuthority string, startTime, durationSeconds, teamRewards, individualRewards uint64) (*period.Period, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if botAuthority != e.state.BotAuthority {
		return nil, ErrUnauthorized
	}
	if teamRewards == 0 || individualRewards == 0 {
		return nil, ErrInvalidAmount
	}
	if startTime < e.now() {
		return nil, ErrInvalidAmount
	}
	total := teamRewards + individualRewards
	if total > e.state.PeriodRewardsPoolBalance {
		return nil, ErrInsufficientPoolBalance
	}

	p := period.New(e.state.PeriodNonce, startTime, durationSeconds, teamRewards, individualRewards, DefaultPlayer, e.state.DefaultTeam)
	e.periods[p.Number] = p

	e.state.CurrentPeriod = p.Number
	e.state.PeriodRewardsPoolBalance -= total
	e.state.PeriodNonce++

	e.emit(events.TypeCreatePeriod, events.InitiatorSystem, botAuthority, map[string]any{
		"period":             p.Number,
		"team_rewards":       teamRewards,
		"individual_rewards": individualRewards,
	})
	return p, nil
}

// GrandPrizeResult reports one payout from the grand prize queue.
type GrandPrizeResult struct {
	Round       uint16 `json:"round"`
	Index       int    `json:"index"`
	Player      string `json:"player"`
	GrandPrizes uint64 `json:"grand_prizes"`
	Burned      bool   `json:"burned,omitempty"`
}

// DistributeNextGrandPrize pays the next participant in the finished
// round's payout queue. Prizes landing on a default-player slot are
// burned.
func (e *Engine) DistributeNextGrandPrize(botAuthority string, roundNumber uint16) (*GrandPrizeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if botAuthority != e.state.BotAuthority {
		return nil, ErrUnauthorized
	}
	r, err := e.roundByNumber(roundNumber)
	if err != nil {
		return nil, err
	}
	if !r.IsOver {
		return nil, ErrRoundNotOver
	}

	amount, index, err := r.NextGrandPrize()
	if err != nil {
		return nil, err
	}

	winner := r.LastActiveParticipants[index]
	burned := winner == DefaultPlayer
	if burned {
		e.burn(amount)
	} else {
		w, err := e.playerByID(winner)
		if err != nil {
			return nil, err
		}
		e.state.DistributedGrandPrizes += amount
		w.CollectedGrandPrizes += amount
		w.TokenBalance += amount
	}

	res := &GrandPrizeResult{
		Round:       roundNumber,
		Index:       index,
		Player:      winner,
		GrandPrizes: amount,
		Burned:      burned,
	}
	e.emit(events.TypeDistributeGrand, events.InitiatorSystem, botAuthority, res)
	return res, nil
}

// LeaderboardResult reports a period reward distribution.
type LeaderboardResult struct {
	Period            uint16   `json:"period"`
	TopPlayer         string   `json:"top_player"`
	IndividualRewards uint64   `json:"individual_rewards"`
	TopTeams          []string `json:"top_teams"`
	TeamRewards       []uint64 `json:"team_rewards"`
	BurnedRewards     uint64   `json:"burned_rewards,omitempty"`
}

// DistributeLeaderboardRewards settles a finished period: the whole
// individual budget goes to the top player and the team budget splits
// across the podium teams. Default entries mean the place went unwon
// and its share is burned. One shot per period.
func (e *Engine) DistributeLeaderboardRewards(botAuthority string, periodNumber uint16) (*LeaderboardResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if botAuthority != e.state.BotAuthority {
		return nil, ErrUnauthorized
	}
	p, err := e.periodByNumber(periodNumber)
	if err != nil {
		return nil, err
	}
	if !p.IsEnded(e.now()) {
		return nil, ErrPeriodNotEnded
	}
	if err := p.MarkDistributionCompleted(); err != nil {
		return nil, err
	}

	res := &LeaderboardResult{Period: periodNumber}

	topPlayer := p.TopPlayers[0].Key
	res.TopPlayer = topPlayer
	res.IndividualRewards = p.IndividualRewards
	if topPlayer == DefaultPlayer {
		e.burn(p.IndividualRewards)
		res.BurnedRewards += p.IndividualRewards
	} else {
		w, err := e.playerByID(topPlayer)
		if err != nil {
			return nil, err
		}
		e.state.DistributedIndividualRewards += p.IndividualRewards
		w.CollectedIndividualRewards += p.IndividualRewards
		w.TokenBalance += p.IndividualRewards
	}

	shares := []uint64{p.TeamFirstPlaceRewards, p.TeamSecondPlaceRewards, p.TeamThirdPlaceRewards}
	for i, share := range shares {
		teamID := p.TopTeams[i].Key
		res.TopTeams = append(res.TopTeams, teamID)
		res.TeamRewards = append(res.TeamRewards, share)
		if teamID == e.state.DefaultTeam {
			e.burn(share)
			res.BurnedRewards += share
			continue
		}
		t, err := e.teamByID(teamID)
		if err != nil {
			return nil, err
		}
		e.state.DistributedTeamRewards += share
		t.DistributableTeamRewards += share
	}

	e.emit(events.TypeDistributeBoards, events.InitiatorSystem, botAuthority, res)
	return res, nil
}
