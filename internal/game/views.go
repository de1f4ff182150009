package game

import (
	"sort"

	"github.com/ErenVance/DoomsdayArk/internal/period"
	"github.com/ErenVance/DoomsdayArk/internal/player"
	"github.com/ErenVance/DoomsdayArk/internal/round"
	"github.com/ErenVance/DoomsdayArk/internal/stake"
	"github.com/ErenVance/DoomsdayArk/internal/team"
)

// Read accessors return value copies taken under the engine lock so
// callers never observe a state mid-mutation.

// GameState returns a snapshot of the global aggregate.
func (e *Engine) GameState() Game {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.state
}

// PlayerState returns a snapshot of one player.
func (e *Engine) PlayerState(playerID string) (player.Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.playerByID(playerID)
	if err != nil {
		return player.Player{}, err
	}
	return *p, nil
}

// RoundState returns a snapshot of one round.
func (e *Engine) RoundState(number uint16) (round.Round, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.roundByNumber(number)
	if err != nil {
		return round.Round{}, err
	}
	snap := *r
	snap.LastActiveParticipants = append([]string(nil), r.LastActiveParticipants...)
	return snap, nil
}

// CurrentRoundState returns a snapshot of the round in play.
func (e *Engine) CurrentRoundState() (round.Round, error) {
	e.mu.Lock()
	number := e.state.CurrentRound
	e.mu.Unlock()
	if number == 0 {
		return round.Round{}, ErrRoundNotStarted
	}
	return e.RoundState(number)
}

// PeriodState returns a snapshot of one leaderboard period.
func (e *Engine) PeriodState(number uint16) (period.Period, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.periodByNumber(number)
	if err != nil {
		return period.Period{}, err
	}
	snap := *p
	snap.TopPlayers = append([]period.Standing(nil), p.TopPlayers...)
	snap.TopTeams = append([]period.Standing(nil), p.TopTeams...)
	return snap, nil
}

// TeamState returns a snapshot of one team.
func (e *Engine) TeamState(teamID string) (team.Team, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, err := e.teamByID(teamID)
	if err != nil {
		return team.Team{}, err
	}
	snap := *t
	snap.Managers = append([]string(nil), t.Managers...)
	snap.Members = append([]string(nil), t.Members...)
	snap.Applications = append([]string(nil), t.Applications...)
	return snap, nil
}

// StakeOrders returns snapshots of a player's stake orders, ordered by
// order number.
func (e *Engine) StakeOrders(playerID string) ([]stake.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.playerByID(playerID); err != nil {
		return nil, err
	}
	byNumber := e.orders[playerID]
	out := make([]stake.Order, 0, len(byNumber))
	for _, o := range byNumber {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// StakePoolState returns a snapshot of the staking pool.
func (e *Engine) StakePoolState() stake.Pool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.stake
}
