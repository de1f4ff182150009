package period

import (
	"errors"
	"sort"
)

const winnersCount = 10

var (
	ErrAlreadyDistributed = errors.New("period: rewards already distributed")
	ErrNotEnded           = errors.New("period: period has not ended")
)

// Standing is one leaderboard row, keyed by player or team id.
type Standing struct {
	Key           string
	PurchasedOres uint32
}

// Period holds one leaderboard window and its reward budgets. The
// team budget splits 50/30/20 across the top three teams; the whole
// individual budget goes to the top player.
type Period struct {
	Number uint16

	TeamRewardPoolBalance       uint64
	IndividualRewardPoolBalance uint64

	StartTime uint64
	EndTime   uint64

	TopPlayers []Standing
	TopTeams   []Standing

	TeamRewards            uint64
	TeamFirstPlaceRewards  uint64
	TeamSecondPlaceRewards uint64
	TeamThirdPlaceRewards  uint64
	IndividualRewards      uint64

	IsDistributionCompleted bool
}

// New creates a period running from startTime for durationSeconds.
// Both boards start filled with default entries so reward distribution
// always sees ten rows.
func New(number uint16, startTime, durationSeconds, teamRewards, individualRewards uint64, defaultPlayer, defaultTeam string) *Period {
	first := teamRewards / 2
	second := first / 5 * 3
	third := teamRewards - first - second

	players := make([]Standing, winnersCount)
	teams := make([]Standing, winnersCount)
	for i := range players {
		players[i] = Standing{Key: defaultPlayer}
		teams[i] = Standing{Key: defaultTeam}
	}

	return &Period{
		Number:                      number,
		StartTime:                   startTime,
		EndTime:                     startTime + durationSeconds,
		TeamRewardPoolBalance:       teamRewards,
		IndividualRewardPoolBalance: individualRewards,
		TeamRewards:                 teamRewards,
		TeamFirstPlaceRewards:       first,
		TeamSecondPlaceRewards:      second,
		TeamThirdPlaceRewards:       third,
		IndividualRewards:           individualRewards,
		TopPlayers:                  players,
		TopTeams:                    teams,
	}
}

// IsOngoing reports whether now falls inside the period window.
func (p *Period) IsOngoing(now uint64) bool {
	return now >= p.StartTime && now < p.EndTime
}

// IsEnded reports whether the period window has closed.
func (p *Period) IsEnded(now uint64) bool {
	return now >= p.EndTime
}

// ClampEnd force-closes the window at now. Used when the round ends
// before the period does. A period that never started collapses to a
// zero-length window at now.
func (p *Period) ClampEnd(now uint64) {
	if p.IsOngoing(now) {
		p.EndTime = now
	} else if p.StartTime > now {
		p.StartTime = now
		p.EndTime = now
	}
}

// UpdateTopPlayer records a player's period total and re-ranks the
// board, keeping the ten best.
func (p *Period) UpdateTopPlayer(player string, purchasedOres uint32) {
	p.TopPlayers = updateBoard(p.TopPlayers, player, purchasedOres)
}

// UpdateTopTeam records a team's period total and re-ranks the board.
func (p *Period) UpdateTopTeam(team string, purchasedOres uint32) {
	p.TopTeams = updateBoard(p.TopTeams, team, purchasedOres)
}

func updateBoard(board []Standing, key string, ores uint32) []Standing {
	found := false
	for i := range board {
		if board[i].Key == key {
			board[i].PurchasedOres = ores
			found = true
			break
		}
	}
	if !found {
		board = append(board, Standing{Key: key, PurchasedOres: ores})
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].PurchasedOres > board[j].PurchasedOres
	})
	if len(board) > winnersCount {
		board = board[:winnersCount]
	}
	return board
}

// MarkDistributionCompleted flips the one-shot distribution flag.
func (p *Period) MarkDistributionCompleted() error {
	if p.IsDistributionCompleted {
		return ErrAlreadyDistributed
	}
	p.IsDistributionCompleted = true
	return nil
}
