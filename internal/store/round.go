package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ErenVance/DoomsdayArk/internal/period"
	"github.com/ErenVance/DoomsdayArk/internal/round"
)

// RoundStore snapshots round state after committed operations.
type RoundStore struct {
	db *pgxpool.Pool
}

func NewRoundStore(db *pgxpool.Pool) *RoundStore {
	return &RoundStore{db: db}
}

func (s *RoundStore) Save(ctx context.Context, r *round.Round) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rounds (
			number, start_time, end_time, last_call_slot, call_count,
			earnings_per_ore, sold_ores, available_ores,
			grand_prize_pool_balance, distributed_grand_prizes,
			grand_prize_distribution_index, participants,
			auto_reinvesting_players, is_over, is_distribution_completed,
			last_exit_reward_at, last_sugar_rush_reward_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (number) DO UPDATE SET
			end_time = EXCLUDED.end_time,
			last_call_slot = EXCLUDED.last_call_slot,
			call_count = EXCLUDED.call_count,
			earnings_per_ore = EXCLUDED.earnings_per_ore,
			sold_ores = EXCLUDED.sold_ores,
			available_ores = EXCLUDED.available_ores,
			grand_prize_pool_balance = EXCLUDED.grand_prize_pool_balance,
			distributed_grand_prizes = EXCLUDED.distributed_grand_prizes,
			grand_prize_distribution_index = EXCLUDED.grand_prize_distribution_index,
			participants = EXCLUDED.participants,
			auto_reinvesting_players = EXCLUDED.auto_reinvesting_players,
			is_over = EXCLUDED.is_over,
			is_distribution_completed = EXCLUDED.is_distribution_completed,
			last_exit_reward_at = EXCLUDED.last_exit_reward_at,
			last_sugar_rush_reward_at = EXCLUDED.last_sugar_rush_reward_at
	`,
		int32(r.Number), int64(r.StartTime), int64(r.EndTime),
		int64(r.LastCallSlot), int16(r.CallCount),
		int64(r.EarningsPerOre), int64(r.SoldOres), int64(r.AvailableOres),
		int64(r.GrandPrizePoolBalance), int64(r.DistributedGrandPrizes),
		int16(r.GrandPrizeDistributionIndex), r.LastActiveParticipants,
		int32(r.AutoReinvestingPlayers), r.IsOver, r.IsGrandPrizeDistributionCompleted,
		int64(r.LastCollectedExitRewardTimestamp), int64(r.LastCollectedSugarRushRewardTimestamp),
	)
	return err
}

func (s *RoundStore) Get(ctx context.Context, number uint16) (*round.Round, error) {
	r := &round.Round{}
	var num, callCount, distIndex int16
	var startTime, endTime, lastCallSlot int64
	var earningsPerOre, soldOres, availableOres int64
	var pool, distributed, lastExitAt, lastSugarAt int64
	var autoReinvesting int32
	err := s.db.QueryRow(ctx, `
		SELECT number, start_time, end_time, last_call_slot, call_count,
		       earnings_per_ore, sold_ores, available_ores,
		       grand_prize_pool_balance, distributed_grand_prizes,
		       grand_prize_distribution_index, participants,
		       auto_reinvesting_players, is_over, is_distribution_completed,
		       last_exit_reward_at, last_sugar_rush_reward_at
		FROM rounds WHERE number = $1
	`, int32(number)).Scan(
		&num, &startTime, &endTime, &lastCallSlot, &callCount,
		&earningsPerOre, &soldOres, &availableOres,
		&pool, &distributed, &distIndex, &r.LastActiveParticipants,
		&autoReinvesting, &r.IsOver, &r.IsGrandPrizeDistributionCompleted,
		&lastExitAt, &lastSugarAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.Number = uint16(num)
	r.StartTime = uint64(startTime)
	r.EndTime = uint64(endTime)
	r.LastCallSlot = uint64(lastCallSlot)
	r.CallCount = uint8(callCount)
	r.EarningsPerOre = uint64(earningsPerOre)
	r.SoldOres = uint32(soldOres)
	r.AvailableOres = uint32(availableOres)
	r.GrandPrizePoolBalance = uint64(pool)
	r.DistributedGrandPrizes = uint64(distributed)
	r.GrandPrizeDistributionIndex = uint8(distIndex)
	r.AutoReinvestingPlayers = uint16(autoReinvesting)
	r.LastCollectedExitRewardTimestamp = uint64(lastExitAt)
	r.LastCollectedSugarRushRewardTimestamp = uint64(lastSugarAt)
	return r, nil
}

// PeriodStore snapshots leaderboard periods. Boards are stored as
// JSONB since only the engine ever reads them back.
type PeriodStore struct {
	db *pgxpool.Pool
}

func NewPeriodStore(db *pgxpool.Pool) *PeriodStore {
	return &PeriodStore{db: db}
}

func (s *PeriodStore) Save(ctx context.Context, p *period.Period) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO periods (
			number, start_time, end_time,
			team_reward_pool_balance, individual_reward_pool_balance,
			team_rewards, individual_rewards,
			top_players, top_teams, is_distribution_completed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (number) DO UPDATE SET
			end_time = EXCLUDED.end_time,
			start_time = EXCLUDED.start_time,
			top_players = EXCLUDED.top_players,
			top_teams = EXCLUDED.top_teams,
			is_distribution_completed = EXCLUDED.is_distribution_completed
	`,
		int32(p.Number), int64(p.StartTime), int64(p.EndTime),
		int64(p.TeamRewardPoolBalance), int64(p.IndividualRewardPoolBalance),
		int64(p.TeamRewards), int64(p.IndividualRewards),
		p.TopPlayers, p.TopTeams, p.IsDistributionCompleted,
	)
	return err
}
