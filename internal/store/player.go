package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ErenVance/DoomsdayArk/internal/player"
)

type Player struct {
	ID             string
	Referrer       string
	Team           string
	TokenBalance   int64
	VoucherBalance int64
	CreatedAt      time.Time
}

type PlayerStore struct {
	db *pgxpool.Pool
}

func NewPlayerStore(db *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{db: db}
}

func (s *PlayerStore) Upsert(ctx context.Context, id, referrer, team string) (*Player, error) {
	p := &Player{}
	err := s.db.QueryRow(ctx, `
		INSERT INTO players (id, referrer, team) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET referrer = EXCLUDED.referrer
		RETURNING id, referrer, team, token_balance, voucher_balance, created_at
	`, id, referrer, team).Scan(
		&p.ID, &p.Referrer, &p.Team, &p.TokenBalance, &p.VoucherBalance, &p.CreatedAt,
	)
	return p, err
}

func (s *PlayerStore) Get(ctx context.Context, id string) (*Player, error) {
	p := &Player{}
	err := s.db.QueryRow(ctx, `
		SELECT id, referrer, team, token_balance, voucher_balance, created_at
		FROM players WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Referrer, &p.Team, &p.TokenBalance, &p.VoucherBalance, &p.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// Save snapshots the engine's view of a player after a committed
// operation. Row layout matches the in-memory struct one to one.
func (s *PlayerStore) Save(ctx context.Context, p *player.Player) error {
	_, err := s.db.Exec(ctx, `
		UPDATE players SET
			referrer = $2,
			team = $3,
			token_balance = $4,
			voucher_balance = $5,
			nonce = $6,
			current_round = $7,
			current_period = $8,
			current_period_purchased_ores = $9,
			is_exited = $10,
			earnings_per_ore = $11,
			collectable_construction_rewards = $12,
			available_ores = $13,
			purchased_ores = $14,
			is_auto_reinvesting = $15,
			consecutive_purchased_days = $16,
			last_purchased_day = $17,
			referral_count = $18,
			collectable_referral_rewards = $19,
			collectable_consumption_rewards = $20
		WHERE id = $1
	`,
		p.ID, p.Referrer, p.Team, int64(p.TokenBalance), int64(p.VoucherBalance),
		int32(p.Nonce), int32(p.CurrentRound), int32(p.CurrentPeriod),
		int64(p.CurrentPeriodPurchasedOres), p.IsExited,
		int64(p.EarningsPerOre), int64(p.CollectableConstructionRewards),
		int64(p.AvailableOres), int64(p.PurchasedOres), p.IsAutoReinvesting,
		int32(p.ConsecutivePurchasedDays), int64(p.LastPurchasedDay),
		int32(p.ReferralCount), int64(p.CollectableReferralRewards),
		int64(p.CollectableConsumptionRewards),
	)
	return err
}

func (s *PlayerStore) UpdateBalances(ctx context.Context, id string, tokenDelta, voucherDelta int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE players
		SET token_balance = token_balance + $2,
		    voucher_balance = voucher_balance + $3
		WHERE id = $1
	`, id, tokenDelta, voucherDelta)
	return err
}

func (s *PlayerStore) SetTeam(ctx context.Context, id, team string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE players SET team = $2 WHERE id = $1
	`, id, team)
	return err
}

// AutoReinvesting lists the players flagged for bot reinvestment in a
// round, for the autopilot sweep.
func (s *PlayerStore) AutoReinvesting(ctx context.Context, roundNumber uint16) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id FROM players
		WHERE is_auto_reinvesting = TRUE AND current_round = $1 AND is_exited = FALSE
	`, int32(roundNumber))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
