package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ErenVance/DoomsdayArk/internal/stake"
)

type StakeOrder struct {
	Player         string
	OrderNumber    int
	StakedAmount   int64
	TokenRewards   int64
	VoucherRewards int64
	StakedAt       time.Time
	UnlockedAt     time.Time
	EarlyUnlocked  bool
	Completed      bool
}

type OrderStore struct {
	db *pgxpool.Pool
}

func NewOrderStore(db *pgxpool.Pool) *OrderStore {
	return &OrderStore{db: db}
}

// Save upserts the durable snapshot of a stake order after each mutation.
func (s *OrderStore) Save(ctx context.Context, player string, o *stake.Order) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO stake_orders (
			player, order_number, staked_amount, token_rewards, voucher_rewards,
			staked_at, unlocked_at, early_unlocked, completed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (player, order_number) DO UPDATE SET
			staked_amount = EXCLUDED.staked_amount,
			token_rewards = EXCLUDED.token_rewards,
			voucher_rewards = EXCLUDED.voucher_rewards,
			unlocked_at = EXCLUDED.unlocked_at,
			early_unlocked = EXCLUDED.early_unlocked,
			completed = EXCLUDED.completed
	`, player, int(o.Number), int64(o.StakeAmount), int64(o.TokenRewards), int64(o.VoucherRewards),
		time.Unix(int64(o.CreatedTimestamp), 0).UTC(), time.Unix(int64(o.UnstakedTimestamp), 0).UTC(),
		o.IsEarlyUnstaked, o.IsCompleted)
	return err
}

func (s *OrderStore) Get(ctx context.Context, player string, orderNumber int) (*StakeOrder, error) {
	o := &StakeOrder{}
	err := s.db.QueryRow(ctx, `
		SELECT player, order_number, staked_amount, token_rewards, voucher_rewards,
		       staked_at, unlocked_at, early_unlocked, completed
		FROM stake_orders WHERE player = $1 AND order_number = $2
	`, player, orderNumber).Scan(
		&o.Player, &o.OrderNumber, &o.StakedAmount, &o.TokenRewards, &o.VoucherRewards,
		&o.StakedAt, &o.UnlockedAt, &o.EarlyUnlocked, &o.Completed,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return o, err
}

// Open lists a player's orders that have not yet been completed.
func (s *OrderStore) Open(ctx context.Context, player string) ([]StakeOrder, error) {
	rows, err := s.db.Query(ctx, `
		SELECT player, order_number, staked_amount, token_rewards, voucher_rewards,
		       staked_at, unlocked_at, early_unlocked, completed
		FROM stake_orders WHERE player = $1 AND NOT completed
		ORDER BY order_number
	`, player)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StakeOrder
	for rows.Next() {
		var o StakeOrder
		if err := rows.Scan(&o.Player, &o.OrderNumber, &o.StakedAmount, &o.TokenRewards, &o.VoucherRewards,
			&o.StakedAt, &o.UnlockedAt, &o.EarlyUnlocked, &o.Completed); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
