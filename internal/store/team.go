package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Team struct {
	ID                       string
	Number                   int64
	Captain                  string
	MemberCount              int
	PurchasedOres            int64
	DistributableTeamRewards int64
	DistributedTeamRewards   int64
	CreatedAt                time.Time
}

type TeamStore struct {
	db *pgxpool.Pool
}

func NewTeamStore(db *pgxpool.Pool) *TeamStore {
	return &TeamStore{db: db}
}

func (s *TeamStore) Create(ctx context.Context, id string, number uint32, captain string) (*Team, error) {
	t := &Team{}
	err := s.db.QueryRow(ctx, `
		INSERT INTO teams (id, number, captain, member_count) VALUES ($1, $2, $3, 1)
		RETURNING id, number, captain, member_count, purchased_ores,
		          distributable_team_rewards, distributed_team_rewards, created_at
	`, id, int64(number), captain).Scan(
		&t.ID, &t.Number, &t.Captain, &t.MemberCount, &t.PurchasedOres,
		&t.DistributableTeamRewards, &t.DistributedTeamRewards, &t.CreatedAt,
	)
	return t, err
}

func (s *TeamStore) Get(ctx context.Context, id string) (*Team, error) {
	t := &Team{}
	err := s.db.QueryRow(ctx, `
		SELECT id, number, captain, member_count, purchased_ores,
		       distributable_team_rewards, distributed_team_rewards, created_at
		FROM teams WHERE id = $1
	`, id).Scan(
		&t.ID, &t.Number, &t.Captain, &t.MemberCount, &t.PurchasedOres,
		&t.DistributableTeamRewards, &t.DistributedTeamRewards, &t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (s *TeamStore) SetCaptain(ctx context.Context, id, captain string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE teams SET captain = $2 WHERE id = $1
	`, id, captain)
	return err
}

func (s *TeamStore) AddMember(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE teams SET member_count = member_count + 1 WHERE id = $1
	`, id)
	return err
}

func (s *TeamStore) RemoveMember(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE teams SET member_count = GREATEST(member_count - 1, 0) WHERE id = $1
	`, id)
	return err
}

func (s *TeamStore) AddPurchasedOres(ctx context.Context, id string, ores int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE teams SET purchased_ores = purchased_ores + $2 WHERE id = $1
	`, id, ores)
	return err
}

func (s *TeamStore) UpdateRewards(ctx context.Context, id string, distributable, distributed int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE teams
		SET distributable_team_rewards = $2,
		    distributed_team_rewards = $3
		WHERE id = $1
	`, id, distributable, distributed)
	return err
}

func (s *TeamStore) TopByPurchasedOres(ctx context.Context, limit int) ([]Team, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, number, captain, member_count, purchased_ores,
		       distributable_team_rewards, distributed_team_rewards, created_at
		FROM teams ORDER BY purchased_ores DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Number, &t.Captain, &t.MemberCount, &t.PurchasedOres,
			&t.DistributableTeamRewards, &t.DistributedTeamRewards, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
