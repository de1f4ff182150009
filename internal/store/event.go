package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ErenVance/DoomsdayArk/internal/events"
)

type EventRecord struct {
	Nonce         int64
	Type          string
	InitiatorType string
	Initiator     string
	Data          []byte
	Timestamp     time.Time
}

// EventStore journals transfer events. The nonce is the primary key,
// so a replayed event is a no-op rather than a duplicate row.
type EventStore struct {
	db *pgxpool.Pool
}

func NewEventStore(db *pgxpool.Pool) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) Record(ctx context.Context, ev events.TransferEvent) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO transfer_events (nonce, type, initiator_type, initiator, data, occurred_at)
		VALUES ($1, $2, $3, $4, $5, to_timestamp($6))
		ON CONFLICT (nonce) DO NOTHING
	`, int64(ev.Nonce), string(ev.Type), string(ev.InitiatorType), ev.Initiator, data, int64(ev.Timestamp))
	return err
}

func (s *EventStore) InitiatorHistory(ctx context.Context, initiator string, limit int) ([]EventRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT nonce, type, initiator_type, initiator, data, occurred_at
		FROM transfer_events WHERE initiator = $1
		ORDER BY nonce DESC LIMIT $2
	`, initiator, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *EventStore) Recent(ctx context.Context, limit int) ([]EventRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT nonce, type, initiator_type, initiator, data, occurred_at
		FROM transfer_events
		ORDER BY nonce DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]EventRecord, error) {
	var out []EventRecord
	for rows.Next() {
		var r EventRecord
		if err := rows.Scan(&r.Nonce, &r.Type, &r.InitiatorType, &r.Initiator, &r.Data, &r.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
