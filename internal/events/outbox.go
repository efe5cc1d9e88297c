package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// OutboxEntry is one recorded event awaiting delivery.
type OutboxEntry struct {
	ID        uuid.UUID
	Aggregate string
	Type      string
	Payload   json.RawMessage
	Attempts  int
	CreatedAt time.Time
}

// DeliveryHandler consumes events, typically by sending notifications.
type DeliveryHandler interface {
	Handle(ctx context.Context, entry OutboxEntry) error
}

// Publisher records domain events raised by the services.
type Publisher interface {
	Publish(ctx context.Context, aggregate string, evt Event) error
}

// OutboxDB is the part of pgxpool.Pool the outbox uses.
type OutboxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var errNilEvent = errors.New("events: nil event")

// OutboxStore keeps events in the outbox table until a Deliverer hands
// them to a DeliveryHandler.
type OutboxStore struct {
	db OutboxDB
}

func NewOutboxStore(db OutboxDB) *OutboxStore {
	if db == nil {
		panic("events: outbox database required")
	}
	return &OutboxStore{db: db}
}

// Append stores evt under aggregate and returns the new entry id.
func (s *OutboxStore) Append(ctx context.Context, aggregate string, evt Event) (uuid.UUID, error) {
	if evt == nil {
		return uuid.Nil, errNilEvent
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("events: marshal %s: %w", evt.EventType(), err)
	}
	id := uuid.New()
	const q = `INSERT INTO outbox (id, aggregate, type, payload) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.Exec(ctx, q, id, aggregate, evt.EventType(), payload); err != nil {
		return uuid.Nil, fmt.Errorf("events: append %s: %w", evt.EventType(), err)
	}
	return id, nil
}

// Publish implements Publisher.
func (s *OutboxStore) Publish(ctx context.Context, aggregate string, evt Event) error {
	_, err := s.Append(ctx, aggregate, evt)
	return err
}

// FetchPending returns undelivered entries that have failed fewer than
// maxAttempts times, oldest first.
func (s *OutboxStore) FetchPending(ctx context.Context, limit int32, maxAttempts int) ([]OutboxEntry, error) {
	const q = `
		SELECT id, aggregate, type, payload, attempts, created_at
		FROM outbox
		WHERE delivered_at IS NULL AND attempts < $2
		ORDER BY created_at
		LIMIT $1`
	rows, err := s.db.Query(ctx, q, limit, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("events: fetch pending: %w", err)
	}
	defer rows.Close()

	var out []OutboxEntry
	for rows.Next() {
		var (
			e       OutboxEntry
			payload []byte
		)
		if err := rows.Scan(&e.ID, &e.Aggregate, &e.Type, &payload, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("events: scan outbox row: %w", err)
		}
		e.Payload = append(json.RawMessage(nil), payload...)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("events: iterate outbox: %w", err)
	}
	return out, nil
}

// MarkDelivered reports false when the entry was already delivered.
func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE outbox SET delivered_at = now() WHERE id = $1 AND delivered_at IS NULL`
	tag, err := s.db.Exec(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("events: mark delivered: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkFailed counts a failed attempt and keeps the last cause.
func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	const q = `UPDATE outbox SET attempts = attempts + 1, last_error = $2 WHERE id = $1`
	if _, err := s.db.Exec(ctx, q, id, msg); err != nil {
		return fmt.Errorf("events: mark failed: %w", err)
	}
	return nil
}
