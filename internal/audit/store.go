package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ariefcatur/go-shop-orders/internal/postgres"
)

type Entry struct {
	EventID    string
	OrderID    string
	EventType  string
	Status     string
	Payload    json.RawMessage
	OccurredAt time.Time
}

type Store interface {
	// Insert ignores an entry whose event id is already recorded.
	Insert(ctx context.Context, e Entry) error
}

type PgStore struct {
	db postgres.DBTX
}

func NewPgStore(db postgres.DBTX) *PgStore {
	return &PgStore{db: db}
}

func insertQuery(e Entry) sq.InsertBuilder {
	return sq.Insert("order_audit").
		Columns("event_id", "order_id", "event_type", "status", "payload", "occurred_at").
		Values(e.EventID, e.OrderID, e.EventType, e.Status, []byte(e.Payload), e.OccurredAt).
		Suffix("ON CONFLICT (event_id) DO NOTHING").
		PlaceholderFormat(sq.Dollar)
}

func (s *PgStore) Insert(ctx context.Context, e Entry) error {
	query, args, err := insertQuery(e).ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
