package audit

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const dedupScope = "audit"

var tracked = map[string]bool{
	orders.EventOrderCreated:      true,
	orders.EventOrderItemsUpdated: true,
	orders.EventOrderCompleted:    true,
	orders.EventOrderCancelled:    true,
	orders.EventOrderDeleted:      true,
}

// Service records order lifecycle events in the audit trail, once per
// event id.
type Service struct {
	store Store
	rdb   *redis.Client
	log   *zap.Logger
}

func NewService(store Store, rdb *redis.Client, log *zap.Logger) *Service {
	return &Service{store: store, rdb: rdb, log: log.Named("audit")}
}

// HandleOrderEvent is installed as the consumer handler. Messages that are
// not order lifecycle events are acknowledged and skipped.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// a malformed message will never decode; commit past it
		s.log.Error("drop undecodable message", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if !tracked[env.EventType] {
		return nil
	}
	log := s.log.With(zap.String("event_id", env.EventID), zap.String("event_type", env.EventType))

	dkey := redisx.DedupKey(dedupScope, env.EventID)
	fresh, err := redisx.Claim(ctx, s.rdb, dkey, redisx.TTLDedup)
	if err != nil {
		// the insert is idempotent on event_id, carry on without the claim
		log.Warn("dedup claim failed", zap.Error(err))
		fresh = true
	}
	if !fresh {
		log.Debug("duplicate event skipped")
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderEventPayload](env.Payload)
	if err != nil {
		log.Error("drop event with bad payload", zap.Error(err))
		return nil
	}

	e := Entry{
		EventID:    env.EventID,
		OrderID:    p.OrderID,
		EventType:  env.EventType,
		Status:     string(p.Status),
		Payload:    env.Payload,
		OccurredAt: env.OccurredAt,
	}
	if err := s.store.Insert(ctx, e); err != nil {
		if rerr := redisx.Release(ctx, s.rdb, dkey); rerr != nil {
			log.Warn("dedup release failed", zap.Error(rerr))
		}
		return fmt.Errorf("record %s: %w", env.EventID, err)
	}
	log.Info("order event recorded", zap.String("order_id", p.OrderID), zap.String("status", e.Status))
	return nil
}
