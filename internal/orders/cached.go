package orders

import (
	"context"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"go.uber.org/zap"
)

// CachedManager wraps a Manager with the cache-aside policy for orders.
// Every successful mutation leaves either the fresh order or no entry at
// all under order:{id}.
type CachedManager struct {
	next  Manager
	cache redisx.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedManager(next Manager, cache redisx.Cache, ttl time.Duration, log *zap.Logger) *CachedManager {
	return &CachedManager{next: next, cache: cache, ttl: ttl, log: log}
}

func (m *CachedManager) put(ctx context.Context, o *Order) {
	redisx.Store(ctx, m.cache, m.log, redisx.OrderKey(o.ID), o, m.ttl)
}

func (m *CachedManager) Create(ctx context.Context, userID string, items []ItemInput, status Status) (*Order, error) {
	o, err := m.next.Create(ctx, userID, items, status)
	if err != nil {
		return nil, err
	}
	m.put(ctx, o)
	return o, nil
}

func (m *CachedManager) GetByID(ctx context.Context, id string) (*Order, error) {
	return redisx.ReadThrough(ctx, m.cache, m.log, redisx.OrderKey(id), m.ttl,
		func(ctx context.Context) (*Order, error) { return m.next.GetByID(ctx, id) })
}

func (m *CachedManager) ListByUser(ctx context.Context, userID string, skip, take int) ([]Order, error) {
	return m.next.ListByUser(ctx, userID, skip, take)
}

func (m *CachedManager) CountByUser(ctx context.Context, userID string) (int, error) {
	return m.next.CountByUser(ctx, userID)
}

func (m *CachedManager) Update(ctx context.Context, id string, in OrderUpdate) (*Order, error) {
	o, err := m.next.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	m.put(ctx, o)
	return o, nil
}

func (m *CachedManager) Complete(ctx context.Context, id string) (Status, error) {
	st, err := m.next.Complete(ctx, id)
	if err != nil {
		return "", err
	}
	m.refresh(ctx, id)
	return st, nil
}

func (m *CachedManager) Cancel(ctx context.Context, id string) (Status, error) {
	st, err := m.next.Cancel(ctx, id)
	if err != nil {
		return "", err
	}
	m.refresh(ctx, id)
	return st, nil
}

// refresh reloads the order from the inner manager after a transition that
// only reported the new status. If the reload fails the entry is dropped.
func (m *CachedManager) refresh(ctx context.Context, id string) {
	o, err := m.next.GetByID(ctx, id)
	if err != nil || o == nil {
		if err != nil {
			m.log.Warn("order reload after transition failed", zap.String("order_id", id), zap.Error(err))
		}
		redisx.Evict(ctx, m.cache, m.log, redisx.OrderKey(id))
		return
	}
	m.put(ctx, o)
}

func (m *CachedManager) Delete(ctx context.Context, id string) (*Order, error) {
	o, err := m.next.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	redisx.Evict(ctx, m.cache, m.log, redisx.OrderKey(id))
	return o, nil
}

func (m *CachedManager) RemoveProducts(ctx context.Context, orderID string, productIDs []string) (*Order, error) {
	o, err := m.next.RemoveProducts(ctx, orderID, productIDs)
	if err != nil {
		// rows may already be gone
		redisx.Evict(ctx, m.cache, m.log, redisx.OrderKey(orderID))
		return nil, err
	}
	m.put(ctx, o)
	return o, nil
}

func (m *CachedManager) IncreaseItemsQuantity(ctx context.Context, orderID string, items []ItemDelta) (*Order, error) {
	o, err := m.next.IncreaseItemsQuantity(ctx, orderID, items)
	if err != nil {
		redisx.Evict(ctx, m.cache, m.log, redisx.OrderKey(orderID))
		return nil, err
	}
	m.put(ctx, o)
	return o, nil
}
