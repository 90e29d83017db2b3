package catalog

import (
	"context"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"go.uber.org/zap"
)

// CachedManager wraps a Manager with the cache-aside policy: reads by id go
// through the cache, writes refresh it after the inner call succeeded and
// deletes evict it. Listings are never cached.
type CachedManager struct {
	next  Manager
	cache redisx.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedManager(next Manager, cache redisx.Cache, ttl time.Duration, log *zap.Logger) *CachedManager {
	return &CachedManager{next: next, cache: cache, ttl: ttl, log: log}
}

func (m *CachedManager) Create(ctx context.Context, in NewProduct) (*Product, error) {
	p, err := m.next.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	redisx.Store(ctx, m.cache, m.log, redisx.ProductKey(p.ID), p, m.ttl)
	return p, nil
}

func (m *CachedManager) GetByID(ctx context.Context, id string) (*Product, error) {
	return redisx.ReadThrough(ctx, m.cache, m.log, redisx.ProductKey(id), m.ttl,
		func(ctx context.Context) (*Product, error) { return m.next.GetByID(ctx, id) })
}

func (m *CachedManager) Update(ctx context.Context, id string, in ProductUpdate) (*Product, error) {
	p, err := m.next.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	redisx.Store(ctx, m.cache, m.log, redisx.ProductKey(id), p, m.ttl)
	return p, nil
}

func (m *CachedManager) Delete(ctx context.Context, id string) (*Product, error) {
	p, err := m.next.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	redisx.Evict(ctx, m.cache, m.log, redisx.ProductKey(id))
	return p, nil
}

func (m *CachedManager) ListByState(ctx context.Context, state State, skip, take int) ([]Product, error) {
	return m.next.ListByState(ctx, state, skip, take)
}

func (m *CachedManager) ListAll(ctx context.Context) ([]Product, error) {
	return m.next.ListAll(ctx)
}

func (m *CachedManager) CountByState(ctx context.Context, state State) (int, error) {
	return m.next.CountByState(ctx, state)
}
