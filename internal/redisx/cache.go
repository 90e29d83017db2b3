package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a key/value store for JSON snapshots of entities. It is never the
// source of truth.
type Cache interface {
	// Get decodes the value under key into dst and reports whether it was there.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// JSONCache implements Cache on top of Redis strings.
type JSONCache struct {
	rdb *redis.Client
}

func NewJSONCache(rdb *redis.Client) *JSONCache {
	return &JSONCache{rdb: rdb}
}

func (c *JSONCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

func (c *JSONCache) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// ReadThrough is the cache-aside read: a hit is returned as is, a miss falls
// back to load and a found value is written back with ttl. A nil result from
// load means absent in both layers and is not an error. Cache failures are
// logged and degrade to a store read.
func ReadThrough[T any](ctx context.Context, c Cache, log *zap.Logger, key string, ttl time.Duration, load func(context.Context) (*T, error)) (*T, error) {
	var cached T
	hit, err := c.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	v, err := load(ctx)
	if err != nil || v == nil {
		return v, err
	}
	Store(ctx, c, log, key, v, ttl)
	return v, nil
}

// Store writes v under key. A failure is logged, not returned: the store
// mutation that produced v has already been committed.
func Store(ctx context.Context, c Cache, log *zap.Logger, key string, v any, ttl time.Duration) {
	if err := c.Set(ctx, key, v, ttl); err != nil {
		log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Evict removes key, logging instead of failing.
func Evict(ctx context.Context, c Cache, log *zap.Logger, key string) {
	if err := c.Del(ctx, key); err != nil {
		log.Warn("cache evict failed", zap.String("key", key), zap.Error(err))
	}
}
