package cache

import (
	"context"
	"encoding/json"
	"time"
)

// LayeredCache keeps a process-local copy (L1) in front of Redis (L2).
// Redis is authoritative: L1 copies never outlive the Redis TTL, and are
// further capped by L1TTL.
type LayeredCache struct {
	mem   *MemoryCache
	redis *RedisCache
	l1TTL time.Duration
}

func NewLayeredCache(redisCache *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
		L1TTL:         time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &LayeredCache{
		mem:   NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		redis: redisCache,
		l1TTL: cfg.L1TTL,
	}
}

// l1 returns the L1 lifetime for an entry with remaining L2 lifetime ttl,
// where zero means no expiry.
func (lc *LayeredCache) l1(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > lc.l1TTL {
		return lc.l1TTL
	}
	return ttl
}

// Set writes Redis first. When Redis fails the value is still kept in L1 so
// this instance keeps serving it, and the Redis error is returned.
func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	err := lc.redis.Set(ctx, key, value, expiration)
	_ = lc.mem.Set(ctx, key, value, lc.l1(expiration))
	return err
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.mem.Get(ctx, key, dest); err == nil {
		return nil
	}

	var raw json.RawMessage
	if err := lc.redis.Get(ctx, key, &raw); err != nil {
		return err
	}

	if ttl, ok, err := lc.redis.Remaining(ctx, key); err == nil && ok {
		_ = lc.mem.Set(ctx, key, raw, lc.l1(ttl))
	}
	return json.Unmarshal(raw, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.mem.Delete(ctx, keys...)
	return lc.redis.Delete(ctx, keys...)
}

// Exists asks Redis, falling back to L1 when Redis is unreachable.
func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	ok, err := lc.redis.Exists(ctx, keys...)
	if err == nil {
		return ok, nil
	}
	if local, lerr := lc.mem.Exists(ctx, keys...); lerr == nil && local {
		return true, nil
	}
	return false, err
}

func (lc *LayeredCache) Close() error {
	_ = lc.mem.Close()
	return lc.redis.Close()
}
