package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface.
//
// Values are JSON encoded by every backend, so a value read back through Get
// has the same shape whichever store holds it. A non-positive expiration
// means the entry never expires.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Close() error
}

// Observer is notified of every WithCache lookup.
type Observer func(key string, hit bool)

// WithCache returns the cached value for key, or calls produce and stores its
// result for ttl. Nil results and errors are never stored. Backend failures
// degrade to a miss (on read) or are ignored (on write).
func WithCache[T any](ctx context.Context, c Service, key string, ttl time.Duration, produce func(context.Context) (*T, error), observers ...Observer) (*T, error) {
	if c != nil {
		var cached T
		if err := c.Get(ctx, key, &cached); err == nil {
			notify(observers, key, true)
			return &cached, nil
		}
	}
	notify(observers, key, false)

	value, err := produce(ctx)
	if err != nil {
		return nil, err
	}
	if value == nil || c == nil {
		return value, nil
	}

	_ = c.Set(ctx, key, value, ttl)
	return value, nil
}

func notify(observers []Observer, key string, hit bool) {
	for _, o := range observers {
		if o != nil {
			o(key, hit)
		}
	}
}
