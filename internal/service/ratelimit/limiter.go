package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. Every key gets its own
// rate.Limiter of capacity tokens refilled at refillPerSec.
type Limiter struct {
	mu       sync.Mutex
	m        map[string]*rate.Limiter
	capacity int
	refill   rate.Limit
	now      func() time.Time
}

func New(capacity, refillPerSec float64) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	return &Limiter{
		m:        make(map[string]*rate.Limiter),
		capacity: int(capacity),
		refill:   rate.Limit(refillPerSec),
		now:      time.Now,
	}
}

func (l *Limiter) get(key string) *rate.Limiter {
	lim, ok := l.m[key]
	if !ok {
		lim = rate.NewLimiter(l.refill, l.capacity)
		l.m[key] = lim
	}
	return lim
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.get(key).AllowN(now, 1)
}

// RetryAfter estimates how long until key has a token again.
func (l *Limiter) RetryAfter(key string) time.Duration {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.m[key]
	if !ok || l.refill <= 0 {
		return 0
	}
	tokens := lim.TokensAt(now)
	if tokens >= 1 {
		return 0
	}
	return time.Duration((1 - tokens) / float64(l.refill) * float64(time.Second))
}

// Sweep drops limiters that have been idle long enough to be full again.
func (l *Limiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, lim := range l.m {
		if l.refill > 0 && lim.TokensAt(now) >= float64(l.capacity) {
			delete(l.m, k)
			removed++
		}
	}
	return removed
}
