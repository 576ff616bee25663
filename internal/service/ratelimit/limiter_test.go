package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_BucketPerKey(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
	assert.Equal(t, time.Second, l.RetryAfter("10.0.0.1"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
}

func TestLimiter_Sweep(t *testing.T) {
	now := time.Now()
	l := New(2, 1)
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("a")
	assert.Equal(t, 0, l.Sweep())

	now = now.Add(3 * time.Second)
	assert.Equal(t, 1, l.Sweep())
}

func TestLimiter_RetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		refill float64
		allows int
		wait   time.Duration
		want   time.Duration
	}{
		{name: "unknown key", refill: 1, allows: 0, want: 0},
		{name: "tokens left", refill: 1, allows: 1, want: 0},
		{name: "drained", refill: 2, allows: 2, want: 500 * time.Millisecond},
		{name: "partly refilled", refill: 1, allows: 2, wait: 250 * time.Millisecond, want: 750 * time.Millisecond},
		{name: "no refill", refill: 0, allows: 2, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := now
			l := New(2, tt.refill)
			l.now = func() time.Time { return at }
			for i := 0; i < tt.allows; i++ {
				assert.True(t, l.Allow("k"))
			}
			at = at.Add(tt.wait)
			assert.Equal(t, tt.want, l.RetryAfter("k"))
		})
	}
}
