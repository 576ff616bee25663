package usecase

import (
	"context"
	"testing"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShareService(t *testing.T, last *LastReportStore) *ShareService {
	t.Helper()
	c := cache.NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })
	return NewShareService(c, last, ShareConfig{
		DefaultTTL: time.Hour,
		MinTTL:     5 * time.Minute,
		MaxTTL:     24 * time.Hour,
		Origin:     "https://app.finscope.us/",
	})
}

func TestShareService_TTL(t *testing.T) {
	s := newShareService(t, NewLastReportStore())
	tests := []struct {
		in   int
		want time.Duration
	}{
		{0, time.Hour},
		{-5, time.Hour},
		{60, 5 * time.Minute},
		{600, 10 * time.Minute},
		{200000, 24 * time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.TTL(tt.in), "ttl %d", tt.in)
	}
}

func TestShareService_CreateAndGet(t *testing.T) {
	last := NewLastReportStore()
	s := newShareService(t, last)
	ctx := context.Background()

	_, err := s.Create(ctx, nil, 0)
	assert.ErrorIs(t, err, ErrNoReport)

	last.Publish(&models.Report{RunID: "latest"})
	share, err := s.Create(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, share.Token, 16)
	assert.Equal(t, "https://app.finscope.us/share/"+share.Token, share.URL)
	assert.Equal(t, 3600, share.TTLSeconds)

	got, err := s.Get(ctx, share.Token)
	require.NoError(t, err)
	assert.Equal(t, "latest", got.RunID)

	explicit, err := s.Create(ctx, &models.Report{RunID: "explicit"}, 300)
	require.NoError(t, err)
	got, err = s.Get(ctx, explicit.Token)
	require.NoError(t, err)
	assert.Equal(t, "explicit", got.RunID)

	_, err = s.Get(ctx, "deadbeef")
	assert.ErrorIs(t, err, ErrShareNotFound)
}
