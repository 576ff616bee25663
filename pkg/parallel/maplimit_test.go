package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLimit_OrderAndBound(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	var inFlight, peak int32

	results := MapLimit(context.Background(), items, 3, func(_ context.Context, i int) (int, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		// Later items finish first to prove ordering does not follow completion.
		time.Sleep(time.Duration(10-i) * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return i * i, nil
	})

	require.Len(t, results, len(items))
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, i*i, r.Value)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Positive(t, atomic.LoadInt32(&peak))
}

func TestMapLimit_FaultIsolation(t *testing.T) {
	boom := errors.New("boom")
	results := MapLimit(context.Background(), []string{"a", "b", "c", "d"}, 2, func(_ context.Context, s string) (string, error) {
		switch s {
		case "b":
			return "", boom
		case "c":
			panic("bad item")
		}
		return s + "!", nil
	})

	require.Len(t, results, 4)
	assert.Equal(t, "a!", results[0].Value)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.ErrorContains(t, results[2].Err, "bad item")
	assert.True(t, results[3].OK())
	assert.Equal(t, "d!", results[3].Value)
}

func TestMapLimit_Edges(t *testing.T) {
	assert.Empty(t, MapLimit(context.Background(), []int(nil), 4, func(context.Context, int) (int, error) { return 0, nil }))

	results := MapLimit(context.Background(), []int{1, 2}, 0, func(_ context.Context, i int) (int, error) { return i, nil })
	assert.Equal(t, 1, results[0].Value)
	assert.Equal(t, 2, results[1].Value)
}
