package dedupe

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_ConcurrentCallsShareOneExecution(t *testing.T) {
	var g Group[string]
	var calls int32
	release := make(chan struct{})

	const n = 5
	var wg sync.WaitGroup
	values := make([]string, n)
	started := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			v, _, err := g.Do(context.Background(), "report:abc", func() (string, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return "R", nil
			})
			assert.NoError(t, err)
			values[i] = v
		}(i)
	}

	for i := 0; i < n; i++ {
		<-started
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, v := range values {
		assert.Equal(t, "R", v)
	}
}

func TestGroup_ReleasesKeyAfterSettle(t *testing.T) {
	var g Group[int]
	calls := 0
	task := func() (int, error) {
		calls++
		return calls, nil
	}

	first, _, err := g.Do(context.Background(), "k", task)
	require.NoError(t, err)
	second, _, err := g.Do(context.Background(), "k", task)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestGroup_ErrorsAndPanicsReachCaller(t *testing.T) {
	var g Group[int]
	boom := errors.New("boom")

	_, _, err := g.Do(context.Background(), "err", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	_, _, err = g.Do(context.Background(), "panic", func() (int, error) { panic("x") })
	assert.ErrorContains(t, err, "panicked")
}

func TestGroup_CallerContextStopsWaiting(t *testing.T) {
	var g Group[int]
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, err := g.Do(ctx, "slow", func() (int, error) {
		<-release
		return 1, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
