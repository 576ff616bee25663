package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func server(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestSeriesClient(t *testing.T) {
	srv := server(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "SPY":
			assert.Equal(t, "6mo", r.URL.Query().Get("period"))
			_, _ = w.Write([]byte(`{"labels":["2024-01-02","2024-01-03"],"values":[470.1,null]}`))
		case "BAD":
			_, _ = w.Write([]byte(`{"error":"unknown symbol"}`))
		case "SKEW":
			_, _ = w.Write([]byte(`{"labels":["2024-01-02"],"values":[1,2]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	c := NewSeriesClient(srv.URL, "6mo", "1d", WithTimeout(time.Second))
	ctx := context.Background()

	ts, err := c.Series(ctx, "SPY")
	require.NoError(t, err)
	assert.Equal(t, 2, ts.Len())
	assert.True(t, ts.Values[0].Valid)
	assert.False(t, ts.Values[1].Valid)

	for _, sym := range []string{"BAD", "SKEW", "DOWN"} {
		_, err := c.Series(ctx, sym)
		var fe *FetchError
		require.ErrorAs(t, err, &fe, sym)
		assert.Equal(t, sym, fe.ID)
		assert.Equal(t, "market", fe.Source)
	}
}

func TestSeriesClient_RateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := server(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"labels":["2024-01-02"],"values":[1]}`))
	})
	c := NewSeriesClient(srv.URL, "6mo", "1d", WithRateLimit(0.5))

	_, err := c.Series(context.Background(), "SPY")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Series(ctx, "SPY")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFREDClient_FiltersMissingMarker(t *testing.T) {
	srv := server(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fred/series/observations", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		switch r.URL.Query().Get("series_id") {
		case "DGS10":
			_, _ = w.Write([]byte(`{"observations":[{"date":"2024-01-01","value":"4.01"},{"date":"2024-01-02","value":"4.05"},{"date":"2024-01-03","value":"."}]}`))
		default:
			_, _ = w.Write([]byte(`{"observations":[{"date":"2024-01-01","value":"."}]}`))
		}
	})
	c := NewFREDClient("key", WithBaseURL(srv.URL), WithRateLimit(100))

	series, err := c.Observations(context.Background(), "DGS10")
	require.NoError(t, err)
	assert.Equal(t, 4.05, series.Last)
	assert.Len(t, series.Observations, 3)
	assert.Len(t, series.Valid(), 2)

	_, err = c.Observations(context.Background(), "EMPTY")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.ErrorContains(t, err, "FRED observations missing")
}

func TestFREDClient_RequiresKey(t *testing.T) {
	_, err := NewFREDClient("").Observations(context.Background(), "DGS10")
	assert.ErrorContains(t, err, "not configured")
}

func TestNewsClient(t *testing.T) {
	t.Run("finnhub", func(t *testing.T) {
		srv := server(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/news", r.URL.Path)
			_, _ = w.Write([]byte(`[{"headline":"Tech stocks surge","source":"Reuters","url":"u","datetime":1704186000},{"headline":" "}]`))
		})
		items, err := NewNewsClient("tok", "general", 10, "", WithBaseURL(srv.URL)).Headlines(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Tech stocks surge", items[0].Title)
		assert.Equal(t, "2024-01-02T09:00:00Z", items[0].PublishedAt)
	})

	t.Run("falls back when finnhub fails", func(t *testing.T) {
		finnhub := server(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) })
		feed := server(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/news", r.URL.Path)
			_, _ = w.Write([]byte(`{"articles":[{"title":"Oil slumps","source":{"name":"AP"},"publishedAt":"2024-01-02T10:00:00Z"}]}`))
		})
		items, err := NewNewsClient("tok", "", 0, feed.URL, WithBaseURL(finnhub.URL)).Headlines(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "AP", items[0].Source)
	})

	t.Run("total failure is an empty list", func(t *testing.T) {
		feed := server(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) })
		items, err := NewNewsClient("", "", 0, feed.URL).Headlines(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

type countingSeries struct {
	calls int32
	err   error
}

func (c *countingSeries) Series(_ context.Context, symbol string) (models.TimeSeries, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return models.TimeSeries{}, c.err
	}
	return models.NewTimeSeries([]string{"d1"}, []float64{1}), nil
}

type cacheMetrics struct{ hits, misses int }

func (m *cacheMetrics) RecordStep(string, string) {}
func (m *cacheMetrics) RecordRun(string, float64) {}
func (m *cacheMetrics) RecordError(string) {}
func (m *cacheMetrics) RecordLatency(string, float64) {}
func (m *cacheMetrics) RecordCache(_ string, hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func TestCachedSeries(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	src := &countingSeries{}
	m := &cacheMetrics{}
	cached := NewCachedSeries(src, mem, time.Minute, m)

	for i := 0; i < 3; i++ {
		ts, err := cached.Series(context.Background(), "SPY")
		require.NoError(t, err)
		assert.Equal(t, 1, ts.Len())
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.calls))
	assert.Equal(t, 2, m.hits)
	assert.Equal(t, 1, m.misses)

	failing := NewCachedSeries(&countingSeries{err: errors.New("down")}, mem, time.Minute, nil)
	_, err := failing.Series(context.Background(), "QQQ")
	assert.Error(t, err)
	ok, _ := mem.Exists(context.Background(), "market:QQQ")
	assert.False(t, ok)
}
