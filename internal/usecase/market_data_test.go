package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	ts       models.TimeSeries
	err      error
	calls    atomic.Int32
	period   string
	interval string
}

func (f *fakeWindow) SeriesWindow(_ context.Context, _ string, period, interval string) (models.TimeSeries, error) {
	f.calls.Add(1)
	f.period, f.interval = period, interval
	return f.ts, f.err
}

func cpiSeries() models.ScalarObservationSeries {
	vals := make([]float64, 13)
	for i := range vals {
		vals[i] = 300
	}
	vals[12] = 309
	return observations(vals...)
}

func TestMarketDataService_Summary(t *testing.T) {
	series := &fakeWindow{ts: ramp(40, 4700)}
	macro := &fakeMacro{data: map[string]models.ScalarObservationSeries{
		SeriesTenYear: observations(4.1, 4.25),
		SeriesCPI:     cpiSeries(),
	}}
	m := &fakeMetrics{}
	svc := NewMarketDataService(series, macro, cache.NewMemoryCache(), MarketDataConfig{}, m, nil)

	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Cards, 3)
	assert.Equal(t, "S&P 500 (SPY)", got.Cards[0].Label)
	assert.Equal(t, "4,739.00", got.Cards[0].Value)
	assert.Equal(t, "4.25%", got.Cards[1].Value)
	assert.Equal(t, "3.00%", got.Cards[2].Value)
	assert.Len(t, got.Chart.Labels, summaryPoints)
	assert.Equal(t, "3mo", series.period)

	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), series.calls.Load(), "second call served from cache")
}

func TestMarketDataService_SummaryDegradesMacro(t *testing.T) {
	series := &fakeWindow{ts: ramp(5, 100)}
	svc := NewMarketDataService(series, &fakeMacro{err: errors.New("fred down")}, nil, MarketDataConfig{Benchmark: "VOO"}, nil, nil)

	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "S&P 500 (VOO)", got.Cards[0].Label)
	assert.Equal(t, "N/A", got.Cards[1].Value)
	assert.Equal(t, "N/A", got.Cards[2].Value)

	series.err = errors.New("market down")
	_, err = NewMarketDataService(series, &fakeMacro{}, nil, MarketDataConfig{}, nil, nil).Summary(context.Background())
	assert.Error(t, err)
}

func TestMarketDataService_Market(t *testing.T) {
	series := &fakeWindow{ts: ramp(3, 10)}
	svc := NewMarketDataService(series, &fakeMacro{}, cache.NewMemoryCache(), MarketDataConfig{MarketTTL: time.Minute}, nil, nil)

	got, err := svc.Market(context.Background(), models.MarketDataRequest{Symbol: "AAPL", Period: "bogus", Interval: "1wk"})
	require.NoError(t, err)
	assert.Equal(t, "6mo", got.Period)
	assert.Equal(t, "1wk", got.Interval)
	assert.Equal(t, 12.0, got.Last.Float64)
	assert.Equal(t, "6mo", series.period)
}
