package technicals

import (
	"math"
	"testing"

	"FinScope/internal/domain/models"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(values ...float64) models.TimeSeries {
	labels := make([]string, len(values))
	for i := range labels {
		labels[i] = string(rune('a'+i%26)) + string(rune('0'+i/26))
	}
	return models.NewTimeSeries(labels, values)
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestCompute_Trend(t *testing.T) {
	up, ok := Compute(series(ramp(30, 100, 1)...))
	require.True(t, ok)
	require.NotNil(t, up.SMATrend)
	assert.Equal(t, models.TrendBullish, *up.SMATrend)
	assert.Greater(t, up.SMA5.Float64, up.SMA20.Float64)

	down, ok := Compute(series(ramp(30, 200, -1)...))
	require.True(t, ok)
	assert.Equal(t, models.TrendBearish, *down.SMATrend)
}

func TestCompute_Indicators(t *testing.T) {
	vals := ramp(25, 100, 1) // 100..124
	tech, ok := Compute(series(vals...))
	require.True(t, ok)

	assert.InDelta(t, 122.0, tech.SMA5.Float64, 1e-9)
	assert.InDelta(t, 114.5, tech.SMA20.Float64, 1e-9)
	assert.InDelta(t, 0.0, tech.DistTo6mHighPct.Float64, 1e-9)
	assert.InDelta(t, 24.0, tech.DistTo6mLowPct.Float64, 1e-9)

	returns := SimpleReturns(vals)
	sum2 := 0.0
	for _, r := range returns[len(returns)-20:] {
		sum2 += r * r
	}
	assert.InDelta(t, math.Sqrt(sum2/20)*100, tech.Vol20Pct.Float64, 1e-9)
}

func TestCompute_InsufficientData(t *testing.T) {
	_, ok := Compute(series(ramp(19, 100, 1)...))
	assert.False(t, ok)

	// Nulls do not count towards the minimum.
	ts := series(ramp(20, 100, 1)...)
	ts.Values[3] = null.Float{}
	_, ok = Compute(ts)
	assert.False(t, ok)
}

func TestCompute_ZeroExtremes(t *testing.T) {
	vals := append([]float64{0}, ramp(20, 1, 1)...)
	tech, ok := Compute(series(vals...))
	require.True(t, ok)
	assert.False(t, tech.DistTo6mLowPct.Valid)
	assert.True(t, tech.DistTo6mHighPct.Valid)
	assert.True(t, tech.Vol20Pct.Valid)
}

func TestOverview(t *testing.T) {
	ov, ok := Overview(series(100, 110))
	require.True(t, ok)
	assert.Equal(t, 110.0, ov.Last)
	assert.Equal(t, 100.0, ov.Prev)
	assert.InDelta(t, 10.0, ov.ChangePct.Float64, 1e-9)

	zero, ok := Overview(series(0, 5))
	require.True(t, ok)
	assert.False(t, zero.ChangePct.Valid)

	_, ok = Overview(series(1))
	assert.False(t, ok)
}

func TestSimpleReturns_ZeroPredecessor(t *testing.T) {
	assert.Equal(t, []float64{0, 1}, SimpleReturns([]float64{0, 5, 10}))
	assert.Nil(t, SimpleReturns([]float64{1}))
}

func TestCompute_DistanceToHigh(t *testing.T) {
	vals := append(ramp(20, 100, 1), 99.5) // high 119, last 99.5
	tech, ok := Compute(series(vals...))
	require.True(t, ok)
	assert.InDelta(t, (119-99.5)/119*100, tech.DistTo6mHighPct.Float64, 1e-9)
	assert.InDelta(t, 0.0, tech.DistTo6mLowPct.Float64, 1e-9)
}
