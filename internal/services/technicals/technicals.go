// Package technicals derives per-symbol indicators from a price series.
package technicals

import (
	"math"

	"FinScope/internal/domain/models"

	"github.com/guregu/null/v6"
)

const (
	// MinPoints is the number of finite values Compute needs.
	MinPoints = 20

	shortWindow = 5
	longWindow  = 20
	volWindow   = 20
)

func finite(ts models.TimeSeries) []float64 {
	values := make([]float64, len(ts.Values))
	valid := make([]bool, len(ts.Values))
	for i, v := range ts.Values {
		values[i], valid[i] = v.Float64, v.Valid
	}
	return FiniteValues(values, valid)
}

// Overview summarises the last two finite values. ok is false with fewer than two.
func Overview(ts models.TimeSeries) (models.AssetOverview, bool) {
	vals := finite(ts)
	if len(vals) < 2 {
		return models.AssetOverview{}, false
	}
	last, prev := vals[len(vals)-1], vals[len(vals)-2]
	out := models.AssetOverview{Last: last, Prev: prev}
	if prev != 0 {
		out.ChangePct = finiteFloat((last - prev) / prev * 100)
	}
	return out, true
}

// Compute derives volatility, moving averages, trend and the distance to the
// window extremes. ok is false with fewer than MinPoints finite values.
func Compute(ts models.TimeSeries) (models.Technicals, bool) {
	vals := finite(ts)
	if len(vals) < MinPoints {
		return models.Technicals{}, false
	}

	var out models.Technicals
	if vol, ok := RMSVolatility(SimpleReturns(vals), volWindow); ok {
		out.Vol20Pct = null.FloatFrom(vol)
	}
	if v, ok := SMA(vals, shortWindow); ok {
		out.SMA5 = null.FloatFrom(v)
	}
	if v, ok := SMA(vals, longWindow); ok {
		out.SMA20 = null.FloatFrom(v)
	}
	if out.SMA5.Valid && out.SMA20.Valid {
		trend := models.TrendBearish
		if out.SMA5.Float64 > out.SMA20.Float64 {
			trend = models.TrendBullish
		}
		out.SMATrend = &trend
	}

	last := vals[len(vals)-1]
	hi, lo := vals[0], vals[0]
	for _, v := range vals[1:] {
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	if hi != 0 {
		out.DistTo6mHighPct = finiteFloat((hi - last) / hi * 100)
	}
	if lo != 0 {
		out.DistTo6mLowPct = finiteFloat((last - lo) / lo * 100)
	}
	return out, true
}

func finiteFloat(v float64) null.Float {
	if !isFinite(v) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
