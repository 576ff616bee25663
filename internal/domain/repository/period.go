package repository

import "strings"

// Period is a lookback window understood by the market-data service.
type Period string

const (
	Period1mo Period = "1mo"
	Period3mo Period = "3mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period2y  Period = "2y"
	Period5y  Period = "5y"
)

// Interval is the bar size of a market series.
type Interval string

const (
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
)

const (
	DefaultPeriod   = Period6mo
	DefaultInterval = Interval1d
)

// NormalizePeriod maps raw input to a supported period, falling back to the default.
func NormalizePeriod(s string) Period {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Period1mo, Period3mo, Period6mo, Period1y, Period2y, Period5y:
		return p
	default:
		return DefaultPeriod
	}
}

// NormalizeInterval maps raw input to a supported interval, falling back to the default.
func NormalizeInterval(s string) Interval {
	switch i := Interval(strings.ToLower(strings.TrimSpace(s))); i {
	case Interval1d, Interval1wk, Interval1mo:
		return i
	default:
		return DefaultInterval
	}
}
