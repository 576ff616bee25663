package models

import "github.com/guregu/null/v6"

// Trend classifies the short versus long moving average.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
)

// Direction is the net headline sentiment for a symbol.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionNeutral  Direction = "neutral"
)

// AssetOverview summarises the last two points of a series.
type AssetOverview struct {
	Last      float64    `json:"last"`
	Prev      float64    `json:"prev"`
	ChangePct null.Float `json:"changePct"`
}

// Technicals holds indicators derived from one series. Absent values are null.
type Technicals struct {
	Vol20Pct        null.Float `json:"vol20_pct"`
	SMA5            null.Float `json:"sma5"`
	SMA20           null.Float `json:"sma20"`
	SMATrend        *Trend     `json:"sma_trend"`
	DistTo6mHighPct null.Float `json:"dist_to_6m_high_pct"`
	DistTo6mLowPct  null.Float `json:"dist_to_6m_low_pct"`
}

// NewsImpact is the sentiment mapping result for one symbol.
type NewsImpact struct {
	Direction Direction  `json:"direction"`
	Score     int        `json:"score"`
	Headlines []Headline `json:"headlines"`
}

// Macro is the macro snapshot. Any field may be null when its source failed.
type Macro struct {
	TenYearYieldPct     null.Float `json:"ten_year_yield_pct"`
	CPIYoYPct           null.Float `json:"cpi_yoy_pct"`
	UnemploymentRatePct null.Float `json:"unemployment_rate_pct"`
	VIXLast             null.Float `json:"vix_last"`
}

// Analysis is the numeric-analysis collaborator's output, or an error marker.
type Analysis struct {
	ZScoreLast   null.Float `json:"z_score_last"`
	AnomalyFlags []bool     `json:"anomaly_flags,omitempty"`
	Insights     []string   `json:"insights,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// Forecast is a per-symbol point forecast.
type Forecast struct {
	Symbol   string    `json:"symbol"`
	Labels   []string  `json:"labels,omitempty"`
	Forecast []float64 `json:"forecast"`
}

// InvestSignal is the investment-signal collaborator's output, or an error marker.
type InvestSignal struct {
	Signal     string      `json:"signal,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	Rationale  string      `json:"rationale,omitempty"`
	Portfolio  interface{} `json:"portfolio,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

type MerchantTotal struct {
	Merchant string  `json:"merchant"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// PersonalFinance summarises the user's transactions over a trailing window.
type PersonalFinance struct {
	WindowDays     int             `json:"window_days"`
	TotalSpend     null.Float      `json:"total_spend"`
	TotalIncome    null.Float      `json:"total_income"`
	NetSavings     null.Float      `json:"net_savings"`
	SavingsRatePct null.Float      `json:"savings_rate_pct"`
	TopCategories  []CategoryTotal `json:"top_categories"`
	TopMerchants   []MerchantTotal `json:"top_merchants"`
	Error          string          `json:"error,omitempty"`
}
