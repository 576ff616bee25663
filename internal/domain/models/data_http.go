package models

import "github.com/guregu/null/v6"

// MarketDataRequest is the query of GET /api/data/market.
type MarketDataRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,ticker"`
	Period   string `query:"period" json:"period" default:"6mo" validate:"oneof=1mo 3mo 6mo 1y 2y 5y"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"oneof=1d 1wk 1mo"`
}

// RecentRunsRequest is the query of GET /api/reports.
type RecentRunsRequest struct {
	Limit int `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=200"`
}

// ForecastRequest is the query of GET /api/forecast.
type ForecastRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required,ticker"`
	Horizon int    `query:"horizon" json:"horizon" default:"14" validate:"gte=1,lte=90"`
}

// AnalyzeRequest is the body of POST /api/analyze: a portfolio series.
type AnalyzeRequest struct {
	Labels []string     `json:"labels" validate:"required,min=1"`
	Values []null.Float `json:"values" validate:"required,min=1"`
}

// HasValues reports whether at least one value is non-null.
func (r AnalyzeRequest) HasValues() bool {
	for _, v := range r.Values {
		if v.Valid {
			return true
		}
	}
	return false
}

// Series returns the request as a TimeSeries.
func (r AnalyzeRequest) Series() TimeSeries {
	return TimeSeries{Labels: r.Labels, Values: r.Values}
}

// SummaryCard is one headline figure on the dashboard.
type SummaryCard struct {
	Label string      `json:"label"`
	Value string      `json:"value"`
	Delta null.String `json:"delta"`
}

// SummaryChart is the benchmark close series shown under the cards.
type SummaryChart struct {
	Labels []string     `json:"labels"`
	Series []null.Float `json:"series"`
}

// DataSummary is the dashboard overview: benchmark, 10Y yield and CPI YoY.
type DataSummary struct {
	Cards []SummaryCard `json:"cards"`
	Chart SummaryChart  `json:"chart"`
}

// MarketData is a single-symbol series with its window.
type MarketData struct {
	Symbol   string     `json:"symbol"`
	Period   string     `json:"period"`
	Interval string     `json:"interval"`
	Series   TimeSeries `json:"series"`
	Last     null.Float `json:"last"`
}
