package analytics

import (
	"context"
	"errors"

	"FinScope/internal/domain/models"
)

// HTTPAnalyzer calls the numeric-analysis service.
type HTTPAnalyzer struct {
	*HTTPServiceBase
}

func NewHTTPAnalyzer(base *HTTPServiceBase) *HTTPAnalyzer {
	return &HTTPAnalyzer{HTTPServiceBase: base}
}

type seriesPayload struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type analyzeReq struct {
	Portfolio seriesPayload `json:"portfolio"`
}

// Analyze posts the portfolio series. Null points are dropped since the
// service expects dense values.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, portfolio models.TimeSeries) (models.Analysis, error) {
	payload := seriesPayload{
		Labels: make([]string, 0, portfolio.Len()),
		Values: make([]float64, 0, portfolio.Len()),
	}
	for i, v := range portfolio.Values {
		if v.Valid {
			payload.Labels = append(payload.Labels, portfolio.Labels[i])
			payload.Values = append(payload.Values, v.Float64)
		}
	}
	if len(payload.Values) == 0 {
		return models.Analysis{}, errors.New("analyze: portfolio series is empty")
	}

	var out models.Analysis
	if err := a.PostJSON(ctx, "/analyze", analyzeReq{Portfolio: payload}, &out); err != nil {
		return models.Analysis{}, err
	}
	if out.Error != "" {
		return models.Analysis{}, errors.New(out.Error)
	}
	return out, nil
}
