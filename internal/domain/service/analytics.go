package service

import (
	"context"

	"FinScope/internal/domain/models"
)

// Analyzer runs numeric analysis over the aggregated portfolio series.
type Analyzer interface {
	Analyze(ctx context.Context, portfolio models.TimeSeries) (models.Analysis, error)
}

// Forecaster produces a point forecast for one symbol.
type Forecaster interface {
	Forecast(ctx context.Context, symbol string, horizon int) (models.Forecast, error)
}

// Advisor turns positions and the macro snapshot into an investment signal.
type Advisor interface {
	Invest(ctx context.Context, positions []models.Position, macro models.Macro) (models.InvestSignal, error)
}

// PersonalFinanceSource summarises the user's transactions over a trailing
// window. A nil summary with a nil error means no data is available.
type PersonalFinanceSource interface {
	Summary(ctx context.Context, days int) (*models.PersonalFinance, error)
}

// ExplainRequest is the LLM input: a JSON-serialisable context and a persona.
type ExplainRequest struct {
	Context  interface{}
	Persona  string
	Question string
}

// Explanation is the narrative. Failed marks text that describes a failure
// rather than an explanation.
type Explanation struct {
	Text   string
	Failed bool
}

// Explainer narrates analytics. It never returns an error; failures are
// reported through Explanation.Failed.
type Explainer interface {
	Explain(ctx context.Context, req ExplainRequest) Explanation
}
