package repository

import (
	"context"
	"time"

	"FinScope/internal/domain/models"
)

// MarketSeriesSource fetches a daily price series for one symbol.
type MarketSeriesSource interface {
	Series(ctx context.Context, symbol string) (models.TimeSeries, error)
}

// MacroSource fetches one macro indicator series by id (e.g. DGS10).
type MacroSource interface {
	Observations(ctx context.Context, seriesID string) (models.ScalarObservationSeries, error)
}

// NewsSource returns recent headlines. Implementations degrade to an empty
// list instead of failing.
type NewsSource interface {
	Headlines(ctx context.Context) ([]models.Headline, error)
}

// ReportPublisher ships completed runs to the message bus.
type ReportPublisher interface {
	Publish(ctx context.Context, ev models.ReportEvent) error
	Close() error
}

// ReportStorage persists completed runs and their series.
type ReportStorage interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, ev models.ReportEvent) error
	Recent(ctx context.Context, limit int) ([]RunSummary, error)
	Health(ctx context.Context) error
	Close() error
}

// RunSummary is a row of the archived run log.
type RunSummary struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Symbols     []string          `json:"symbols"`
	Fast        bool              `json:"fast"`
	Beginner    bool              `json:"beginner"`
	Steps       map[string]string `json:"steps"`
}

// Metrics records pipeline observations.
type Metrics interface {
	RecordStep(step, status string)
	RecordRun(outcome string, seconds float64)
	RecordCache(namespace string, hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
