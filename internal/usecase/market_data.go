package usecase

import (
	"context"
	"fmt"
	"time"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	"FinScope/pkg/cache"
	applogger "FinScope/pkg/logger"

	"github.com/guregu/null/v6"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	summaryKey    = "data:summary"
	summaryPoints = 30
)

// WindowedSeriesSource fetches a market series for an explicit window.
type WindowedSeriesSource interface {
	SeriesWindow(ctx context.Context, symbol, period, interval string) (models.TimeSeries, error)
}

// MarketDataConfig tunes the dashboard data endpoints.
type MarketDataConfig struct {
	Benchmark  string
	SummaryTTL time.Duration
	MarketTTL  time.Duration
}

// MarketDataService serves the dashboard summary and ad-hoc symbol series.
type MarketDataService struct {
	series  WindowedSeriesSource
	macro   domrepo.MacroSource
	cache   cache.Service
	cfg     MarketDataConfig
	metrics domrepo.Metrics
	log     *applogger.Logger
	printer *message.Printer
}

func NewMarketDataService(series WindowedSeriesSource, macro domrepo.MacroSource, c cache.Service, cfg MarketDataConfig, m domrepo.Metrics, l *applogger.Logger) *MarketDataService {
	if cfg.Benchmark == "" {
		cfg.Benchmark = "SPY"
	}
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = time.Minute
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &MarketDataService{
		series:  series,
		macro:   macro,
		cache:   c,
		cfg:     cfg,
		metrics: m,
		log:     l,
		printer: message.NewPrinter(language.English),
	}
}

// Summary returns the benchmark card and chart plus the 10Y yield and CPI
// YoY cards. Only a benchmark failure fails the call; a missing macro value
// renders as "N/A".
func (s *MarketDataService) Summary(ctx context.Context) (*models.DataSummary, error) {
	return cache.WithCache(ctx, s.cache, summaryKey, s.cfg.SummaryTTL, s.buildSummary, s.observe("summary"))
}

func (s *MarketDataService) buildSummary(ctx context.Context) (*models.DataSummary, error) {
	var (
		bench        models.TimeSeries
		benchErr     error
		tenYear, cpi models.ScalarObservationSeries
		tenErr       error
		cpiErr       error
	)

	var g errgroup.Group
	g.Go(func() error {
		bench, benchErr = s.series.SeriesWindow(ctx, s.cfg.Benchmark, string(domrepo.Period3mo), string(domrepo.Interval1d))
		return nil
	})
	g.Go(func() error {
		tenYear, tenErr = s.macro.Observations(ctx, SeriesTenYear)
		return nil
	})
	g.Go(func() error {
		cpi, cpiErr = s.macro.Observations(ctx, SeriesCPI)
		return nil
	})
	_ = g.Wait()

	if benchErr != nil {
		return nil, fmt.Errorf("load %s: %w", s.cfg.Benchmark, benchErr)
	}
	if tenErr != nil {
		s.log.Warn("summary 10Y yield unavailable", applogger.Error(tenErr))
	}
	if cpiErr != nil {
		s.log.Warn("summary CPI unavailable", applogger.Error(cpiErr))
	}

	tail := bench.Tail(summaryPoints)
	return &models.DataSummary{
		Cards: []models.SummaryCard{
			{Label: fmt.Sprintf("S&P 500 (%s)", s.cfg.Benchmark), Value: s.number(lastValue(tail))},
			{Label: "10Y Yield", Value: s.percent(lastObservation(tenYear))},
			{Label: "CPI YoY", Value: s.percent(YearOverYear(cpi))},
		},
		Chart: models.SummaryChart{Labels: tail.Labels, Series: tail.Values},
	}, nil
}

// Market returns one symbol's series for the requested window.
func (s *MarketDataService) Market(ctx context.Context, req models.MarketDataRequest) (*models.MarketData, error) {
	period := domrepo.NormalizePeriod(req.Period)
	interval := domrepo.NormalizeInterval(req.Interval)
	key := cache.Key("data:market", req.Symbol, period, interval)

	return cache.WithCache(ctx, s.cache, key, s.cfg.MarketTTL, func(ctx context.Context) (*models.MarketData, error) {
		ts, err := s.series.SeriesWindow(ctx, req.Symbol, string(period), string(interval))
		if err != nil {
			return nil, err
		}
		return &models.MarketData{
			Symbol:   req.Symbol,
			Period:   string(period),
			Interval: string(interval),
			Series:   ts,
			Last:     lastValue(ts),
		}, nil
	}, s.observe("data_market"))
}

func (s *MarketDataService) observe(namespace string) cache.Observer {
	if s.metrics == nil {
		return nil
	}
	return func(_ string, hit bool) { s.metrics.RecordCache(namespace, hit) }
}

func (s *MarketDataService) number(v null.Float) string {
	if !v.Valid {
		return "N/A"
	}
	return s.printer.Sprintf("%.2f", v.Float64)
}

func (s *MarketDataService) percent(v null.Float) string {
	if !v.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", v.Float64)
}
