package market

import (
	"context"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/repository"
	"FinScope/internal/domain/service"
	"FinScope/pkg/cache"
)

// TTLs are the cache lifetimes per data kind.
type TTLs struct {
	Market   time.Duration
	Macro    time.Duration
	News     time.Duration
	Forecast time.Duration
}

// DefaultTTLs are the production cache lifetimes.
var DefaultTTLs = TTLs{
	Market:   120 * time.Second,
	Macro:    300 * time.Second,
	News:     300 * time.Second,
	Forecast: 600 * time.Second,
}

func observer(m repository.Metrics, namespace string) cache.Observer {
	if m == nil {
		return nil
	}
	return func(_ string, hit bool) { m.RecordCache(namespace, hit) }
}

// CachedSeries caches market series per symbol.
type CachedSeries struct {
	next    repository.MarketSeriesSource
	cache   cache.Service
	ttl     time.Duration
	metrics repository.Metrics
}

func NewCachedSeries(next repository.MarketSeriesSource, c cache.Service, ttl time.Duration, m repository.Metrics) *CachedSeries {
	return &CachedSeries{next: next, cache: c, ttl: ttl, metrics: m}
}

func (s *CachedSeries) Series(ctx context.Context, symbol string) (models.TimeSeries, error) {
	v, err := cache.WithCache(ctx, s.cache, cache.Key("market", symbol), s.ttl,
		func(ctx context.Context) (*models.TimeSeries, error) {
			ts, err := s.next.Series(ctx, symbol)
			if err != nil {
				return nil, err
			}
			return &ts, nil
		}, observer(s.metrics, "market"))
	if err != nil {
		return models.TimeSeries{}, err
	}
	return *v, nil
}

// CachedMacro caches macro observations per series id.
type CachedMacro struct {
	next    repository.MacroSource
	cache   cache.Service
	ttl     time.Duration
	metrics repository.Metrics
}

func NewCachedMacro(next repository.MacroSource, c cache.Service, ttl time.Duration, m repository.Metrics) *CachedMacro {
	return &CachedMacro{next: next, cache: c, ttl: ttl, metrics: m}
}

func (s *CachedMacro) Observations(ctx context.Context, seriesID string) (models.ScalarObservationSeries, error) {
	v, err := cache.WithCache(ctx, s.cache, cache.Key("fred", seriesID), s.ttl,
		func(ctx context.Context) (*models.ScalarObservationSeries, error) {
			obs, err := s.next.Observations(ctx, seriesID)
			if err != nil {
				return nil, err
			}
			return &obs, nil
		}, observer(s.metrics, "macro"))
	if err != nil {
		return models.ScalarObservationSeries{}, err
	}
	return *v, nil
}

// CachedNews caches the headline list. Empty lists are not cached so a
// transient outage is retried on the next run.
type CachedNews struct {
	next    repository.NewsSource
	cache   cache.Service
	ttl     time.Duration
	metrics repository.Metrics
}

func NewCachedNews(next repository.NewsSource, c cache.Service, ttl time.Duration, m repository.Metrics) *CachedNews {
	return &CachedNews{next: next, cache: c, ttl: ttl, metrics: m}
}

func (s *CachedNews) Headlines(ctx context.Context) ([]models.Headline, error) {
	v, err := cache.WithCache(ctx, s.cache, "news:headlines", s.ttl,
		func(ctx context.Context) (*[]models.Headline, error) {
			items, err := s.next.Headlines(ctx)
			if err != nil || len(items) == 0 {
				return nil, err
			}
			return &items, nil
		}, observer(s.metrics, "news"))
	if err != nil {
		return []models.Headline{}, err
	}
	if v == nil {
		return []models.Headline{}, nil
	}
	return *v, nil
}

// CachedForecaster caches forecasts per symbol and horizon.
type CachedForecaster struct {
	next    service.Forecaster
	cache   cache.Service
	ttl     time.Duration
	metrics repository.Metrics
}

func NewCachedForecaster(next service.Forecaster, c cache.Service, ttl time.Duration, m repository.Metrics) *CachedForecaster {
	return &CachedForecaster{next: next, cache: c, ttl: ttl, metrics: m}
}

func (s *CachedForecaster) Forecast(ctx context.Context, symbol string, horizon int) (models.Forecast, error) {
	key := cache.Key("forecast", symbol, horizon)
	v, err := cache.WithCache(ctx, s.cache, key, s.ttl,
		func(ctx context.Context) (*models.Forecast, error) {
			fc, err := s.next.Forecast(ctx, symbol, horizon)
			if err != nil {
				return nil, err
			}
			return &fc, nil
		}, observer(s.metrics, "forecast"))
	if err != nil {
		return models.Forecast{}, err
	}
	return *v, nil
}
