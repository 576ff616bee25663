package di

import (
	"context"
	"fmt"
	"time"

	"FinScope/internal/domain/repository"
	"FinScope/internal/domain/service"
	"FinScope/internal/handler/api"
	mid "FinScope/internal/middleware"
	internalrepo "FinScope/internal/repository"
	"FinScope/internal/service/llm"
	"FinScope/internal/service/market"
	svcmetrics "FinScope/internal/service/metrics"
	"FinScope/internal/service/ratelimit"
	"FinScope/internal/services/analytics"
	"FinScope/internal/usecase"
	"FinScope/pkg/cache"
	pkgch "FinScope/pkg/clickhouse"
	"FinScope/pkg/config"
	xhttp "FinScope/pkg/http"
	pkgkafka "FinScope/pkg/kafka"
	applogger "FinScope/pkg/logger"
	"FinScope/pkg/metrics"
	"FinScope/pkg/queue"
	"FinScope/pkg/server"
)

const initTimeout = 10 * time.Second

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: "finscope",
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates the Prometheus recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	svcmetrics.Register()
	return metrics.New(nil)
}

// ProvideRedisCache connects to Redis when the cache or the archive queue
// needs it. A failed connection is fatal only for the archive queue; the
// cache falls back to memory.
func ProvideRedisCache(cfg *config.Config, l *applogger.Logger) (*cache.RedisCache, error) {
	if cfg.Cache.Backend == "memory" && cfg.Archive.Backend != "redis" {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2, 30*time.Second),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		if cfg.Archive.Backend == "redis" {
			return nil, fmt.Errorf("redis: %w", err)
		}
		l.Warn("redis unavailable, falling back to memory cache", applogger.Error(err))
		return nil, nil
	}
	return rc, nil
}

// ProvideCache picks the cache backend.
func ProvideCache(cfg *config.Config, rc *cache.RedisCache, l *applogger.Logger) cache.Service {
	if rc != nil {
		switch cfg.Cache.Backend {
		case "redis":
			return rc
		case "layered":
			return cache.NewLayeredCache(rc,
				cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
				cache.WithLayeredL1TTL(cfg.Cache.TTL.L1),
			)
		}
	}
	l.Info("using memory cache", applogger.Int("max_size", cfg.Cache.MemoryMaxSize))
	return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
}

// ProvideClickHouseClient opens ClickHouse when enabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, 5*time.Minute),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout, cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideReportStorage creates the run archive tables. Nil without ClickHouse.
func ProvideReportStorage(ch *pkgch.Client) (repository.ReportStorage, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseReportStorage(ch)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("report storage: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a producer when the archive or the log
// collector publishes to Kafka.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	if cfg.Archive.Backend != "kafka" && !cfg.Logging.Collector.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Compression, cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopics(cfg.Kafka.AutoCreateTopics),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideRedisQueue creates the archive queue for the redis backend and
// registers the job that writes queued runs to storage.
func ProvideRedisQueue(cfg *config.Config, rc *cache.RedisCache, store repository.ReportStorage, m repository.Metrics, l *applogger.Logger) *queue.RedisQueue {
	if cfg.Archive.Backend != "redis" || rc == nil {
		return nil
	}
	q := queue.NewRedisQueue(rc.Client(), queue.Config{
		Workers:      cfg.Archive.Queue.Workers,
		RetryLimit:   cfg.Archive.Queue.RetryLimit,
		RetryDelay:   cfg.Archive.Queue.RetryDelay,
		PollInterval: cfg.Archive.Queue.PollInterval,
	}, queue.WithPrefix(cfg.Archive.Queue.Prefix), queue.WithLogger(l))
	if store != nil {
		q.Register(usecase.NewReportArchiveJob(store, m))
	}
	return q
}

// ProvideReportPublisher picks the publisher behind the archive backend.
func ProvideReportPublisher(cfg *config.Config, producer *pkgkafka.Producer, q *queue.RedisQueue) repository.ReportPublisher {
	switch cfg.Archive.Backend {
	case "kafka":
		if producer != nil {
			return internalrepo.NewKafkaReportPublisher(producer, cfg.Archive.Topic)
		}
	case "redis":
		if q != nil {
			return internalrepo.NewQueueReportPublisher(q, usecase.ReportEventType)
		}
	}
	return nil
}

// ProvideArchiver creates the background archiver. Nil when archiving is off.
func ProvideArchiver(cfg *config.Config, pub repository.ReportPublisher, store repository.ReportStorage, m repository.Metrics, l *applogger.Logger) *usecase.ReportArchiver {
	switch cfg.Archive.Backend {
	case "kafka", "redis":
		if pub == nil {
			return nil
		}
	case "clickhouse":
		if store == nil {
			return nil
		}
	default:
		return nil
	}
	return usecase.NewReportArchiver(pub, store, cfg.Archive.Backend, m, l,
		usecase.WithArchiveBuffer(cfg.Archive.BufferSize),
		usecase.WithArchiveRetry(cfg.Archive.MaxRetries, cfg.Archive.BaseDelay),
	)
}

// ProvideKafkaConsumer creates the archive consumer that writes the report
// topic into ClickHouse.
func ProvideKafkaConsumer(cfg *config.Config, store repository.ReportStorage, m repository.Metrics, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if cfg.Archive.Backend != "kafka" || !cfg.Kafka.Consumer.Enabled || store == nil {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewReportArchiveHandler(cfg.Archive.Topic, store, m))
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.LoggingHook{Log: l}))
	return consumer, nil
}

// ProvideSeriesClient creates the market series client.
func ProvideSeriesClient(cfg *config.Config, l *applogger.Logger) *market.SeriesClient {
	py := cfg.Providers.Python
	return market.NewSeriesClient(py.URL, py.Period, py.Interval,
		market.WithTimeout(py.MarketTimeout),
		market.WithRateLimit(py.RateLimit),
		market.WithLogger(l),
	)
}

// ProvideSeriesSource wraps the series client with the market cache.
func ProvideSeriesSource(cfg *config.Config, client *market.SeriesClient, c cache.Service, m repository.Metrics) repository.MarketSeriesSource {
	return market.NewCachedSeries(client, c, cfg.Cache.TTL.Market, m)
}

// ProvideMacroSource creates the cached FRED client.
func ProvideMacroSource(cfg *config.Config, c cache.Service, m repository.Metrics, l *applogger.Logger) repository.MacroSource {
	fred := cfg.Providers.FRED
	client := market.NewFREDClient(fred.APIKey,
		market.WithBaseURL(fred.BaseURL),
		market.WithTimeout(fred.Timeout),
		market.WithRateLimit(fred.RateLimit),
		market.WithLogger(l),
	)
	return market.NewCachedMacro(client, c, cfg.Cache.TTL.Macro, m)
}

// ProvideNewsSource creates the cached headline client.
func ProvideNewsSource(cfg *config.Config, c cache.Service, m repository.Metrics, l *applogger.Logger) repository.NewsSource {
	fh := cfg.Providers.Finnhub
	client := market.NewNewsClient(fh.APIKey, fh.Category, fh.Limit, cfg.Providers.Python.URL,
		market.WithBaseURL(fh.BaseURL),
		market.WithTimeout(fh.Timeout),
		market.WithRateLimit(fh.RateLimit),
		market.WithLogger(l),
	)
	return market.NewCachedNews(client, c, cfg.Cache.TTL.News, m)
}

func ProvideAnalyzer(cfg *config.Config) service.Analyzer {
	py := cfg.Providers.Python
	return analytics.NewHTTPAnalyzer(analytics.NewHTTPServiceBase(py.URL, py.AnalyzeTimeout, py.RetryAttempts))
}

func ProvideForecaster(cfg *config.Config, c cache.Service, m repository.Metrics) service.Forecaster {
	py := cfg.Providers.Python
	f := analytics.NewHTTPForecaster(analytics.NewHTTPServiceBase(py.URL, py.ForecastTimeout, py.RetryAttempts))
	return market.NewCachedForecaster(f, c, cfg.Cache.TTL.Forecast, m)
}

func ProvideAdvisor(cfg *config.Config) service.Advisor {
	py := cfg.Providers.Python
	return analytics.NewHTTPAdvisor(analytics.NewHTTPServiceBase(py.URL, py.InvestTimeout, py.RetryAttempts))
}

// ProvidePersonalFinance picks the transaction summary source. Nil disables
// the personal finance section.
func ProvidePersonalFinance(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (service.PersonalFinanceSource, error) {
	switch cfg.PersonalFinance.Source {
	case "http":
		py := cfg.Providers.Python
		return analytics.NewHTTPPersonalFinance(analytics.NewHTTPServiceBase(py.URL, py.BankTimeout, py.RetryAttempts)), nil
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("personal finance: clickhouse is not enabled")
		}
		ledger := internalrepo.NewClickHouseLedger(ch, l)
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		if err := ledger.Init(ctx); err != nil {
			return nil, fmt.Errorf("personal finance ledger: %w", err)
		}
		return ledger, nil
	default:
		return nil, nil
	}
}

// ProvideExplainer creates the Gemini explainer.
func ProvideExplainer(cfg *config.Config, l *applogger.Logger) (service.Explainer, error) {
	e, err := llm.NewGeminiExplainer(context.Background(), cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout, l)
	if err != nil {
		return nil, fmt.Errorf("explainer: %w", err)
	}
	return e, nil
}

// ProvideOrchestrator assembles the report pipeline.
func ProvideOrchestrator(
	cfg *config.Config,
	series repository.MarketSeriesSource,
	macro repository.MacroSource,
	news repository.NewsSource,
	analyzer service.Analyzer,
	forecaster service.Forecaster,
	advisor service.Advisor,
	finance service.PersonalFinanceSource,
	explainer service.Explainer,
	c cache.Service,
	last *usecase.LastReportStore,
	archiver *usecase.ReportArchiver,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ReportOrchestrator {
	deps := usecase.OrchestratorDeps{
		Series:     series,
		Macro:      macro,
		News:       news,
		Analyzer:   analyzer,
		Forecaster: forecaster,
		Advisor:    advisor,
		Finance:    finance,
		Explainer:  explainer,
		Cache:      c,
		Last:       last,
	}
	if archiver != nil {
		deps.Archive = archiver
	}
	return usecase.NewReportOrchestrator(deps, usecase.OrchestratorConfig{
		Concurrency:     cfg.Pipeline.MarketConcurrency,
		ForecastHorizon: cfg.Pipeline.ForecastHorizon,
		ChartPoints:     cfg.Pipeline.ChartPoints,
		VIXSymbol:       cfg.Pipeline.VIXSymbol,
		FinanceDays:     cfg.PersonalFinance.WindowDays,
		ReportTTL:       cfg.Cache.TTL.Report,
	}, l, m)
}

func ProvideReportService(cfg *config.Config, orch *usecase.ReportOrchestrator, c cache.Service, last *usecase.LastReportStore, l *applogger.Logger) *usecase.ReportService {
	return usecase.NewReportService(orch, c, last, cfg.Pipeline.DefaultSymbol, l)
}

func ProvideShareService(cfg *config.Config, c cache.Service, last *usecase.LastReportStore) *usecase.ShareService {
	return usecase.NewShareService(c, last, usecase.ShareConfig{
		DefaultTTL: cfg.Share.DefaultTTL,
		MinTTL:     cfg.Share.MinTTL,
		MaxTTL:     cfg.Share.MaxTTL,
		Origin:     cfg.Share.Origin,
	})
}

func ProvideMarketDataService(cfg *config.Config, client *market.SeriesClient, macro repository.MacroSource, c cache.Service, m repository.Metrics, l *applogger.Logger) *usecase.MarketDataService {
	return usecase.NewMarketDataService(client, macro, c, usecase.MarketDataConfig{
		SummaryTTL: cfg.Cache.TTL.Market,
		MarketTTL:  cfg.Cache.TTL.Market,
	}, m, l)
}

// ProvideRateLimit creates the per-client limiter. Nil when disabled.
func ProvideRateLimit(cfg *config.Config, m repository.Metrics, l *applogger.Logger) *mid.ClientRateLimit {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return mid.NewClientRateLimit(ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec), m, l)
}

// ProvideHealthChecks lists the probes behind /api/health.
func ProvideHealthChecks(ch *pkgch.Client, rc *cache.RedisCache, store repository.ReportStorage) map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{}
	if ch != nil {
		checks["clickhouse"] = ch.Health
	}
	if rc != nil {
		checks["redis"] = func(ctx context.Context) error { return rc.Client().Ping(ctx).Err() }
	}
	if store != nil {
		checks["archive"] = store.Health
	}
	return checks
}

// ProvideHandlers builds every HTTP route group.
func ProvideHandlers(
	l *applogger.Logger,
	reports *usecase.ReportService,
	shares *usecase.ShareService,
	data *usecase.MarketDataService,
	explainer service.Explainer,
	analyzer service.Analyzer,
	forecaster service.Forecaster,
	last *usecase.LastReportStore,
	store repository.ReportStorage,
	limit *mid.ClientRateLimit,
	checks map[string]api.HealthCheck,
) []xhttp.Handler {
	var runs api.RunLister
	if store != nil {
		runs = store
	}
	rl := limit.Middleware()
	return []xhttp.Handler{
		api.NewHealthHandler(checks),
		api.NewReportHandler(l, reports, runs, rl),
		api.NewShareHandler(l, shares, usecase.NewChatService(last, explainer), rl),
		api.NewDataHandler(l, data),
		api.NewPDFHandler(l, reports),
		api.NewAnalyticsHandler(l, analyzer, forecaster),
	}
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, handlers []xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(handlers,
		xhttp.WithAddr(cfg.Server.Host, cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(cfg.Metrics.Enabled),
		xhttp.WithLogger(l),
	)
}

// ProvideApp assembles the application lifecycle.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	c cache.Service,
	rc *cache.RedisCache,
	archiver *usecase.ReportArchiver,
	consumer *pkgkafka.Consumer,
	q *queue.RedisQueue,
	limit *mid.ClientRateLimit,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
) *server.App {
	return server.New(cfg, l, server.Components{
		HTTP:       httpServer,
		Cache:      c,
		Redis:      rc,
		Archiver:   archiver,
		Consumer:   consumer,
		Queue:      q,
		RateLimit:  limit,
		Producer:   producer,
		ClickHouse: ch,
	})
}
