package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "FinScope/internal/middleware"
	"FinScope/internal/usecase"
	"FinScope/pkg/cache"
	pkgch "FinScope/pkg/clickhouse"
	"FinScope/pkg/config"
	xhttp "FinScope/pkg/http"
	pkgkafka "FinScope/pkg/kafka"
	applogger "FinScope/pkg/logger"
	"FinScope/pkg/queue"
)

const rateLimitSweep = time.Minute

// Components are the long-lived parts started and stopped by App. Everything
// except HTTP and Cache is optional.
type Components struct {
	HTTP       *xhttp.Server
	Cache      cache.Service
	Redis      *cache.RedisCache
	Archiver   *usecase.ReportArchiver
	Consumer   *pkgkafka.Consumer
	Queue      *queue.RedisQueue
	RateLimit  *mid.ClientRateLimit
	Producer   *pkgkafka.Producer
	ClickHouse *pkgch.Client
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg *config.Config
	log *applogger.Logger
	c   Components
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, c Components) *App {
	if l == nil {
		l = applogger.NewNop()
	}
	return &App{cfg: cfg, log: l, c: c}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.start(ctx); err != nil {
		a.shutdown()
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	a.shutdown()
	return nil
}

func (a *App) start(ctx context.Context) error {
	if a.cfg.Logging.Collector.Enabled && a.c.Producer != nil {
		a.log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   a.cfg.Logging.Collector.Interval,
			CountThreshold: a.cfg.Logging.Collector.CountThreshold,
			Topic:          a.cfg.Logging.Collector.Topic,
			Service:        "finscope",
			IncludeWarn:    a.cfg.Logging.Collector.IncludeWarn,
			Publisher:      a.c.Producer,
		})
		a.log.Info("log collector enabled", applogger.String("topic", a.cfg.Logging.Collector.Topic))
	}

	// Deliveries outlive the signal so queued runs drain during shutdown.
	if a.c.Archiver != nil {
		a.c.Archiver.Start(context.WithoutCancel(ctx))
		a.log.Info("report archiver started", applogger.String("backend", a.cfg.Archive.Backend))
	}

	if a.c.Consumer != nil {
		if err := a.c.Consumer.Start(); err != nil {
			return err
		}
	}

	if a.c.Queue != nil {
		if err := a.c.Queue.Start(ctx); err != nil {
			return err
		}
	}

	if a.c.RateLimit != nil {
		go a.c.RateLimit.Run(ctx, rateLimitSweep)
	}

	return a.c.HTTP.Start()
}

// shutdown stops intake first, then drains background work, then closes
// the shared clients.
func (a *App) shutdown() {
	a.log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.c.HTTP.ShutdownTimeout())
	defer cancel()

	if err := a.c.HTTP.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.c.Archiver != nil {
		if err := a.c.Archiver.Stop(ctx); err != nil {
			a.log.Warn("archiver stop error", applogger.Error(err))
		}
		a.c.Archiver.Close()
	}

	if a.c.Queue != nil {
		if err := a.c.Queue.Stop(ctx); err != nil {
			a.log.Warn("redis queue stop error", applogger.Error(err))
		}
	}

	if a.c.Consumer != nil {
		if err := a.c.Consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.log.RemoveCollector()

	if a.c.Producer != nil {
		if err := a.c.Producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.c.ClickHouse != nil {
		if err := a.c.ClickHouse.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.closeCache()
	a.log.Info("shutdown complete")
}

// closeCache closes the cache, and Redis separately when the cache fell
// back to memory while the queue still held the connection.
func (a *App) closeCache() {
	if a.c.Cache != nil {
		if err := a.c.Cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.c.Redis == nil {
		return
	}
	if _, ok := a.c.Cache.(*cache.MemoryCache); ok {
		if err := a.c.Redis.Close(); err != nil {
			a.log.Warn("redis close error", applogger.Error(err))
		}
	}
}
