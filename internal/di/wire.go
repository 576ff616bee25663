//go:build wireinject
// +build wireinject

package di

import (
	"FinScope/internal/usecase"
	"FinScope/pkg/config"
	"FinScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Archive
		ProvideReportStorage,
		ProvideRedisQueue,
		ProvideReportPublisher,
		ProvideArchiver,
		ProvideKafkaConsumer,

		// Providers
		ProvideSeriesClient,
		ProvideSeriesSource,
		ProvideMacroSource,
		ProvideNewsSource,
		ProvideAnalyzer,
		ProvideForecaster,
		ProvideAdvisor,
		ProvidePersonalFinance,
		ProvideExplainer,

		// Use cases
		usecase.NewLastReportStore,
		ProvideOrchestrator,
		ProvideReportService,
		ProvideShareService,
		ProvideMarketDataService,

		// HTTP
		ProvideRateLimit,
		ProvideHealthChecks,
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
