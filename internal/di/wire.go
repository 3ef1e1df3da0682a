//go:build wireinject
// +build wireinject

package di

import (
	"CorrNet/pkg/config"
	"CorrNet/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Shared infrastructure
		ProvideAppLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideCandleStorage,
		ProvideCandlePublisher,
		ProvideSummaryPublisher,
		ProvideRunStore,
		ProvideCandleHistory,
		ProvideHyperliquidStream,

		// External collaborators
		ProvideMarketData,
		ProvideFlowEstimator,
		ProvideReportRenderer,
		ProvideResultCache,
		ProvideReportQueue,

		// Use cases
		ProvideNetworkAnalyzer,
		ProvideRunsUseCase,
		ProvideCandlesUseCase,
		ProvideCandleProcessor,
		ProvideCandleCollector,
		ProvideKafkaCandlesHandler,
		ProvideReportJob,

		// HTTP + application server
		ProvideAnalysisHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
