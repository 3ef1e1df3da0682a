package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"CorrNet/internal/analysis"
	"CorrNet/internal/domain/repository"
	domsvc "CorrNet/internal/domain/service"
	"CorrNet/internal/handler/api"
	mid "CorrNet/internal/middleware"
	"CorrNet/internal/report"
	internalrepo "CorrNet/internal/repository"
	icache "CorrNet/internal/service/cache"
	"CorrNet/internal/service/hyperliquid"
	"CorrNet/internal/services/oracle"
	"CorrNet/internal/usecase"
	pkgch "CorrNet/pkg/clickhouse"
	"CorrNet/pkg/config"
	pkgkafka "CorrNet/pkg/kafka"
	applogger "CorrNet/pkg/logger"
	"CorrNet/pkg/metrics"
	"CorrNet/pkg/queue"
	"CorrNet/pkg/server"
)

// ProvideAppLogger creates the shared application logger.
func ProvideAppLogger() (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and initializes schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database}
	stmts = append(stmts, internalrepo.CandleSchema(cfg.ClickHouse.Database+".candles_raw")...)
	stmts = append(stmts, internalrepo.RunSchema(cfg.ClickHouse.Database+".analysis_runs")...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCandleStorage creates ClickHouse candle storage.
func ProvideCandleStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseCandleStorage(chClient.DB(), cfg.ClickHouse.Database+".candles_raw")
}

// ProvideCandlePublisher creates the Kafka candle publisher.
func ProvideCandlePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.CandlePublisher {
	return internalrepo.NewKafkaCandlePublisher(producer, cfg.Kafka.CandlesTopic)
}

// ProvideSummaryPublisher creates the Kafka run-summary publisher.
func ProvideSummaryPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaSummaryPublisher(producer, cfg.Kafka.SummaryTopic)
}

// ProvideRunStore creates the ClickHouse-backed run store.
func ProvideRunStore(chClient *pkgch.Client, cfg *config.Config) (repository.RunStore, error) {
	store := internalrepo.NewCHRunStore(chClient, cfg.ClickHouse.Database+".analysis_runs")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// ProvideCandleHistory creates read access to stored candles.
func ProvideCandleHistory(chClient *pkgch.Client, cfg *config.Config, lgr *applogger.Logger) repository.CandleHistory {
	h := internalrepo.NewCHCandleHistory(chClient, cfg.ClickHouse.Database+".candles_raw")
	h.SetLogger(lgr)
	return h
}

// ProvideHyperliquidStream creates the Hyperliquid WebSocket candle stream.
func ProvideHyperliquidStream(cfg *config.Config) repository.CandleStream {
	return hyperliquid.NewStream(
		cfg.Hyperliquid.WebSocketURL,
		cfg.Hyperliquid.Symbols,
		cfg.Analysis.Interval,
		cfg.Hyperliquid.ReconnectDelay,
		cfg.Hyperliquid.PingInterval,
	)
}

// ProvideMarketData creates the Hyperliquid REST client.
func ProvideMarketData(cfg *config.Config) domsvc.MarketData {
	return hyperliquid.New(cfg)
}

// ProvideFlowEstimator creates the HTTP transfer-entropy estimator adapter.
func ProvideFlowEstimator(cfg *config.Config) domsvc.FlowEstimator {
	return oracle.NewHTTPFlowEstimator(cfg)
}

// ProvideReportRenderer creates the Markdown report renderer.
func ProvideReportRenderer(cfg *config.Config) domsvc.ReportRenderer {
	return report.NewMarkdownRenderer(report.EstimatorInfo{
		Estimator:  cfg.Oracle.Estimator,
		KraskovK:   cfg.Oracle.KraskovK,
		NumThreads: cfg.Oracle.NumThreads,
		NPermMax:   cfg.Oracle.NPermMaxStat,
	})
}

// ProvideResultCache picks Redis or in-process TTL cache for run results.
func ProvideResultCache(cfg *config.Config) icache.BytesCache {
	if cfg.Analysis.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Analysis.Redis.Addr,
			Password: cfg.Analysis.Redis.Password,
			DB:       cfg.Analysis.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideReportQueue creates the Redis work queue for report rendering, or
// nil when Redis is disabled.
func ProvideReportQueue(cfg *config.Config, lgr *applogger.Logger) *queue.RedisQueue {
	if !cfg.Analysis.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Analysis.Redis.Addr,
		Password: cfg.Analysis.Redis.Password,
		DB:       cfg.Analysis.Redis.DB,
	})
	return queue.NewRedisQueue(lgr, &queue.QueueConfig{
		Workers:    1,
		RetryLimit: 3,
		RetryDelay: 10 * time.Second,
	}, client, queue.ModeProducerConsumer)
}

// ProvideReportJob creates the report-render queue job.
func ProvideReportJob(runs repository.RunStore, renderer domsvc.ReportRenderer, cfg *config.Config, lgr *applogger.Logger) *usecase.ReportJob {
	outDir := cfg.Report.OutputDir
	if outDir == "" {
		outDir = "reports"
	}
	return usecase.NewReportJob(runs, renderer, outDir, lgr)
}

// ProvideNetworkAnalyzer assembles the analysis pipeline.
func ProvideNetworkAnalyzer(
	market domsvc.MarketData,
	flow domsvc.FlowEstimator,
	runs repository.RunStore,
	m repository.Metrics,
	lgr *applogger.Logger,
	pub repository.Publisher,
	resultCache icache.BytesCache,
	reportQueue *queue.RedisQueue,
	cfg *config.Config,
) *usecase.NetworkAnalyzer {
	opts := []usecase.NetworkAnalyzerOption{
		usecase.WithPublisher(pub),
	}
	if resultCache != nil && cfg.Analysis.CacheTTL > 0 {
		opts = append(opts, usecase.WithResultCache(resultCache, cfg.Analysis.CacheTTL))
	}
	if reportQueue != nil {
		opts = append(opts, usecase.WithReportQueue(reportQueue))
	}
	return usecase.NewNetworkAnalyzer(
		market, flow, runs, m, lgr,
		analysis.MergePolicy(cfg.Analysis.MergePolicy),
		opts...,
	)
}

// ProvideCandlesUseCase creates the stored-candle read use case.
func ProvideCandlesUseCase(history repository.CandleHistory) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(history)
}

// ProvideRunsUseCase creates the stored-run read use case.
func ProvideRunsUseCase(runs repository.RunStore, renderer domsvc.ReportRenderer) *usecase.RunsUseCase {
	return usecase.NewRunsUseCase(runs, renderer)
}

// ProvideCandleProcessor creates the candle processor use case.
func ProvideCandleProcessor(
	pub repository.CandlePublisher,
	store repository.Storage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.CandleProcessor {
	return usecase.NewCandleProcessor(pub, store, m, cfg.Backend.Type)
}

// ProvideCandleCollector creates the candle collector use case.
func ProvideCandleCollector(
	stream repository.CandleStream,
	processor *usecase.CandleProcessor,
	m repository.Metrics,
) *usecase.CandleCollector {
	pipe := mid.NewIngestPipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewCandleCollector(stream, processor, m, pipe)
}

// ProvideKafkaCandlesHandler registers the handler for the candles topic.
func ProvideKafkaCandlesHandler(store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.KafkaCandlesHandler {
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.CandlesTopic, store, m)
}

// ProvideAnalysisHandler creates the Echo handler for the analysis API.
func ProvideAnalysisHandler(cfg *config.Config, lgr *applogger.Logger, analyzer *usecase.NetworkAnalyzer, runs *usecase.RunsUseCase, candles *usecase.CandlesUseCase) *api.AnalysisEchoHandler {
	return api.NewAnalysisEchoHandler(lgr, analyzer, runs, candles,
		api.WithDefaultThresholds(*cfg.Analysis.CorrelationThreshold, *cfg.Analysis.FlowThreshold))
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	collector *usecase.CandleCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	chClient *pkgch.Client,
	handler *api.AnalysisEchoHandler,
	reportQueue *queue.RedisQueue,
	reportJob *usecase.ReportJob,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, lgr, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	if reportQueue != nil {
		reportQueue.RegisterJob(reportJob)
		app.SetQueue(reportQueue)
	}
	if collector != nil {
		app.CandleProc = collector.Processor()
	}
	return app
}
