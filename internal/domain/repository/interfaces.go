package repository

import (
	"context"
	"time"

	"CorrNet/internal/domain/models"
)

// CandleStream is a live candle feed (websocket) from an exchange.
type CandleStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Candle, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher publishes analysis run results to a message bus.
type Publisher interface {
	PublishSummary(ctx context.Context, res *models.AnalysisResult) error
	Close() error
}

// CandlePublisher publishes closed candles to a message bus for downstream
// storage by the consumer side.
type CandlePublisher interface {
	PublishCandle(ctx context.Context, c *models.Candle) error
	PublishCandleBatch(ctx context.Context, candles []*models.Candle) error
	Close() error
}

// Storage persists raw candles.
type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, c *models.Candle) error
	StoreBatch(ctx context.Context, candles []*models.Candle) error
	Health(ctx context.Context) error // ping
	Close() error
}

// RunStore persists completed analysis runs and serves them back to the API.
type RunStore interface {
	SaveRun(ctx context.Context, res *models.AnalysisResult) error
	GetRun(ctx context.Context, runID string) (*models.AnalysisResult, error)
	LatestRun(ctx context.Context) (*models.AnalysisResult, error)
}

// Metrics records operational metrics for the pipeline.
type Metrics interface {
	RecordRun(status string)
	RecordStageError(stage string)
	RecordEdgeCounts(correlation, flow int)
	RecordClusterCount(n int)
	RecordNetworkDensity(d float64)
	RecordLatency(op string, seconds float64)
	RecordCandleStored(source, symbol string)
}

// CandleHistory provides read-only access to stored candles for analysis.
type CandleHistory interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
}
