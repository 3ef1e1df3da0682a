package service

import (
	"context"

	"CorrNet/internal/domain/models"
)

// MarketData lists tradable assets and fetches their candle histories.
type MarketData interface {
	ListAssets(ctx context.Context) ([]models.AssetInfo, error)
	FetchSeries(ctx context.Context, symbols []string, hours int, interval string) ([]models.AssetSeries, error)
}

// FlowEstimator is the external transfer-entropy oracle. Given a standardized
// return matrix it returns a directed edge list; the statistical method is a
// black box to this service.
type FlowEstimator interface {
	EstimateNetwork(ctx context.Context, m *models.ReturnMatrix) ([]models.FlowEdge, error)
}

// ReportRenderer turns a completed run into a human-readable report.
type ReportRenderer interface {
	RenderMarkdown(res *models.AnalysisResult) (string, error)
}
