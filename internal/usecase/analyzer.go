package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"CorrNet/internal/analysis"
	"CorrNet/internal/domain/models"
	domrepo "CorrNet/internal/domain/repository"
	domsvc "CorrNet/internal/domain/service"
	"CorrNet/internal/service/cache"
	"CorrNet/pkg/logger"
)

// NetworkAnalyzer orchestrates a full analysis run: fetch candles, build the
// standardized return matrix, derive correlation and information-flow edges,
// fuse them into clusters and persist the result.
type NetworkAnalyzer struct {
	market  domsvc.MarketData
	oracle  domsvc.FlowEstimator
	runs    domrepo.RunStore
	pub     domrepo.Publisher
	metrics domrepo.Metrics
	lgr     *logger.Logger

	prep   *analysis.SeriesPreprocessor
	corr   *analysis.CorrelationGraphBuilder
	flow   *analysis.InformationFlowAdapter
	fusion *analysis.RelationshipFusionEngine
	summ   *analysis.NetworkSummaryModel

	cache    cache.BytesCache
	cacheTTL time.Duration
	reports  ReportEnqueuer
}

type NetworkAnalyzerOption func(*NetworkAnalyzer)

// WithResultCache caches run results keyed by run parameters.
func WithResultCache(c cache.BytesCache, ttl time.Duration) NetworkAnalyzerOption {
	return func(a *NetworkAnalyzer) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithPublisher attaches a message-bus publisher for completed runs.
func WithPublisher(pub domrepo.Publisher) NetworkAnalyzerOption {
	return func(a *NetworkAnalyzer) { a.pub = pub }
}

// ReportEnqueuer pushes report-render jobs onto the work queue.
type ReportEnqueuer interface {
	PublishMessage(ctx context.Context, msgType string, payload interface{}) error
}

// WithReportQueue enqueues a report_render job after each successful run.
func WithReportQueue(q ReportEnqueuer) NetworkAnalyzerOption {
	return func(a *NetworkAnalyzer) { a.reports = q }
}

func NewNetworkAnalyzer(
	market domsvc.MarketData,
	oracle domsvc.FlowEstimator,
	runs domrepo.RunStore,
	metrics domrepo.Metrics,
	lgr *logger.Logger,
	policy analysis.MergePolicy,
	opts ...NetworkAnalyzerOption,
) *NetworkAnalyzer {
	a := &NetworkAnalyzer{
		market:  market,
		oracle:  oracle,
		runs:    runs,
		metrics: metrics,
		lgr:     lgr,
		prep:    analysis.NewSeriesPreprocessor(),
		corr:    analysis.NewCorrelationGraphBuilder(),
		flow:    analysis.NewInformationFlowAdapter(),
		fusion:  analysis.NewRelationshipFusionEngine(policy),
		summ:    analysis.NewNetworkSummaryModel(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunParams are the per-run knobs; zero values fall back to configured
// defaults at the handler layer, not here.
type RunParams struct {
	Hours                int
	MaxAssets            int
	CorrelationThreshold float64
	FlowThreshold        float64
	Interval             string
}

func (p RunParams) cacheKey() string {
	return fmt.Sprintf("run:%d:%d:%s:%g:%g", p.Hours, p.MaxAssets, p.Interval, p.CorrelationThreshold, p.FlowThreshold)
}

// Run executes the full pipeline and returns the completed result. The run is
// persisted and published before returning; cache and publish failures are
// logged but do not fail the run.
func (a *NetworkAnalyzer) Run(ctx context.Context, p RunParams) (*models.AnalysisResult, error) {
	started := time.Now().UTC()

	if a.cache != nil {
		if b, ok, err := a.cache.GetBytes(p.cacheKey()); err == nil && ok {
			var res models.AnalysisResult
			if json.Unmarshal(b, &res) == nil {
				a.lgr.Debug("analysis cache hit", logger.String("run_id", res.RunID))
				return &res, nil
			}
		}
	}

	res, err := a.run(ctx, p, started)
	if err != nil {
		a.metrics.RecordRun("error")
		return nil, err
	}
	a.metrics.RecordRun("ok")
	a.metrics.RecordLatency("analysis_run", time.Since(started).Seconds())

	if err := a.runs.SaveRun(ctx, res); err != nil {
		a.metrics.RecordStageError("persist")
		return nil, fmt.Errorf("save run %s: %w", res.RunID, err)
	}
	if a.pub != nil {
		if err := a.pub.PublishSummary(ctx, res); err != nil {
			a.metrics.RecordStageError("publish")
			a.lgr.Warn("publish run summary failed", logger.String("run_id", res.RunID), logger.Error(err))
		}
	}
	if a.reports != nil {
		if err := a.reports.PublishMessage(ctx, "report_render", ReportPayload{RunID: res.RunID}); err != nil {
			a.lgr.Warn("enqueue report render failed", logger.String("run_id", res.RunID), logger.Error(err))
		}
	}
	if a.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := a.cache.SetBytes(p.cacheKey(), b, a.cacheTTL); err != nil {
				a.lgr.Debug("cache run result failed", logger.Error(err))
			}
		}
	}

	a.lgr.Info("analysis run complete",
		logger.String("run_id", res.RunID),
		logger.Int("assets", res.Summary.TotalAssets),
		logger.Int("observations", res.Observations),
		logger.Int("correlation_pairs", res.Summary.CorrelationPairs),
		logger.Int("te_connections", res.Summary.FlowConnections),
		logger.Int("clusters", res.Summary.Clusters),
		logger.Duration("elapsed", time.Since(started)))
	return res, nil
}

func (a *NetworkAnalyzer) run(ctx context.Context, p RunParams, started time.Time) (*models.AnalysisResult, error) {
	assets, err := a.market.ListAssets(ctx)
	if err != nil {
		a.metrics.RecordStageError("list_assets")
		return nil, fmt.Errorf("list assets: %w", err)
	}
	if len(assets) > p.MaxAssets && p.MaxAssets > 0 {
		assets = assets[:p.MaxAssets]
	}
	symbols := make([]string, 0, len(assets))
	for _, ai := range assets {
		symbols = append(symbols, ai.Symbol)
	}
	a.lgr.Info("starting analysis run",
		logger.Int("assets", len(symbols)),
		logger.Int("lookback_hours", p.Hours),
		logger.String("interval", p.Interval))

	fetchStart := time.Now()
	series, err := a.market.FetchSeries(ctx, symbols, p.Hours, p.Interval)
	if err != nil {
		a.metrics.RecordStageError("fetch")
		return nil, fmt.Errorf("fetch series: %w", err)
	}
	a.metrics.RecordLatency("fetch_series", time.Since(fetchStart).Seconds())

	matrix, err := a.prep.Prepare(series)
	if err != nil {
		a.metrics.RecordStageError("preprocess")
		return nil, fmt.Errorf("prepare return matrix: %w", err)
	}

	corrEdges := a.corr.Build(matrix, p.CorrelationThreshold)

	oracleStart := time.Now()
	rawFlow, err := a.oracle.EstimateNetwork(ctx, matrix)
	if err != nil {
		a.metrics.RecordStageError("oracle")
		var ofe *analysis.OracleFailureError
		if errors.As(err, &ofe) {
			return nil, err
		}
		return nil, &analysis.OracleFailureError{Stage: "oracle", Err: err}
	}
	a.metrics.RecordLatency("oracle_estimate", time.Since(oracleStart).Seconds())
	flowEdges := a.flow.FilterAndRank(rawFlow, p.FlowThreshold)

	clusters := a.fusion.Cluster(corrEdges, flowEdges)
	summary := a.summ.Summarize(matrix.NumAssets(), corrEdges, flowEdges, clusters)

	a.metrics.RecordEdgeCounts(len(corrEdges), len(flowEdges))
	a.metrics.RecordClusterCount(len(clusters))
	a.metrics.RecordNetworkDensity(summary.NetworkDensity)

	return &models.AnalysisResult{
		RunID:            started.Format("20060102T150405Z"),
		StartedAt:        started,
		FinishedAt:       time.Now().UTC(),
		LookbackHours:    p.Hours,
		Observations:     matrix.NumObservations(),
		Symbols:          matrix.Symbols,
		CorrelationEdges: corrEdges,
		FlowEdges:        flowEdges,
		Clusters:         clusters,
		Summary:          summary,
	}, nil
}
