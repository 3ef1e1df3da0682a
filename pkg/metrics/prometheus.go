package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal      *prometheus.CounterVec
	stageErrors    *prometheus.CounterVec
	candlesStored  *prometheus.CounterVec
	edgeCounts     *prometheus.GaugeVec
	clusterCount   prometheus.Gauge
	networkDensity prometheus.Gauge
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corrnet_analysis_runs_total",
				Help: "Total number of analysis runs by final status",
			},
			[]string{"status"},
		),
		stageErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corrnet_stage_errors_total",
				Help: "Total number of pipeline stage failures",
			},
			[]string{"stage"},
		),
		candlesStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corrnet_candles_stored_total",
				Help: "Total number of candles written to a backend",
			},
			[]string{"source", "symbol"},
		),
		edgeCounts: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "corrnet_network_edges",
				Help: "Edge counts from the most recent analysis run",
			},
			[]string{"kind"},
		),
		clusterCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "corrnet_asset_clusters",
				Help: "Cluster count from the most recent analysis run",
			},
		),
		networkDensity: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "corrnet_network_density",
				Help: "Correlation network density from the most recent run",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corrnet_operation_duration_seconds",
				Help:    "Duration of pipeline operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRun records a completed or failed analysis run.
func (r *Recorder) RecordRun(status string) {
	r.runsTotal.WithLabelValues(status).Inc()
}

// RecordStageError records a pipeline stage failure.
func (r *Recorder) RecordStageError(stage string) {
	r.stageErrors.WithLabelValues(stage).Inc()
}

// RecordEdgeCounts records edge counts for the latest run.
func (r *Recorder) RecordEdgeCounts(correlation, flow int) {
	r.edgeCounts.WithLabelValues("correlation").Set(float64(correlation))
	r.edgeCounts.WithLabelValues("flow").Set(float64(flow))
}

// RecordClusterCount records the cluster count for the latest run.
func (r *Recorder) RecordClusterCount(n int) {
	r.clusterCount.Set(float64(n))
}

// RecordNetworkDensity records the density of the latest correlation graph.
func (r *Recorder) RecordNetworkDensity(d float64) {
	r.networkDensity.Set(d)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordCandleStored records a candle written to a backend.
func (r *Recorder) RecordCandleStored(source, symbol string) {
	r.candlesStored.WithLabelValues(source, symbol).Inc()
}
