package models

import "time"

// ReturnMatrix is the standardized return matrix produced by preprocessing.
// Rows are time-aligned observations in chronological order, columns are
// assets. Built once per run and never mutated afterward.
type ReturnMatrix struct {
	Symbols []string
	Rows    [][]float64 // len(Rows[i]) == len(Symbols) for every i
}

// NumAssets returns the number of asset columns.
func (m *ReturnMatrix) NumAssets() int { return len(m.Symbols) }

// NumObservations returns the number of aligned observation rows.
func (m *ReturnMatrix) NumObservations() int { return len(m.Rows) }

// Column copies out the series for column index i.
func (m *ReturnMatrix) Column(i int) []float64 {
	out := make([]float64, len(m.Rows))
	for r := range m.Rows {
		out[r] = m.Rows[r][i]
	}
	return out
}

// CorrelationEdge is an undirected relationship between two assets whose
// return correlation cleared the configured threshold. AbsCorrelation is the
// ranking key.
type CorrelationEdge struct {
	AssetA         string  `json:"asset_a"`
	AssetB         string  `json:"asset_b"`
	Correlation    float64 `json:"correlation"`
	AbsCorrelation float64 `json:"abs_correlation"`
}

// FlowEdge is a directed transfer-entropy relationship produced by the
// external estimator. PValue is nil when the estimator did not report one;
// it is informational and never used for filtering.
type FlowEdge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Strength float64  `json:"transfer_entropy"`
	PValue   *float64 `json:"p_value,omitempty"`
}

// ClusterOrigin tags which edge set a cluster was derived from.
type ClusterOrigin string

const (
	OriginCorrelation ClusterOrigin = "correlation_based"
	OriginFlow        ClusterOrigin = "te_based"
)

// AssetCluster is a connected group of related assets. Size is always >= 2.
// Strength is "high" for clusters of three or more assets, "medium" otherwise.
type AssetCluster struct {
	Origin   ClusterOrigin `json:"type"`
	Assets   []string      `json:"assets"`
	Size     int           `json:"size"`
	Strength string        `json:"strength"`
}

// NetworkSummary aggregates headline counts for one analysis run. Density is
// |correlation edges| over all possible unordered pairs, defined as zero for
// universes of fewer than two assets.
type NetworkSummary struct {
	TotalAssets      int     `json:"total_assets"`
	CorrelationPairs int     `json:"highly_correlated_pairs"`
	FlowConnections  int     `json:"te_connections"`
	Clusters         int     `json:"asset_combinations"`
	NetworkDensity   float64 `json:"network_density"`
}

// AnalysisResult is the complete, immutable output of one analysis run.
type AnalysisResult struct {
	RunID            string            `json:"run_id"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       time.Time         `json:"finished_at"`
	LookbackHours    int               `json:"lookback_hours"`
	Observations     int               `json:"observations"`
	Symbols          []string          `json:"symbols"`
	CorrelationEdges []CorrelationEdge `json:"correlation_pairs"`
	FlowEdges        []FlowEdge        `json:"te_connections"`
	Clusters         []AssetCluster    `json:"asset_combinations"`
	Summary          NetworkSummary    `json:"summary"`
}
