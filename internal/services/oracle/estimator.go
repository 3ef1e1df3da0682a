package oracle

import (
	"context"
	"fmt"
	"time"

	"CorrNet/internal/analysis"
	"CorrNet/internal/domain/models"
	domsvc "CorrNet/internal/domain/service"
	svcmetrics "CorrNet/internal/service/metrics"
	"CorrNet/pkg/config"
)

// HTTPFlowEstimator calls the external transfer-entropy service. The
// estimator receives the standardized return matrix plus the full lag and
// permutation-test configuration, and returns a directed edge list indexed by
// matrix column. CorrNet never validates the statistical method itself, only
// the shape of the response.
type HTTPFlowEstimator struct {
	base *HTTPServiceBase
	cfg  *config.Config
}

func NewHTTPFlowEstimator(cfg *config.Config) *HTTPFlowEstimator {
	svcmetrics.Register()
	return &HTTPFlowEstimator{base: NewHTTPServiceBase(cfg), cfg: cfg}
}

type networkSettings struct {
	CMIEstimator  string `json:"cmi_estimator"`
	MinLagSources int    `json:"min_lag_sources"`
	MaxLagSources int    `json:"max_lag_sources"`
	MaxLagTarget  int    `json:"max_lag_target"`
	TauSources    int    `json:"tau_sources"`
	TauTarget     int    `json:"tau_target"`
	NPermMaxStat  int    `json:"n_perm_max_stat"`
	NPermMinStat  int    `json:"n_perm_min_stat"`
	NPermOmnibus  int    `json:"n_perm_omnibus"`
	FDRAlpha      float64 `json:"fdr_alpha"`
	KraskovK      int    `json:"kraskov_k"`
	NumThreads    string `json:"num_threads"`
}

type networkRequest struct {
	Symbols  []string        `json:"symbols"`
	Rows     [][]float64     `json:"rows"` // observations x assets
	Settings networkSettings `json:"settings"`
}

type rawEdge struct {
	SourceIndex int      `json:"source_index"`
	TargetIndex int      `json:"target_index"`
	Strength    float64  `json:"strength"`
	PValue      *float64 `json:"p_value,omitempty"`
}

type networkResponse struct {
	Edges []rawEdge `json:"edges"`
}

// EstimateNetwork runs the multivariate transfer-entropy analysis remotely
// and maps the returned column indices back to asset symbols. A response
// referencing an unknown column is malformed and reported as an oracle
// failure, not silently skipped.
func (e *HTTPFlowEstimator) EstimateNetwork(ctx context.Context, m *models.ReturnMatrix) ([]models.FlowEdge, error) {
	req := networkRequest{
		Symbols: m.Symbols,
		Rows:    m.Rows,
		Settings: networkSettings{
			CMIEstimator:  e.cfg.Oracle.Estimator,
			MinLagSources: e.cfg.Oracle.MinLagSources,
			MaxLagSources: e.cfg.Oracle.MaxLagSources,
			MaxLagTarget:  e.cfg.Oracle.MaxLagTarget,
			TauSources:    e.cfg.Oracle.TauSources,
			TauTarget:     e.cfg.Oracle.TauTarget,
			NPermMaxStat:  e.cfg.Oracle.NPermMaxStat,
			NPermMinStat:  e.cfg.Oracle.NPermMinStat,
			NPermOmnibus:  e.cfg.Oracle.NPermOmnibus,
			FDRAlpha:      e.cfg.Oracle.FDRAlpha,
			KraskovK:      e.cfg.Oracle.KraskovK,
			NumThreads:    e.cfg.Oracle.NumThreads,
		},
	}

	start := time.Now()
	var resp networkResponse
	err := e.base.PostJSON(ctx, "/network/analyse", req, &resp)
	svcmetrics.OracleLatency.WithLabelValues("network_analyse").Observe(time.Since(start).Seconds())
	if err != nil {
		svcmetrics.OracleErrors.WithLabelValues("network_analyse").Inc()
		return nil, &analysis.OracleFailureError{Stage: "oracle", Err: err}
	}

	edges := make([]models.FlowEdge, 0, len(resp.Edges))
	for _, re := range resp.Edges {
		if re.SourceIndex < 0 || re.SourceIndex >= len(m.Symbols) ||
			re.TargetIndex < 0 || re.TargetIndex >= len(m.Symbols) {
			svcmetrics.OracleErrors.WithLabelValues("network_analyse").Inc()
			return nil, &analysis.OracleFailureError{
				Stage: "oracle",
				Err:   fmt.Errorf("edge index out of range: %d -> %d", re.SourceIndex, re.TargetIndex),
			}
		}
		edges = append(edges, models.FlowEdge{
			Source:   m.Symbols[re.SourceIndex],
			Target:   m.Symbols[re.TargetIndex],
			Strength: re.Strength,
			PValue:   re.PValue,
		})
	}
	return edges, nil
}

var _ domsvc.FlowEstimator = (*HTTPFlowEstimator)(nil)
