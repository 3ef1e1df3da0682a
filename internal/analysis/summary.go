package analysis

import (
	"CorrNet/internal/domain/models"
)

// NetworkSummaryModel aggregates counts and the network density metric for a
// completed run. Pure aggregation over already-validated inputs.
type NetworkSummaryModel struct{}

func NewNetworkSummaryModel() *NetworkSummaryModel { return &NetworkSummaryModel{} }

// Summarize builds the headline record for one run. A universe of fewer than
// two assets has a zero-pair denominator and is defined as density zero.
func (s *NetworkSummaryModel) Summarize(assets int, corr []models.CorrelationEdge, flow []models.FlowEdge, clusters []models.AssetCluster) models.NetworkSummary {
	density := 0.0
	if assets >= 2 {
		density = float64(len(corr)) / (float64(assets) * float64(assets-1) / 2)
	}
	return models.NetworkSummary{
		TotalAssets:      assets,
		CorrelationPairs: len(corr),
		FlowConnections:  len(flow),
		Clusters:         len(clusters),
		NetworkDensity:   density,
	}
}
