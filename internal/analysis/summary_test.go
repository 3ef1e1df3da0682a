package analysis

import (
	"math"
	"testing"

	"CorrNet/internal/domain/models"
)

func TestSummarizeDensity(t *testing.T) {
	corr := []models.CorrelationEdge{
		{AssetA: "A", AssetB: "B"},
		{AssetA: "B", AssetB: "C"},
	}

	s := NewNetworkSummaryModel().Summarize(4, corr, nil, nil)
	// 2 edges over C(4,2) = 6 possible pairs.
	if math.Abs(s.NetworkDensity-2.0/6.0) > 1e-12 {
		t.Fatalf("unexpected density %g", s.NetworkDensity)
	}
	if s.TotalAssets != 4 || s.CorrelationPairs != 2 || s.FlowConnections != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestSummarizeSingleAssetUniverse(t *testing.T) {
	s := NewNetworkSummaryModel().Summarize(1, nil, nil, nil)
	if s.NetworkDensity != 0 {
		t.Fatalf("expected density 0 for single asset, got %g", s.NetworkDensity)
	}
	if math.IsNaN(s.NetworkDensity) || math.IsInf(s.NetworkDensity, 0) {
		t.Fatalf("density must be finite")
	}
}

func TestSummarizeEmptyFlowEdges(t *testing.T) {
	s := NewNetworkSummaryModel().Summarize(3, nil, []models.FlowEdge{}, nil)
	if s.FlowConnections != 0 {
		t.Fatalf("expected 0 flow connections, got %d", s.FlowConnections)
	}
}
