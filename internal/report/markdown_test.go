package report

import (
	"strings"
	"testing"
	"time"

	"CorrNet/internal/domain/models"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
}

func sampleResult() *models.AnalysisResult {
	p := 0.012
	return &models.AnalysisResult{
		RunID:         "20260820T120000Z",
		LookbackHours: 72,
		Observations:  71,
		Symbols:       []string{"BTC", "ETH", "SOL"},
		CorrelationEdges: []models.CorrelationEdge{
			{AssetA: "BTC", AssetB: "ETH", Correlation: 0.8234, AbsCorrelation: 0.8234},
			{AssetA: "ETH", AssetB: "SOL", Correlation: -0.6512, AbsCorrelation: 0.6512},
		},
		FlowEdges: []models.FlowEdge{
			{Source: "BTC", Target: "ETH", Strength: 0.0731, PValue: &p},
		},
		Clusters: []models.AssetCluster{
			{Origin: models.OriginCorrelation, Assets: []string{"BTC", "ETH", "SOL"}, Size: 3, Strength: "high"},
		},
		Summary: models.NetworkSummary{
			TotalAssets:      3,
			CorrelationPairs: 2,
			FlowConnections:  1,
			Clusters:         1,
			NetworkDensity:   0.6667,
		},
	}
}

func newTestRenderer() *MarkdownRenderer {
	info := EstimatorInfo{Estimator: "PythonKraskovCMI", KraskovK: 4, NumThreads: "USE_ALL", NPermMax: 50}
	return NewMarkdownRenderer(info, WithClock(fixedClock))
}

func TestRenderMarkdown(t *testing.T) {
	md, err := newTestRenderer().RenderMarkdown(sampleResult())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"# Crypto Market Network Analysis Report",
		"Generated: 2026-08-20 12:00:00",
		"- Assets analysed: 3",
		"- Time window: 72 hours",
		"- Network density: 0.667",
		"1. BTC <-> ETH (correlation: 0.8234)",
		"2. ETH <-> SOL (correlation: -0.6512)",
		"1. BTC -> ETH (TE: 0.0731, p=0.0120)",
		"1. correlation_based cluster: BTC, ETH, SOL (size: 3, strength: high)",
		"- Estimator: PythonKraskovCMI",
		"- Kraskov k: 4",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q\n---\n%s", want, md)
		}
	}
}

func TestRenderMarkdownEmptySections(t *testing.T) {
	res := sampleResult()
	res.CorrelationEdges = nil
	res.FlowEdges = nil
	res.Clusters = nil

	md, err := newTestRenderer().RenderMarkdown(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"No highly correlated asset pairs found.",
		"No significant transfer entropy connections found.",
		"No significant asset clusters found.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q", want)
		}
	}
}

func TestRenderMarkdownCapsListings(t *testing.T) {
	res := sampleResult()
	res.CorrelationEdges = nil
	for i := 0; i < 30; i++ {
		res.CorrelationEdges = append(res.CorrelationEdges, models.CorrelationEdge{
			AssetA: "A", AssetB: "B", Correlation: 0.9, AbsCorrelation: 0.9,
		})
	}
	md, err := newTestRenderer().RenderMarkdown(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(md, "21. A <-> B") {
		t.Fatalf("expected listing capped at 20 entries")
	}
	if !strings.Contains(md, "20. A <-> B") {
		t.Fatalf("expected 20 entries present")
	}
}

func TestRenderMarkdownNilResult(t *testing.T) {
	if _, err := newTestRenderer().RenderMarkdown(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}
