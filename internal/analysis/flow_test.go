package analysis

import (
	"testing"

	"CorrNet/internal/domain/models"
)

func TestFilterAndRankThresholdsAndSorts(t *testing.T) {
	raw := []models.FlowEdge{
		{Source: "B", Target: "C", Strength: 0.2},
		{Source: "A", Target: "B", Strength: 0.3},
		{Source: "C", Target: "A", Strength: 0.05},
	}

	out := NewInformationFlowAdapter().FilterAndRank(raw, 0.1)
	if len(out) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(out))
	}
	if out[0].Source != "A" || out[0].Target != "B" {
		t.Fatalf("expected A->B ranked first, got %s->%s", out[0].Source, out[0].Target)
	}
	if out[1].Source != "B" || out[1].Target != "C" {
		t.Fatalf("expected B->C second, got %s->%s", out[1].Source, out[1].Target)
	}
}

func TestFilterAndRankTiesKeepOracleOrder(t *testing.T) {
	raw := []models.FlowEdge{
		{Source: "X", Target: "Y", Strength: 0.2},
		{Source: "Y", Target: "Z", Strength: 0.2},
		{Source: "Z", Target: "X", Strength: 0.2},
	}

	out := NewInformationFlowAdapter().FilterAndRank(raw, 0)
	for i, e := range raw {
		if out[i] != e {
			t.Fatalf("tie order changed at %d: %v", i, out[i])
		}
	}
}

func TestFilterAndRankCarriesPValue(t *testing.T) {
	p := 0.03
	raw := []models.FlowEdge{{Source: "A", Target: "B", Strength: 0.4, PValue: &p}}

	out := NewInformationFlowAdapter().FilterAndRank(raw, 0.1)
	if len(out) != 1 || out[0].PValue == nil || *out[0].PValue != 0.03 {
		t.Fatalf("p-value not carried through: %+v", out)
	}
}

func TestFilterAndRankEmptyInput(t *testing.T) {
	out := NewInformationFlowAdapter().FilterAndRank(nil, 0.1)
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil sequence, got %v", out)
	}
}
