package analysis

import (
	"reflect"
	"testing"

	"CorrNet/internal/domain/models"
)

func TestClusterSinglePair(t *testing.T) {
	corr := []models.CorrelationEdge{{AssetA: "A", AssetB: "B", Correlation: 0.9, AbsCorrelation: 0.9}}

	clusters := NewRelationshipFusionEngine(MergeUnionFind).Cluster(corr, nil)
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	c := clusters[0]
	if c.Origin != models.OriginCorrelation || c.Size != 2 || c.Strength != "medium" {
		t.Fatalf("unexpected cluster %+v", c)
	}
	if !reflect.DeepEqual(c.Assets, []string{"A", "B"}) {
		t.Fatalf("unexpected assets %v", c.Assets)
	}
}

func TestClusterFlowChain(t *testing.T) {
	flow := []models.FlowEdge{
		{Source: "A", Target: "B", Strength: 0.3},
		{Source: "B", Target: "C", Strength: 0.2},
	}

	clusters := NewRelationshipFusionEngine(MergeUnionFind).Cluster(nil, flow)
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	c := clusters[0]
	if c.Origin != models.OriginFlow || c.Size != 3 || c.Strength != "high" {
		t.Fatalf("unexpected cluster %+v", c)
	}
}

func TestClusterOrderCorrelationFirst(t *testing.T) {
	corr := []models.CorrelationEdge{{AssetA: "A", AssetB: "B", Correlation: 0.9, AbsCorrelation: 0.9}}
	flow := []models.FlowEdge{{Source: "C", Target: "D", Strength: 0.3}}

	clusters := NewRelationshipFusionEngine(MergeUnionFind).Cluster(corr, flow)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if clusters[0].Origin != models.OriginCorrelation || clusters[1].Origin != models.OriginFlow {
		t.Fatalf("unexpected origin order: %s, %s", clusters[0].Origin, clusters[1].Origin)
	}
}

func TestClusterEmptyInputs(t *testing.T) {
	clusters := NewRelationshipFusionEngine(MergeUnionFind).Cluster(nil, nil)
	if clusters == nil || len(clusters) != 0 {
		t.Fatalf("expected empty non-nil sequence, got %v", clusters)
	}
}

func TestClusterDeterminism(t *testing.T) {
	corr := []models.CorrelationEdge{
		{AssetA: "A", AssetB: "B"},
		{AssetA: "C", AssetB: "D"},
		{AssetA: "B", AssetB: "E"},
	}
	flow := []models.FlowEdge{
		{Source: "X", Target: "Y", Strength: 0.2},
		{Source: "Y", Target: "Z", Strength: 0.1},
	}

	for _, policy := range []MergePolicy{MergeUnionFind, MergeFirstMatch} {
		engine := NewRelationshipFusionEngine(policy)
		first := engine.Cluster(corr, flow)
		second := engine.Cluster(corr, flow)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("policy %s not deterministic", policy)
		}
	}
}

// One bridging edge touching two existing groups: union-find merges them into
// a single component, first-match attaches the bridge to the earlier group and
// leaves the groups separate.
func TestClusterPolicyDivergence(t *testing.T) {
	corr := []models.CorrelationEdge{
		{AssetA: "A", AssetB: "B"},
		{AssetA: "C", AssetB: "D"},
		{AssetA: "A", AssetB: "C"},
	}

	merged := NewRelationshipFusionEngine(MergeUnionFind).Cluster(corr, nil)
	if len(merged) != 1 {
		t.Fatalf("union-find: expected 1 component, got %d", len(merged))
	}
	if merged[0].Size != 4 || merged[0].Strength != "high" {
		t.Fatalf("union-find: unexpected cluster %+v", merged[0])
	}

	split := NewRelationshipFusionEngine(MergeFirstMatch).Cluster(corr, nil)
	if len(split) != 2 {
		t.Fatalf("first-match: expected 2 groups, got %d", len(split))
	}
	if !reflect.DeepEqual(split[0].Assets, []string{"A", "B", "C"}) {
		t.Fatalf("first-match: unexpected first group %v", split[0].Assets)
	}
	if !reflect.DeepEqual(split[1].Assets, []string{"C", "D"}) {
		t.Fatalf("first-match: unexpected second group %v", split[1].Assets)
	}
}

func TestClusterFlowDirectionIgnoredForGrouping(t *testing.T) {
	flow := []models.FlowEdge{
		{Source: "A", Target: "B", Strength: 0.3},
		{Source: "C", Target: "A", Strength: 0.2}, // reverse direction still joins A's group
	}

	clusters := NewRelationshipFusionEngine(MergeUnionFind).Cluster(nil, flow)
	if len(clusters) != 1 || clusters[0].Size != 3 {
		t.Fatalf("expected one 3-asset cluster, got %+v", clusters)
	}
}

func TestClusterMembersAppearInInputEdges(t *testing.T) {
	corr := []models.CorrelationEdge{
		{AssetA: "A", AssetB: "B"},
		{AssetA: "B", AssetB: "C"},
	}
	endpoints := map[string]bool{"A": true, "B": true, "C": true}

	for _, c := range NewRelationshipFusionEngine(MergeUnionFind).Cluster(corr, nil) {
		if len(c.Assets) < 2 {
			t.Fatalf("cluster below minimum size: %+v", c)
		}
		for _, a := range c.Assets {
			if !endpoints[a] {
				t.Fatalf("asset %s not an endpoint of any input edge", a)
			}
		}
	}
}
