package analysis

import (
	"CorrNet/internal/domain/models"
)

// MergePolicy selects how the fusion engine groups edges into clusters.
type MergePolicy string

const (
	// MergeUnionFind groups edges into true connected components using
	// union-find with path compression and union by size.
	MergeUnionFind MergePolicy = "union-find"
	// MergeFirstMatch attaches each edge to the first existing group that
	// contains either endpoint, scanning groups in creation order. It can
	// under-merge when a single edge bridges two pre-existing groups, and
	// exists only for parity with historical reports.
	MergeFirstMatch MergePolicy = "first-match"
)

// IsValidMergePolicy reports whether p is a supported policy.
func IsValidMergePolicy(p MergePolicy) bool {
	return p == MergeUnionFind || p == MergeFirstMatch
}

// RelationshipFusionEngine merges correlation and flow edge sets into asset
// clusters. The two edge sets are grouped independently; flow edges are
// treated as undirected for grouping, direction is metadata only.
type RelationshipFusionEngine struct {
	policy MergePolicy
}

func NewRelationshipFusionEngine(policy MergePolicy) *RelationshipFusionEngine {
	if !IsValidMergePolicy(policy) {
		policy = MergeUnionFind
	}
	return &RelationshipFusionEngine{policy: policy}
}

// Cluster emits all correlation-derived clusters first (in group-creation
// order), then all flow-derived clusters. Every cluster has size >= 2; empty
// edge sets yield an empty sequence. Output is deterministic for identical
// inputs: assets within a cluster appear in first-seen edge order.
func (f *RelationshipFusionEngine) Cluster(corr []models.CorrelationEdge, flow []models.FlowEdge) []models.AssetCluster {
	pairs := make([][2]string, 0, len(corr))
	for _, e := range corr {
		pairs = append(pairs, [2]string{e.AssetA, e.AssetB})
	}
	clusters := f.group(pairs, models.OriginCorrelation)

	pairs = pairs[:0]
	for _, e := range flow {
		pairs = append(pairs, [2]string{e.Source, e.Target})
	}
	return append(clusters, f.group(pairs, models.OriginFlow)...)
}

func (f *RelationshipFusionEngine) group(pairs [][2]string, origin models.ClusterOrigin) []models.AssetCluster {
	var groups [][]string
	if f.policy == MergeFirstMatch {
		groups = groupFirstMatch(pairs)
	} else {
		groups = groupUnionFind(pairs)
	}

	out := []models.AssetCluster{}
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		strength := "medium"
		if len(g) >= 3 {
			strength = "high"
		}
		out = append(out, models.AssetCluster{
			Origin:   origin,
			Assets:   g,
			Size:     len(g),
			Strength: strength,
		})
	}
	return out
}

// groupFirstMatch replicates the historical linear-scan policy: each pair is
// attached to the first group, in creation order, containing either endpoint.
// Two groups bridged by one pair are never merged.
func groupFirstMatch(pairs [][2]string) [][]string {
	var groups [][]string
	members := make([]map[string]bool, 0)

	for _, p := range pairs {
		a, b := p[0], p[1]
		found := -1
		for i, m := range members {
			if m[a] || m[b] {
				found = i
				break
			}
		}
		if found >= 0 {
			if !members[found][a] {
				members[found][a] = true
				groups[found] = append(groups[found], a)
			}
			if !members[found][b] {
				members[found][b] = true
				groups[found] = append(groups[found], b)
			}
			continue
		}
		members = append(members, map[string]bool{a: true, b: true})
		groups = append(groups, []string{a, b})
	}
	return groups
}

// groupUnionFind computes true connected components. Component order follows
// the first pair that touches each component, and assets keep first-seen
// order within their component.
func groupUnionFind(pairs [][2]string) [][]string {
	parent := make(map[string]string)
	size := make(map[string]int)
	firstSeen := []string{} // asset discovery order

	var find func(string) string
	find = func(x string) string {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}

	add := func(x string) {
		if _, ok := parent[x]; !ok {
			parent[x] = x
			size[x] = 1
			firstSeen = append(firstSeen, x)
		}
	}

	for _, p := range pairs {
		add(p[0])
		add(p[1])
		ra, rb := find(p[0]), find(p[1])
		if ra == rb {
			continue
		}
		if size[ra] < size[rb] {
			ra, rb = rb, ra
		}
		parent[rb] = ra
		size[ra] += size[rb]
	}

	index := make(map[string]int)
	var groups [][]string
	for _, a := range firstSeen {
		r := find(a)
		i, ok := index[r]
		if !ok {
			i = len(groups)
			index[r] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], a)
	}
	return groups
}
