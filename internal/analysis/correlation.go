package analysis

import (
	"math"
	"sort"

	"CorrNet/internal/domain/models"
)

// CorrelationGraphBuilder extracts the thresholded undirected correlation
// graph from a return matrix.
type CorrelationGraphBuilder struct{}

func NewCorrelationGraphBuilder() *CorrelationGraphBuilder { return &CorrelationGraphBuilder{} }

// Build computes the full pairwise Pearson correlation matrix and emits one
// edge per unordered pair whose absolute correlation reaches the threshold.
// Edges are sorted descending by absolute correlation; ties keep the
// upper-triangle enumeration order (row-major i then j), which makes the
// output byte-stable across runs.
func (b *CorrelationGraphBuilder) Build(m *models.ReturnMatrix, threshold float64) []models.CorrelationEdge {
	edges := []models.CorrelationEdge{}
	if m == nil || m.NumAssets() < 2 {
		return edges
	}

	cols := make([][]float64, m.NumAssets())
	for i := range cols {
		cols[i] = m.Column(i)
	}

	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			corr := pearson(cols[i], cols[j])
			// NaN (undefined correlation) never clears the threshold.
			if math.IsNaN(corr) || !(math.Abs(corr) >= threshold) {
				continue
			}
			edges = append(edges, models.CorrelationEdge{
				AssetA:         m.Symbols[i],
				AssetB:         m.Symbols[j],
				Correlation:    corr,
				AbsCorrelation: math.Abs(corr),
			})
		}
	}

	sort.SliceStable(edges, func(a, b int) bool {
		return edges[a].AbsCorrelation > edges[b].AbsCorrelation
	})
	return edges
}

// pearson computes the Pearson correlation coefficient of two equal-length
// series. Returns NaN when either series has zero variance.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 || len(x) != len(y) {
		return math.NaN()
	}
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}
