package analysis

import (
	"math"
	"reflect"
	"testing"

	"CorrNet/internal/domain/models"
)

func matrixFromColumns(symbols []string, cols [][]float64) *models.ReturnMatrix {
	rows := make([][]float64, len(cols[0]))
	for r := range rows {
		row := make([]float64, len(cols))
		for c := range cols {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return &models.ReturnMatrix{Symbols: symbols, Rows: rows}
}

func TestBuildEmitsOnlyEdgesAboveThreshold(t *testing.T) {
	// A and B move together, C is close to noise against both.
	a := []float64{1, -1, 1, -1, 1, -1, 1, -1}
	b := []float64{1, -1, 1, -1, 1, -0.5, 1, -1}
	c := []float64{1, 1, -1, -1, 1, 1, -1, -1}

	edges := NewCorrelationGraphBuilder().Build(matrixFromColumns([]string{"A", "B", "C"}, [][]float64{a, b, c}), 0.6)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if edges[0].AssetA != "A" || edges[0].AssetB != "B" {
		t.Fatalf("unexpected edge %s-%s", edges[0].AssetA, edges[0].AssetB)
	}
	if edges[0].AbsCorrelation < 0.6 {
		t.Fatalf("edge below threshold: %g", edges[0].AbsCorrelation)
	}
}

func TestBuildRanksByAbsoluteCorrelation(t *testing.T) {
	a := []float64{1, -1, 1, -1, 1, -1}
	b := []float64{-1, 1, -1, 1, -1, 1}    // corr(A,B) = -1
	c := []float64{1, -1, 1, -1, 1, -0.5}  // strong positive vs A
	m := matrixFromColumns([]string{"A", "B", "C"}, [][]float64{a, b, c})

	edges := NewCorrelationGraphBuilder().Build(m, 0.5)
	for i := 1; i < len(edges); i++ {
		if edges[i].AbsCorrelation > edges[i-1].AbsCorrelation {
			t.Fatalf("edges not sorted descending at %d", i)
		}
	}
	if edges[0].Correlation != -1 {
		t.Fatalf("expected perfect negative pair first, got %g", edges[0].Correlation)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	a := []float64{0.3, -0.2, 0.5, -0.4, 0.1, -0.3}
	b := []float64{0.25, -0.22, 0.48, -0.35, 0.12, -0.28}
	c := []float64{-0.1, 0.4, -0.3, 0.2, -0.5, 0.3}
	m := matrixFromColumns([]string{"A", "B", "C"}, [][]float64{a, b, c})

	builder := NewCorrelationGraphBuilder()
	first := builder.Build(m, 0.2)
	second := builder.Build(m, 0.2)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical edge sequences")
	}
}

func TestBuildThresholdMonotonicity(t *testing.T) {
	a := []float64{0.3, -0.2, 0.5, -0.4, 0.1, -0.3}
	b := []float64{0.25, -0.22, 0.48, -0.35, 0.12, -0.28}
	c := []float64{-0.1, 0.4, -0.3, 0.2, -0.5, 0.3}
	m := matrixFromColumns([]string{"A", "B", "C"}, [][]float64{a, b, c})

	builder := NewCorrelationGraphBuilder()
	prev := builder.Build(m, 0)
	for _, th := range []float64{0.2, 0.5, 0.8, 0.99} {
		cur := builder.Build(m, th)
		if len(cur) > len(prev) {
			t.Fatalf("threshold %g produced more edges than lower threshold", th)
		}
		for _, e := range cur {
			found := false
			for _, p := range prev {
				if p.AssetA == e.AssetA && p.AssetB == e.AssetB {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("edge %s-%s appeared at threshold %g only", e.AssetA, e.AssetB, th)
			}
		}
		prev = cur
	}
}

func TestBuildSkipsUndefinedCorrelations(t *testing.T) {
	a := []float64{0.3, -0.2, 0.5, -0.4}
	flat := []float64{1, 1, 1, 1} // zero variance, correlation undefined
	m := matrixFromColumns([]string{"A", "FLAT"}, [][]float64{a, flat})

	edges := NewCorrelationGraphBuilder().Build(m, 0)
	if len(edges) != 0 {
		t.Fatalf("expected NaN correlations to be excluded, got %d edges", len(edges))
	}
}

func TestBuildThresholdAboveOne(t *testing.T) {
	a := []float64{1, -1, 1, -1}
	b := []float64{1, -1, 1, -1}
	m := matrixFromColumns([]string{"A", "B"}, [][]float64{a, b})

	if edges := NewCorrelationGraphBuilder().Build(m, 1.5); len(edges) != 0 {
		t.Fatalf("expected no edges above threshold 1.5, got %d", len(edges))
	}
}

func TestPearsonPerfectCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	if got := pearson(x, y); math.Abs(got-1) > 1e-12 {
		t.Fatalf("expected 1, got %g", got)
	}
}
