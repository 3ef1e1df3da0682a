package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CorrNet/internal/analysis"
	"CorrNet/internal/domain/models"
	"CorrNet/pkg/logger"
)

type fakeMarket struct {
	assets []models.AssetInfo
	series []models.AssetSeries
	err    error
}

func (m *fakeMarket) ListAssets(ctx context.Context) ([]models.AssetInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.assets, nil
}

func (m *fakeMarket) FetchSeries(ctx context.Context, symbols []string, hours int, interval string) ([]models.AssetSeries, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.AssetSeries, 0, len(symbols))
	for _, s := range m.series {
		for _, sym := range symbols {
			if s.Symbol == sym {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

type fakeOracle struct {
	edges []models.FlowEdge
	err   error
	calls int
}

func (o *fakeOracle) EstimateNetwork(ctx context.Context, m *models.ReturnMatrix) ([]models.FlowEdge, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	return o.edges, nil
}

type fakeRunStore struct {
	saved []*models.AnalysisResult
}

func (s *fakeRunStore) SaveRun(ctx context.Context, res *models.AnalysisResult) error {
	s.saved = append(s.saved, res)
	return nil
}

func (s *fakeRunStore) GetRun(ctx context.Context, runID string) (*models.AnalysisResult, error) {
	for _, r := range s.saved {
		if r.RunID == runID {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *fakeRunStore) LatestRun(ctx context.Context) (*models.AnalysisResult, error) {
	if len(s.saved) == 0 {
		return nil, errors.New("no runs")
	}
	return s.saved[len(s.saved)-1], nil
}

type fakeMetrics struct {
	runStatuses []string
	stageErrors []string
}

func (m *fakeMetrics) RecordRun(status string)              { m.runStatuses = append(m.runStatuses, status) }
func (m *fakeMetrics) RecordStageError(stage string)        { m.stageErrors = append(m.stageErrors, stage) }
func (m *fakeMetrics) RecordEdgeCounts(corr, flow int)      {}
func (m *fakeMetrics) RecordClusterCount(n int)             {}
func (m *fakeMetrics) RecordNetworkDensity(d float64)       {}
func (m *fakeMetrics) RecordLatency(op string, sec float64) {}
func (m *fakeMetrics) RecordCandleStored(src, sym string)   {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	lgr, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return lgr
}

// Two perfectly correlated assets plus one anti-correlated asset; enough rows
// that the 3-sigma clip keeps everything.
func testSeries(symbols []string) []models.AssetSeries {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	bumps := []float64{1, 2, 1, 3, 2, 4, 3, 5, 4, 6, 5, 7, 6, 8, 7, 9}
	out := make([]models.AssetSeries, 0, len(symbols))
	for si, sym := range symbols {
		pts := make([]models.PricePoint, 0, len(bumps))
		price := 100.0 * float64(si+1)
		for i, b := range bumps {
			if si == 2 {
				price -= b // third asset moves opposite
			} else {
				price += b
			}
			pts = append(pts, models.PricePoint{Timestamp: base.Add(time.Duration(i) * time.Hour), Price: price})
		}
		out = append(out, models.AssetSeries{Symbol: sym, Points: pts})
	}
	return out
}

func newTestAnalyzer(t *testing.T, market *fakeMarket, oracle *fakeOracle, runs *fakeRunStore, m *fakeMetrics, opts ...NetworkAnalyzerOption) *NetworkAnalyzer {
	t.Helper()
	return NewNetworkAnalyzer(market, oracle, runs, m, testLogger(t), analysis.MergeUnionFind, opts...)
}

func TestNetworkAnalyzerRun(t *testing.T) {
	symbols := []string{"BTC", "ETH", "SOL"}
	market := &fakeMarket{
		assets: []models.AssetInfo{{Symbol: "BTC"}, {Symbol: "ETH"}, {Symbol: "SOL"}},
		series: testSeries(symbols),
	}
	oracle := &fakeOracle{edges: []models.FlowEdge{
		{Source: "BTC", Target: "ETH", Strength: 0.30},
		{Source: "ETH", Target: "SOL", Strength: 0.01},
	}}
	runs := &fakeRunStore{}
	m := &fakeMetrics{}
	a := newTestAnalyzer(t, market, oracle, runs, m)

	res, err := a.Run(context.Background(), RunParams{
		Hours: 72, MaxAssets: 20, CorrelationThreshold: 0.6, FlowThreshold: 0.05, Interval: "1h",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Summary.TotalAssets != 3 {
		t.Fatalf("total assets = %d, want 3", res.Summary.TotalAssets)
	}
	if res.Observations == 0 {
		t.Fatalf("expected observations > 0")
	}
	// BTC and ETH are perfectly correlated; SOL anti-correlated with both.
	if len(res.CorrelationEdges) != 3 {
		t.Fatalf("correlation edges = %d, want 3", len(res.CorrelationEdges))
	}
	// Only the 0.30 flow edge clears the 0.05 threshold.
	if len(res.FlowEdges) != 1 || res.FlowEdges[0].Source != "BTC" {
		t.Fatalf("unexpected flow edges: %+v", res.FlowEdges)
	}
	if len(runs.saved) != 1 {
		t.Fatalf("expected run persisted, got %d", len(runs.saved))
	}
	if len(m.runStatuses) != 1 || m.runStatuses[0] != "ok" {
		t.Fatalf("run statuses = %v", m.runStatuses)
	}
	if res.RunID == "" {
		t.Fatalf("expected non-empty run id")
	}
}

func TestNetworkAnalyzerMaxAssetsCap(t *testing.T) {
	symbols := []string{"BTC", "ETH", "SOL"}
	market := &fakeMarket{
		assets: []models.AssetInfo{{Symbol: "BTC"}, {Symbol: "ETH"}, {Symbol: "SOL"}},
		series: testSeries(symbols),
	}
	oracle := &fakeOracle{}
	runs := &fakeRunStore{}
	a := newTestAnalyzer(t, market, oracle, runs, &fakeMetrics{})

	res, err := a.Run(context.Background(), RunParams{
		Hours: 72, MaxAssets: 2, CorrelationThreshold: 0.6, FlowThreshold: 0.05, Interval: "1h",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Summary.TotalAssets != 2 {
		t.Fatalf("total assets = %d, want 2", res.Summary.TotalAssets)
	}
}

func TestNetworkAnalyzerOracleFailure(t *testing.T) {
	symbols := []string{"BTC", "ETH"}
	market := &fakeMarket{
		assets: []models.AssetInfo{{Symbol: "BTC"}, {Symbol: "ETH"}},
		series: testSeries(symbols),
	}
	oracle := &fakeOracle{err: errors.New("service unavailable")}
	runs := &fakeRunStore{}
	m := &fakeMetrics{}
	a := newTestAnalyzer(t, market, oracle, runs, m)

	_, err := a.Run(context.Background(), RunParams{
		Hours: 72, MaxAssets: 20, CorrelationThreshold: 0.6, FlowThreshold: 0.05, Interval: "1h",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	var ofe *analysis.OracleFailureError
	if !errors.As(err, &ofe) {
		t.Fatalf("expected OracleFailureError, got %T: %v", err, err)
	}
	if len(runs.saved) != 0 {
		t.Fatalf("failed run must not be persisted")
	}
	if len(m.runStatuses) != 1 || m.runStatuses[0] != "error" {
		t.Fatalf("run statuses = %v", m.runStatuses)
	}
}

type memBytesCache struct {
	data map[string][]byte
}

func (c *memBytesCache) GetBytes(key string) ([]byte, bool, error) {
	b, ok := c.data[key]
	return b, ok, nil
}

func (c *memBytesCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	c.data[key] = value
	return nil
}

func TestNetworkAnalyzerResultCache(t *testing.T) {
	symbols := []string{"BTC", "ETH"}
	market := &fakeMarket{
		assets: []models.AssetInfo{{Symbol: "BTC"}, {Symbol: "ETH"}},
		series: testSeries(symbols),
	}
	oracle := &fakeOracle{edges: []models.FlowEdge{{Source: "BTC", Target: "ETH", Strength: 0.2}}}
	runs := &fakeRunStore{}
	c := &memBytesCache{data: map[string][]byte{}}
	a := newTestAnalyzer(t, market, oracle, runs, &fakeMetrics{}, WithResultCache(c, time.Minute))

	p := RunParams{Hours: 72, MaxAssets: 20, CorrelationThreshold: 0.6, FlowThreshold: 0.05, Interval: "1h"}
	first, err := a.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := a.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if oracle.calls != 1 {
		t.Fatalf("oracle called %d times, want 1 (second run cached)", oracle.calls)
	}
	if first.RunID != second.RunID {
		t.Fatalf("cached run id %q != %q", second.RunID, first.RunID)
	}
	if len(runs.saved) != 1 {
		t.Fatalf("cached run must not be re-persisted")
	}
}
