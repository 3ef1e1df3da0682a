package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"CorrNet/internal/analysis"
	"CorrNet/internal/domain/models"
	"CorrNet/pkg/config"
)

func testConfig(url string) *config.Config {
	cfg := &config.Config{}
	cfg.Oracle.ServiceURL = url
	cfg.Oracle.Estimator = "PythonKraskovCMI"
	cfg.Oracle.MinLagSources = 1
	cfg.Oracle.MaxLagSources = 6
	cfg.Oracle.MaxLagTarget = 3
	cfg.Oracle.TauSources = 1
	cfg.Oracle.TauTarget = 1
	cfg.Oracle.NPermMaxStat = 50
	cfg.Oracle.NPermMinStat = 50
	cfg.Oracle.NPermOmnibus = 100
	cfg.Oracle.FDRAlpha = 0.05
	cfg.Oracle.KraskovK = 4
	cfg.Oracle.NumThreads = "USE_ALL"
	return cfg
}

func testMatrix() *models.ReturnMatrix {
	return &models.ReturnMatrix{
		Symbols: []string{"BTC", "ETH"},
		Rows:    [][]float64{{0.1, -0.2}, {-0.1, 0.3}, {0.2, 0.1}},
	}
}

func TestEstimateNetworkMapsIndices(t *testing.T) {
	var gotReq networkRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/network/analyse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		p := 0.02
		_ = json.NewEncoder(w).Encode(networkResponse{Edges: []rawEdge{
			{SourceIndex: 0, TargetIndex: 1, Strength: 0.12, PValue: &p},
		}})
	}))
	defer srv.Close()

	est := NewHTTPFlowEstimator(testConfig(srv.URL))
	edges, err := est.EstimateNetwork(context.Background(), testMatrix())
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}
	e := edges[0]
	if e.Source != "BTC" || e.Target != "ETH" {
		t.Fatalf("edge mapped to %s -> %s", e.Source, e.Target)
	}
	if e.Strength != 0.12 || e.PValue == nil || *e.PValue != 0.02 {
		t.Fatalf("unexpected edge values: %+v", e)
	}

	// settings must travel with the matrix
	if gotReq.Settings.CMIEstimator != "PythonKraskovCMI" {
		t.Fatalf("estimator = %q", gotReq.Settings.CMIEstimator)
	}
	if gotReq.Settings.MaxLagSources != 6 || gotReq.Settings.KraskovK != 4 {
		t.Fatalf("settings not forwarded: %+v", gotReq.Settings)
	}
	if len(gotReq.Rows) != 3 || len(gotReq.Symbols) != 2 {
		t.Fatalf("matrix not forwarded: %d rows, %d symbols", len(gotReq.Rows), len(gotReq.Symbols))
	}
}

func TestEstimateNetworkIndexOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(networkResponse{Edges: []rawEdge{
			{SourceIndex: 0, TargetIndex: 5, Strength: 0.12},
		}})
	}))
	defer srv.Close()

	est := NewHTTPFlowEstimator(testConfig(srv.URL))
	_, err := est.EstimateNetwork(context.Background(), testMatrix())
	if err == nil {
		t.Fatalf("expected error for out-of-range index")
	}
	var ofe *analysis.OracleFailureError
	if !errors.As(err, &ofe) {
		t.Fatalf("expected OracleFailureError, got %T", err)
	}
}

func TestEstimateNetworkHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "estimator crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	est := NewHTTPFlowEstimator(testConfig(srv.URL))
	_, err := est.EstimateNetwork(context.Background(), testMatrix())
	if err == nil {
		t.Fatalf("expected error for 500 response")
	}
	var ofe *analysis.OracleFailureError
	if !errors.As(err, &ofe) {
		t.Fatalf("expected OracleFailureError, got %T", err)
	}
}
