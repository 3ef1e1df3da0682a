package hyperliquid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"CorrNet/pkg/config"
)

func testConfig(baseURL string, maxAssets int, universe []string) *config.Config {
	cfg := &config.Config{}
	cfg.Hyperliquid.BaseURL = baseURL
	cfg.Hyperliquid.Symbols = universe
	cfg.Hyperliquid.RateLimitRPS = 1000
	cfg.Analysis.MaxAssets = maxAssets
	return cfg
}

func infoServer(t *testing.T, handler func(reqType string, body map[string]json.RawMessage, w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		var reqType string
		_ = json.Unmarshal(body["type"], &reqType)
		handler(reqType, body, w)
	}))
}

func TestListAssetsFiltersUniverse(t *testing.T) {
	srv := infoServer(t, func(reqType string, _ map[string]json.RawMessage, w http.ResponseWriter) {
		if reqType != "meta" {
			t.Errorf("request type = %q, want meta", reqType)
		}
		_, _ = w.Write([]byte(`{"universe":[
			{"name":"BTC","maxLeverage":50,"onlyIsolated":false},
			{"name":"SHITCOIN","maxLeverage":0,"onlyIsolated":false},
			{"name":"MEME","maxLeverage":3,"onlyIsolated":true},
			{"name":"","maxLeverage":10,"onlyIsolated":false},
			{"name":"ETH","maxLeverage":50,"onlyIsolated":false},
			{"name":"SOL","maxLeverage":20,"onlyIsolated":false}
		]}`))
	})
	defer srv.Close()

	c := New(testConfig(srv.URL, 2, nil))
	assets, err := c.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("list assets: %v", err)
	}
	// zero-leverage, isolated-only and unnamed entries are filtered; cap at 2
	if len(assets) != 2 {
		t.Fatalf("assets = %d, want 2", len(assets))
	}
	if assets[0].Symbol != "BTC" || assets[1].Symbol != "ETH" {
		t.Fatalf("unexpected assets: %+v", assets)
	}
}

func TestListAssetsFixedUniverse(t *testing.T) {
	srv := infoServer(t, func(reqType string, _ map[string]json.RawMessage, w http.ResponseWriter) {
		t.Errorf("discovery request issued despite fixed universe")
	})
	defer srv.Close()

	c := New(testConfig(srv.URL, 20, []string{"BTC", "ETH"}))
	assets, err := c.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("list assets: %v", err)
	}
	if len(assets) != 2 || assets[0].Symbol != "BTC" {
		t.Fatalf("unexpected assets: %+v", assets)
	}
}

func TestFetchSeriesParsesAndSorts(t *testing.T) {
	srv := infoServer(t, func(reqType string, body map[string]json.RawMessage, w http.ResponseWriter) {
		if reqType != "candleSnapshot" {
			t.Errorf("request type = %q, want candleSnapshot", reqType)
		}
		// out of order on purpose
		_, _ = w.Write([]byte(`[
			{"t":7200000,"o":"101","c":"102.5","h":"103","l":"100","v":"10"},
			{"t":3600000,"o":"100","c":"101","h":"102","l":"99","v":"12"}
		]`))
	})
	defer srv.Close()

	c := New(testConfig(srv.URL, 20, nil))
	series, err := c.FetchSeries(context.Background(), []string{"BTC"}, 72, "1h")
	if err != nil {
		t.Fatalf("fetch series: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("series = %d, want 1", len(series))
	}
	pts := series[0].Points
	if len(pts) != 2 {
		t.Fatalf("points = %d, want 2", len(pts))
	}
	if !pts[0].Timestamp.Before(pts[1].Timestamp) {
		t.Fatalf("points not sorted ascending")
	}
	if pts[0].Price != 101 || pts[1].Price != 102.5 {
		t.Fatalf("unexpected prices: %+v", pts)
	}
}

func TestFetchSeriesSkipsEmptyAssets(t *testing.T) {
	srv := infoServer(t, func(reqType string, body map[string]json.RawMessage, w http.ResponseWriter) {
		var req struct {
			Coin string `json:"coin"`
		}
		_ = json.Unmarshal(body["req"], &req)
		if req.Coin == "DEAD" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"t":3600000,"o":"100","c":"101","h":"102","l":"99","v":"12"}]`))
	})
	defer srv.Close()

	c := New(testConfig(srv.URL, 20, nil))
	series, err := c.FetchSeries(context.Background(), []string{"BTC", "DEAD"}, 72, "1h")
	if err != nil {
		t.Fatalf("fetch series: %v", err)
	}
	if len(series) != 1 || series[0].Symbol != "BTC" {
		t.Fatalf("unexpected series: %+v", series)
	}
}

func TestFetchSeriesBadPrice(t *testing.T) {
	srv := infoServer(t, func(reqType string, _ map[string]json.RawMessage, w http.ResponseWriter) {
		_, _ = w.Write([]byte(`[{"t":3600000,"o":"100","c":"not-a-number","h":"102","l":"99","v":"12"}]`))
	})
	defer srv.Close()

	c := New(testConfig(srv.URL, 20, nil))
	if _, err := c.FetchSeries(context.Background(), []string{"BTC"}, 72, "1h"); err == nil {
		t.Fatalf("expected error for malformed close price")
	}
}
