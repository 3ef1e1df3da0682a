package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
oracle:
  service_url: http://localhost:5000
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analysis.LookbackHours != 72 {
		t.Fatalf("lookback_hours = %d, want 72", cfg.Analysis.LookbackHours)
	}
	if cfg.Analysis.MaxAssets != 20 {
		t.Fatalf("max_assets = %d, want 20", cfg.Analysis.MaxAssets)
	}
	if *cfg.Analysis.CorrelationThreshold != 0.6 {
		t.Fatalf("correlation_threshold = %g, want 0.6", *cfg.Analysis.CorrelationThreshold)
	}
	if *cfg.Analysis.FlowThreshold != 0.05 {
		t.Fatalf("te_threshold = %g, want 0.05", *cfg.Analysis.FlowThreshold)
	}
	if cfg.Analysis.MergePolicy != "union-find" {
		t.Fatalf("merge_policy = %q, want union-find", cfg.Analysis.MergePolicy)
	}
	if cfg.Oracle.Estimator != "PythonKraskovCMI" {
		t.Fatalf("estimator = %q", cfg.Oracle.Estimator)
	}
	if cfg.Oracle.MaxLagSources != 6 || cfg.Oracle.MaxLagTarget != 3 {
		t.Fatalf("lag defaults wrong: %+v", cfg.Oracle)
	}
	if cfg.Oracle.KraskovK != 4 || cfg.Oracle.NumThreads != "USE_ALL" {
		t.Fatalf("estimator defaults wrong: %+v", cfg.Oracle)
	}
	if cfg.Hyperliquid.BaseURL != "https://api.hyperliquid.xyz" {
		t.Fatalf("base_url = %q", cfg.Hyperliquid.BaseURL)
	}
}

func TestLoadKeepsExplicitZeroThresholds(t *testing.T) {
	body := minimalConfig + "analysis:\n  correlation_threshold: 0\n  te_threshold: 0\n"
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg.Analysis.CorrelationThreshold != 0 {
		t.Fatalf("correlation_threshold = %g, want 0", *cfg.Analysis.CorrelationThreshold)
	}
	if *cfg.Analysis.FlowThreshold != 0 {
		t.Fatalf("te_threshold = %g, want 0", *cfg.Analysis.FlowThreshold)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing environment", "oracle:\n  service_url: http://x\n"},
		{"missing oracle url", "environment: test\n"},
		{"bad backend", minimalConfig + "backend:\n  type: postgres\n"},
		{"bad correlation threshold", minimalConfig + "analysis:\n  correlation_threshold: 1.5\n"},
		{"bad merge policy", minimalConfig + "analysis:\n  merge_policy: random\n"},
		{"bad interval", minimalConfig + "analysis:\n  interval: 4h\n"},
	}
	for _, tc := range cases {
		if _, err := Load(writeConfig(t, tc.body)); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("ORACLE_SERVICE_URL", "http://oracle:9000")
	t.Setenv("SYMBOLS", "BTC,ETH,SOL")
	t.Setenv("BACKEND", "clickhouse")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Oracle.ServiceURL != "http://oracle:9000" {
		t.Fatalf("oracle url = %q", cfg.Oracle.ServiceURL)
	}
	if len(cfg.Hyperliquid.Symbols) != 3 || cfg.Hyperliquid.Symbols[0] != "BTC" {
		t.Fatalf("symbols = %v", cfg.Hyperliquid.Symbols)
	}
	if cfg.Backend.Type != "clickhouse" {
		t.Fatalf("backend = %q", cfg.Backend.Type)
	}
}
