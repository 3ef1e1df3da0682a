package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type         string        `yaml:"type"` // kafka or clickhouse
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		SummaryTopic string   `yaml:"summary_topic"`
		CandlesTopic string   `yaml:"candles_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Hyperliquid struct {
		BaseURL        string        `yaml:"base_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Symbols        []string      `yaml:"symbols"` // fixed universe; empty means discover from /info
		RequestTimeout time.Duration `yaml:"request_timeout"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	} `yaml:"hyperliquid"`
	Analysis struct {
		LookbackHours        int           `yaml:"lookback_hours"`
		MaxAssets            int           `yaml:"max_assets"`
		Interval             string        `yaml:"interval"`
		// Pointers so an explicit 0 in YAML is distinguishable from an
		// absent key; 0 disables the threshold and keeps every edge.
		CorrelationThreshold *float64      `yaml:"correlation_threshold"`
		FlowThreshold        *float64      `yaml:"te_threshold"`
		MergePolicy          string        `yaml:"merge_policy"` // union-find or first-match
		CacheTTL             time.Duration `yaml:"cache_ttl"`
		Redis                struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"analysis"`
	Oracle struct {
		ServiceURL    string        `yaml:"service_url"`
		Timeout       time.Duration `yaml:"timeout"`
		Estimator     string        `yaml:"estimator"`
		MinLagSources int           `yaml:"min_lag_sources"`
		MaxLagSources int           `yaml:"max_lag_sources"`
		MaxLagTarget  int           `yaml:"max_lag_target"`
		TauSources    int           `yaml:"tau_sources"`
		TauTarget     int           `yaml:"tau_target"`
		NPermMaxStat  int           `yaml:"n_perm_max_stat"`
		NPermMinStat  int           `yaml:"n_perm_min_stat"`
		NPermOmnibus  int           `yaml:"n_perm_omnibus"`
		FDRAlpha      float64       `yaml:"fdr_alpha"`
		KraskovK      int           `yaml:"kraskov_k"`
		NumThreads    string        `yaml:"num_threads"`
	} `yaml:"oracle"`
	Report struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"report"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ORACLE_SERVICE_URL"); v != "" {
		c.Oracle.ServiceURL = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Hyperliquid.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_SUMMARY_TOPIC"); v != "" {
		c.Kafka.SummaryTopic = v
	}

	return c, nil
}

// Defaults mirror the historical analysis script so a minimal config file
// still produces a usable run.
func (c *Config) applyDefaults() {
	if c.Hyperliquid.BaseURL == "" {
		c.Hyperliquid.BaseURL = "https://api.hyperliquid.xyz"
	}
	if c.Hyperliquid.RequestTimeout <= 0 {
		c.Hyperliquid.RequestTimeout = 60 * time.Second
	}
	if c.Analysis.LookbackHours <= 0 {
		c.Analysis.LookbackHours = 72
	}
	if c.Analysis.MaxAssets <= 0 {
		c.Analysis.MaxAssets = 20
	}
	if c.Analysis.Interval == "" {
		c.Analysis.Interval = "1h"
	}
	if c.Analysis.CorrelationThreshold == nil {
		v := 0.6
		c.Analysis.CorrelationThreshold = &v
	}
	if c.Analysis.FlowThreshold == nil {
		v := 0.05
		c.Analysis.FlowThreshold = &v
	}
	if c.Analysis.MergePolicy == "" {
		c.Analysis.MergePolicy = "union-find"
	}
	if c.Oracle.Estimator == "" {
		c.Oracle.Estimator = "PythonKraskovCMI"
	}
	if c.Oracle.MinLagSources <= 0 {
		c.Oracle.MinLagSources = 1
	}
	if c.Oracle.MaxLagSources <= 0 {
		c.Oracle.MaxLagSources = 6
	}
	if c.Oracle.MaxLagTarget <= 0 {
		c.Oracle.MaxLagTarget = 3
	}
	if c.Oracle.TauSources <= 0 {
		c.Oracle.TauSources = 1
	}
	if c.Oracle.TauTarget <= 0 {
		c.Oracle.TauTarget = 1
	}
	if c.Oracle.NPermMaxStat <= 0 {
		c.Oracle.NPermMaxStat = 50
	}
	if c.Oracle.NPermMinStat <= 0 {
		c.Oracle.NPermMinStat = 50
	}
	if c.Oracle.NPermOmnibus <= 0 {
		c.Oracle.NPermOmnibus = 100
	}
	if c.Oracle.FDRAlpha == 0 {
		c.Oracle.FDRAlpha = 0.05
	}
	if c.Oracle.KraskovK <= 0 {
		c.Oracle.KraskovK = 4
	}
	if c.Oracle.NumThreads == "" {
		c.Oracle.NumThreads = "USE_ALL"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type != "" && c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if c.Oracle.ServiceURL == "" {
		return fmt.Errorf("oracle.service_url is required")
	}
	if ct := *c.Analysis.CorrelationThreshold; ct < 0 || ct > 1 {
		return fmt.Errorf("analysis.correlation_threshold must be in [0,1], got %g", ct)
	}
	if ft := *c.Analysis.FlowThreshold; ft < 0 {
		return fmt.Errorf("analysis.te_threshold must be >= 0, got %g", ft)
	}
	if c.Analysis.LookbackHours <= 0 {
		return fmt.Errorf("analysis.lookback_hours must be > 0")
	}
	if c.Analysis.MaxAssets <= 0 {
		return fmt.Errorf("analysis.max_assets must be > 0")
	}
	if p := c.Analysis.MergePolicy; p != "union-find" && p != "first-match" {
		return fmt.Errorf("analysis.merge_policy must be 'union-find' or 'first-match', got '%s'", p)
	}
	switch c.Analysis.Interval {
	case "1m", "5m", "1h":
	default:
		return fmt.Errorf("analysis.interval must be one of 1m, 5m, 1h, got '%s'", c.Analysis.Interval)
	}
	if c.Oracle.FDRAlpha <= 0 || c.Oracle.FDRAlpha >= 1 {
		return fmt.Errorf("oracle.fdr_alpha must be in (0,1), got %g", c.Oracle.FDRAlpha)
	}
	if c.Oracle.MinLagSources > c.Oracle.MaxLagSources {
		return fmt.Errorf("oracle.min_lag_sources cannot exceed max_lag_sources")
	}
	return nil
}
