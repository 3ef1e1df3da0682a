package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"CorrNet/internal/domain/models"
	domrepo "CorrNet/internal/domain/repository"
	pkgch "CorrNet/pkg/clickhouse"
)

// CHRunStore implements RunStore backed by ClickHouse. Runs are stored as a
// small header row plus the full result serialized to JSON; the API reads
// whole runs, never individual edges, so there is no need to normalize.
type CHRunStore struct {
	db    *sql.DB
	table string
}

func NewCHRunStore(ch *pkgch.Client, table string) *CHRunStore {
	return &CHRunStore{db: ch.DB(), table: table}
}

// RunSchema returns the DDL for the analysis run table.
func RunSchema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            run_id       String,
            started_at   DateTime,
            lookback_h   UInt32,
            assets       UInt32,
            clusters     UInt32,
            density      Float64,
            result       String
        ) ENGINE = ReplacingMergeTree
        ORDER BY (started_at, run_id)
    `, table)}
}

func (s *CHRunStore) Init(ctx context.Context) error {
	for _, stmt := range RunSchema(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init run schema: %w", err)
		}
	}
	return nil
}

func (s *CHRunStore) SaveRun(ctx context.Context, res *models.AnalysisResult) error {
	if res == nil || res.RunID == "" {
		return fmt.Errorf("invalid run")
	}
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s (run_id, started_at, lookback_h, assets, clusters, density, result) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err = s.db.ExecContext(ctx, q,
		res.RunID,
		res.StartedAt,
		uint32(res.LookbackHours),
		uint32(res.Summary.TotalAssets),
		uint32(res.Summary.Clusters),
		res.Summary.NetworkDensity,
		string(b),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *CHRunStore) GetRun(ctx context.Context, runID string) (*models.AnalysisResult, error) {
	q := fmt.Sprintf("SELECT result FROM %s WHERE run_id = ? ORDER BY started_at DESC LIMIT 1", s.table)
	return s.queryRun(ctx, q, runID)
}

func (s *CHRunStore) LatestRun(ctx context.Context) (*models.AnalysisResult, error) {
	q := fmt.Sprintf("SELECT result FROM %s ORDER BY started_at DESC LIMIT 1", s.table)
	return s.queryRun(ctx, q)
}

func (s *CHRunStore) queryRun(ctx context.Context, q string, args ...interface{}) (*models.AnalysisResult, error) {
	var raw string
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run not found")
		}
		return nil, fmt.Errorf("query run: %w", err)
	}
	var res models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &res, nil
}

var _ domrepo.RunStore = (*CHRunStore)(nil)
