package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CorrNet/internal/domain/models"
	"CorrNet/internal/domain/repository"
)

// ClickHouseCandleStorage implements Storage for ClickHouse.
type ClickHouseCandleStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseCandleStorage creates ClickHouse candle storage.
func NewClickHouseCandleStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseCandleStorage{db: db, table: table}
}

// CandleSchema returns the DDL for the raw candle table.
func CandleSchema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            ts        DateTime,
            symbol    LowCardinality(String),
            interval  LowCardinality(String),
            open      Float64,
            high      Float64,
            low       Float64,
            close     Float64,
            vol       Float64,
            source    LowCardinality(String)
        ) ENGINE = ReplacingMergeTree
        PARTITION BY toYYYYMM(ts)
        ORDER BY (symbol, interval, ts)
    `, table)}
}

func (s *ClickHouseCandleStorage) Init(ctx context.Context) error {
	for _, stmt := range CandleSchema(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init candle schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseCandleStorage) Store(ctx context.Context, c *models.Candle) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, interval, open, high, low, close, vol, source) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		time.Unix(c.Timestamp, 0),
		c.Symbol,
		intervalOrDefault(c.Interval),
		c.Open,
		c.High,
		c.Low,
		c.Close,
		c.Volume,
		"hyperliquid",
	)
	return err
}

func (s *ClickHouseCandleStorage) StoreBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	// Multi-row VALUES insert to reduce round-trips, chunked at 2000 rows.
	const chunkSize = 2000
	for start := 0; start < len(candles); start += chunkSize {
		end := start + chunkSize
		if end > len(candles) {
			end = len(candles)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*9)
		for _, c := range candles[start:end] {
			if c == nil || c.Symbol == "" || c.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(c.Timestamp, 0),
				c.Symbol,
				intervalOrDefault(c.Interval),
				c.Open,
				c.High,
				c.Low,
				c.Close,
				c.Volume,
				"hyperliquid",
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, interval, open, high, low, close, vol, source) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseCandleStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseCandleStorage) Close() error {
	return nil // connection managed by pkg client
}

func intervalOrDefault(iv string) string {
	if iv == "" {
		return string(repository.DefaultTimeframe())
	}
	return iv
}
