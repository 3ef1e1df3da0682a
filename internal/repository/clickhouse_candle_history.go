package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CorrNet/internal/domain/models"
	domrepo "CorrNet/internal/domain/repository"
	pkgch "CorrNet/pkg/clickhouse"
	applogger "CorrNet/pkg/logger"
)

// CHCandleHistory implements CandleHistory backed by ClickHouse.
type CHCandleHistory struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHCandleHistory(ch *pkgch.Client, table string) *CHCandleHistory {
	return &CHCandleHistory{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHCandleHistory) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHCandleHistory) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	start := time.Now()
	if !domrepo.IsValidTimeframe(tf) {
		return nil, fmt.Errorf("invalid timeframe: %s", tf)
	}
	const qtpl = `
        SELECT ts, symbol, interval, open, high, low, close, vol
        FROM %s
        WHERE symbol = ? AND interval = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, string(tf), from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_candles query error",
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 1024)
	for rows.Next() {
		c, err := scanCandle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse get_candles ok",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHCandleHistory) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return nil, fmt.Errorf("invalid timeframe: %s", tf)
	}
	const qtpl = `
        SELECT ts, symbol, interval, open, high, low, close, vol
        FROM %s
        WHERE symbol = ? AND interval = ?
        ORDER BY ts DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, string(tf), n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_candles query error",
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, n)
	for rows.Next() {
		c, err := scanCandle(rows)
		if err != nil {
			return nil, err
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp, nil
}

func scanCandle(rows *sql.Rows) (models.Candle, error) {
	var c models.Candle
	var ts time.Time
	if err := rows.Scan(&ts, &c.Symbol, &c.Interval, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
		return models.Candle{}, fmt.Errorf("scan candle: %w", err)
	}
	c.Timestamp = ts.Unix()
	return c, nil
}
