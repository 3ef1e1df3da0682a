package usecase

import (
	"context"
	"fmt"
	"time"

	"CorrNet/internal/domain/models"
	domrepo "CorrNet/internal/domain/repository"
	"CorrNet/internal/services/features"
)

// CandlesUseCase provides business logic for retrieving stored candles.
type CandlesUseCase struct {
	history domrepo.CandleHistory
}

func NewCandlesUseCase(history domrepo.CandleHistory) *CandlesUseCase {
	return &CandlesUseCase{history: history}
}

type GetCandlesParams struct {
	Symbol    string
	From      time.Time
	To        time.Time
	Timeframe domrepo.Timeframe
	Limit     int
}

type GetCandlesResult struct {
	Symbol        string
	Timeframe     string
	From          time.Time
	To            time.Time
	Count         int
	RealizedSigma float64
	Candles       []models.Candle
}

func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 10000
	}
	if p.Limit > 50000 {
		p.Limit = 50000
	}
	from, to := features.AlignFromTo(p.From, p.To, string(p.Timeframe))

	candles, err := uc.history.GetCandles(ctx, p.Symbol, from, to, p.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}
	if len(candles) > p.Limit {
		candles = candles[:p.Limit]
	}

	rets := features.ComputeLogReturns(candles)
	bpY := features.BarsPerYearForTF(string(p.Timeframe))
	sigma := features.RealizedVolatility(rets, minInt(60, len(rets)), bpY)

	return &GetCandlesResult{
		Symbol:        p.Symbol,
		Timeframe:     string(p.Timeframe),
		From:          from,
		To:            to,
		Count:         len(candles),
		RealizedSigma: sigma,
		Candles:       candles,
	}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
