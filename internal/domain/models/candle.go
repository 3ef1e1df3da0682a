package models

import "time"

// Candle represents a single OHLCV record as ingested from an exchange.
type Candle struct {
	Symbol    string
	Interval  string // candle timeframe, e.g. "1h"
	Timestamp int64  // unix seconds, bucket open time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// PricePoint is a single (timestamp, close price) observation.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// AssetSeries is the ordered close-price history of one asset. Timestamps are
// strictly increasing with no duplicates; producers are responsible for that
// invariant, consumers treat the series as read-only.
type AssetSeries struct {
	Symbol string
	Points []PricePoint
}

// AssetInfo describes one tradable asset from the market data source.
type AssetInfo struct {
	Symbol       string
	MaxLeverage  int
	OnlyIsolated bool
}
