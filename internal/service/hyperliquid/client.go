package hyperliquid

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"CorrNet/internal/domain/models"
	domsvc "CorrNet/internal/domain/service"
	"CorrNet/internal/service/ratelimit"
	"CorrNet/pkg/config"
	xhttp "CorrNet/pkg/http"
)

// Client implements MarketData backed by the Hyperliquid info API.
type Client struct {
	baseURL   string
	maxAssets int
	universe  []string // optional fixed universe from config
	limiter   *ratelimit.Limiter
	rps       float64
	client    *xhttp.Client
}

// New creates a new Hyperliquid market data client.
func New(cfg *config.Config) *Client {
	rps := cfg.Hyperliquid.RateLimitRPS
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		baseURL:   cfg.Hyperliquid.BaseURL,
		maxAssets: cfg.Analysis.MaxAssets,
		universe:  cfg.Hyperliquid.Symbols,
		limiter:   ratelimit.New(),
		rps:       rps,
		client:    xhttp.NewClient(xhttp.WithTimeout(cfg.Hyperliquid.RequestTimeout)),
	}
}

type metaResponse struct {
	Universe []struct {
		Name         string `json:"name"`
		MaxLeverage  int    `json:"maxLeverage"`
		OnlyIsolated bool   `json:"onlyIsolated"`
	} `json:"universe"`
}

// ListAssets returns tradable perp assets, filtered to leveraged cross-margin
// instruments, capped at the configured maximum. A fixed universe in config
// bypasses discovery.
func (c *Client) ListAssets(ctx context.Context) ([]models.AssetInfo, error) {
	if len(c.universe) > 0 {
		out := make([]models.AssetInfo, 0, len(c.universe))
		for _, s := range c.universe {
			out = append(out, models.AssetInfo{Symbol: s, MaxLeverage: 1})
			if len(out) >= c.maxAssets {
				break
			}
		}
		return out, nil
	}

	var meta metaResponse
	if err := c.post(ctx, map[string]any{"type": "meta"}, &meta); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	out := make([]models.AssetInfo, 0, c.maxAssets)
	for _, t := range meta.Universe {
		if t.MaxLeverage <= 0 || t.OnlyIsolated || t.Name == "" {
			continue
		}
		out = append(out, models.AssetInfo{
			Symbol:       t.Name,
			MaxLeverage:  t.MaxLeverage,
			OnlyIsolated: t.OnlyIsolated,
		})
		if len(out) >= c.maxAssets {
			break
		}
	}
	return out, nil
}

type candleRow struct {
	T int64  `json:"t"` // open time, ms
	O string `json:"o"`
	C string `json:"c"`
	H string `json:"h"`
	L string `json:"l"`
	V string `json:"v"`
}

// FetchSeries fetches close-price series for every symbol over the lookback
// window. Candle timestamps come back sorted ascending per asset; assets with
// no candles are skipped, alignment downstream handles partial coverage.
func (c *Client) FetchSeries(ctx context.Context, symbols []string, hours int, interval string) ([]models.AssetSeries, error) {
	end := time.Now().UnixMilli()
	start := end - int64(hours)*time.Hour.Milliseconds()

	series := make([]models.AssetSeries, 0, len(symbols))
	for _, sym := range symbols {
		c.waitForSlot(ctx)

		var rows []candleRow
		req := map[string]any{
			"type": "candleSnapshot",
			"req": map[string]any{
				"coin":      sym,
				"interval":  interval,
				"startTime": start,
				"endTime":   end,
			},
		}
		if err := c.post(ctx, req, &rows); err != nil {
			return nil, fmt.Errorf("fetch candles %s: %w", sym, err)
		}
		if len(rows) == 0 {
			continue
		}

		points := make([]models.PricePoint, 0, len(rows))
		for _, r := range rows {
			price, err := strconv.ParseFloat(r.C, 64)
			if err != nil {
				return nil, fmt.Errorf("fetch candles %s: bad close %q: %w", sym, r.C, err)
			}
			points = append(points, models.PricePoint{
				Timestamp: time.UnixMilli(r.T).UTC(),
				Price:     price,
			})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
		series = append(series, models.AssetSeries{Symbol: sym, Points: points})
	}
	return series, nil
}

func (c *Client) post(ctx context.Context, body any, dest any) error {
	return c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/info",
		Headers: map[string]string{
			"Content-Type": "application/json",
			"User-Agent":   "CorrNet/1.0",
		},
		Body: body,
	}, dest)
}

// waitForSlot blocks until the API rate limiter grants a token or the
// context is cancelled.
func (c *Client) waitForSlot(ctx context.Context) {
	for !c.limiter.Allow("hyperliquid_info", c.rps, c.rps) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
}

var _ domsvc.MarketData = (*Client)(nil)
