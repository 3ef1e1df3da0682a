package analysis

import (
	"math"
	"sort"
	"time"

	"CorrNet/internal/domain/models"
)

const outlierSigma = 3.0

// SeriesPreprocessor turns raw price series into a standardized,
// outlier-clipped return matrix ready for correlation and transfer-entropy
// estimation.
type SeriesPreprocessor struct{}

func NewSeriesPreprocessor() *SeriesPreprocessor { return &SeriesPreprocessor{} }

// Prepare aligns all series on their common timestamps, computes simple
// period-over-period returns, removes 3-sigma outlier rows and standardizes
// each column to zero mean and unit variance.
func (p *SeriesPreprocessor) Prepare(series []models.AssetSeries) (*models.ReturnMatrix, error) {
	if len(series) < 2 {
		return nil, &InsufficientDataError{Stage: "preprocess", Assets: len(series)}
	}

	symbols := make([]string, len(series))
	for i, s := range series {
		symbols[i] = s.Symbol
	}

	prices := alignOnCommonTimestamps(series)
	if len(prices) < 2 {
		return nil, &InsufficientDataError{Stage: "preprocess", Assets: len(series), Observations: len(prices)}
	}

	returns := pctChange(prices)
	returns = clipOutlierRows(returns)
	if len(returns) < 2 {
		return nil, &InsufficientDataError{Stage: "preprocess", Assets: len(series), Observations: len(returns)}
	}

	for col := range symbols {
		mean, std := columnStats(returns, col)
		if std == 0 {
			return nil, &DegenerateSeriesError{Stage: "preprocess", Asset: symbols[col]}
		}
		for r := range returns {
			returns[r][col] = (returns[r][col] - mean) / std
		}
	}

	return &models.ReturnMatrix{Symbols: symbols, Rows: returns}, nil
}

// alignOnCommonTimestamps keeps only timestamps present in every series
// (inner join) and returns the price rows in chronological order.
func alignOnCommonTimestamps(series []models.AssetSeries) [][]float64 {
	counts := make(map[time.Time]int)
	byAsset := make([]map[time.Time]float64, len(series))
	for i, s := range series {
		byAsset[i] = make(map[time.Time]float64, len(s.Points))
		for _, pt := range s.Points {
			byAsset[i][pt.Timestamp] = pt.Price
			counts[pt.Timestamp]++
		}
	}

	common := make([]time.Time, 0, len(counts))
	for ts, n := range counts {
		if n == len(series) {
			common = append(common, ts)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })

	rows := make([][]float64, len(common))
	for r, ts := range common {
		row := make([]float64, len(series))
		for i := range series {
			row[i] = byAsset[i][ts]
		}
		rows[r] = row
	}
	return rows
}

// pctChange computes r[t] = p[t]/p[t-1] - 1 per column, dropping the first row.
func pctChange(prices [][]float64) [][]float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([][]float64, 0, len(prices)-1)
	for t := 1; t < len(prices); t++ {
		row := make([]float64, len(prices[t]))
		for c := range row {
			row[c] = prices[t][c]/prices[t-1][c] - 1
		}
		out = append(out, row)
	}
	return out
}

// clipOutlierRows drops every row where any column's return reaches 3 sigma.
// Sigma is the sample standard deviation over the full column, so the filter
// is an intersection across assets: the comparison is made per cell and a row
// survives only if every cell passes.
func clipOutlierRows(returns [][]float64) [][]float64 {
	if len(returns) == 0 {
		return returns
	}
	cols := len(returns[0])
	bounds := make([]float64, cols)
	for c := 0; c < cols; c++ {
		_, std := columnStats(returns, c)
		bounds[c] = outlierSigma * std
	}

	out := make([][]float64, 0, len(returns))
	for _, row := range returns {
		keep := true
		for c, v := range row {
			// NaN never passes the keep test, so NaN cells drop the row.
			if !(math.Abs(v) < bounds[c]) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

// columnStats returns mean and sample standard deviation of one column.
func columnStats(rows [][]float64, col int) (mean, std float64) {
	n := float64(len(rows))
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, row := range rows {
		sum += row[col]
	}
	mean = sum / n
	if n < 2 {
		return mean, 0
	}
	ss := 0.0
	for _, row := range rows {
		d := row[col] - mean
		ss += d * d
	}
	std = math.Sqrt(ss / (n - 1))
	return mean, std
}
