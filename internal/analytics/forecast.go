package analytics

import (
	"math"
	"time"
)

const (
	// forecastWindowDays is the trailing window the pattern forecast
	// normalizes to a full month.
	forecastWindowDays = 30

	// trendProjectionPeriods and trendWeight control how much of a
	// 5-period-ahead linear projection the weighted forecast mixes in.
	trendProjectionPeriods = 5
	trendWeight            = 0.1
)

// forecastNextMonth projects next-month spend from a category's expense
// series: the sum of the trailing 30 days scaled by 30/count. When the
// trailing window is empty it falls back to the all-time mean of the series.
// An empty series forecasts 0.
func forecastNextMonth(points []SeriesPoint, now time.Time) float64 {
	if len(points) == 0 {
		return 0
	}

	cutoff := now.AddDate(0, 0, -forecastWindowDays)
	var recentSum float64
	var recentCount int
	for _, p := range points {
		if p.When.Before(cutoff) {
			continue
		}
		recentSum += p.Amount
		recentCount++
	}

	if recentCount == 0 {
		return mean(amounts(points))
	}
	return recentSum * (forecastWindowDays / float64(recentCount))
}

// weightedTrendForecast estimates the next-period amount from a
// chronological sequence: an exponentially weighted mean (recent points
// weighted more) nudged by 10% of a 5-period linear-trend projection.
// The result is clamped to be non-negative and rounded to 2 decimals.
func weightedTrendForecast(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	weights := expWeights(len(xs))
	var recentAvg float64
	for i, x := range xs {
		recentAvg += x * weights[i]
	}

	slope, _ := linearTrend(xs)
	predicted := recentAvg + slope*trendProjectionPeriods*trendWeight

	return round2(math.Max(0, predicted))
}

// expWeights returns exp(linspace(0, 1, n)) normalized to sum to 1.
func expWeights(n int) []float64 {
	weights := make([]float64, n)
	var sum float64
	for i := range weights {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		weights[i] = math.Exp(t)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// confidenceScore maps spending consistency to [0.3, 1.0]: the lower the
// coefficient of variation (std over mean+1), the higher the confidence.
// Fewer than 2 points scores a neutral 0.5.
func confidenceScore(xs []float64) float64 {
	if len(xs) < 2 {
		return 0.5
	}
	m := mean(xs)
	cv := 0.0
	if m > 0 {
		cv = stdDev(xs) / (m + 1)
	}
	return clamp(1-cv*0.5, 0.3, 1.0)
}
