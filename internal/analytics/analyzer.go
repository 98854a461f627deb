// Package analytics is the pure, stateless engine turning dated, categorized
// transactions into derived metrics: spending trends, forecasts, anomaly
// flags, budget performance, a composite health score and savings
// suggestions. Every entry point is a deterministic function of its inputs;
// the package performs no I/O and retains no state between calls.
package analytics

import (
	"time"

	"finsight/internal/core"
)

// DefaultAnomalyThreshold is the z-score beyond which the pattern analyzer
// flags a category's latest expense.
const DefaultAnomalyThreshold = 2.0

// DefaultPatternWindowDays is the rolling lookback for pattern analysis.
const DefaultPatternWindowDays = 90

// Analyzer evaluates spending patterns, budget performance and financial
// health. It is safe for concurrent use: all methods are pure functions of
// their arguments.
type Analyzer struct {
	threshold float64
	now       func() time.Time
}

// NewAnalyzer returns an Analyzer flagging latest-value z-scores above
// threshold. A non-positive threshold selects DefaultAnomalyThreshold.
func NewAnalyzer(threshold float64) *Analyzer {
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}
	return &Analyzer{threshold: threshold, now: time.Now}
}

// AnalyzeSpendingPatterns summarizes each category's expenses over the
// trailing window: monthly average, trend, next-month forecast, latest-value
// anomaly flag, transaction count (all kinds) and total spent. Categories
// with no expenses inside the window are omitted. Empty input yields an
// empty map. A non-positive days selects DefaultPatternWindowDays.
func (a *Analyzer) AnalyzeSpendingPatterns(txs []core.Transaction, days int) map[string]SpendingPattern {
	patterns := make(map[string]SpendingPattern)
	if len(txs) == 0 {
		return patterns
	}
	if days <= 0 {
		days = DefaultPatternWindowDays
	}

	now := a.now()
	cutoff := now.AddDate(0, 0, -days)

	all := groupAllKinds(txs, cutoff)
	expenses := GroupByCategory(txs, core.Expense, cutoff)

	for category, points := range expenses {
		xs := amounts(points)

		var total float64
		for _, x := range xs {
			total += x
		}

		// Normalize the window mean to a 30-day month.
		monthlyAvg := mean(xs) * 30 / (float64(days) / 30)

		detected, reason := latestValueAnomaly(xs, a.threshold)

		patterns[category] = SpendingPattern{
			MonthlyAverage:    monthlyAvg,
			Trend:             ClassifyTrend(xs),
			ForecastNextMonth: forecastNextMonth(points, now),
			AnomalyDetected:   detected,
			AnomalyReason:     reason,
			TransactionCount:  len(all[category]),
			TotalSpent:        total,
		}
	}

	return patterns
}
