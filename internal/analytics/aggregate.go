package analytics

import (
	"sort"
	"time"

	"finsight/internal/core"
)

// noWindow disables date filtering when grouping.
var noWindow time.Time

// SeriesPoint is one dated amount inside a category series.
type SeriesPoint struct {
	When   time.Time
	Amount float64
}

// GroupByCategory builds per-category amount series from a flat transaction
// collection, keeping only the given kind and ordering each series by date
// ascending. Transactions dated before since are dropped; a zero since keeps
// all history. Transactions without a category land under DefaultCategory.
// Empty input yields an empty map, never an error.
func GroupByCategory(txs []core.Transaction, kind core.Kind, since time.Time) map[string][]SeriesPoint {
	grouped := make(map[string][]SeriesPoint)
	for _, tx := range txs {
		if tx.Kind != kind {
			continue
		}
		if !since.IsZero() && tx.Date.Before(since) {
			continue
		}
		label := tx.Category
		if label == "" {
			label = DefaultCategory
		}
		grouped[label] = append(grouped[label], SeriesPoint{
			When:   tx.Date.Time,
			Amount: tx.Amount.Dollars(),
		})
	}
	for label := range grouped {
		sortByDate(grouped[label])
	}
	return grouped
}

// groupAllKinds groups transactions by category regardless of kind, ordered
// by date ascending. Used by the predictor, the batch anomaly detector and
// the savings optimizer, which all follow the full history, and by the
// pattern analyzer for per-category transaction counts.
func groupAllKinds(txs []core.Transaction, since time.Time) map[string][]SeriesPoint {
	grouped := make(map[string][]SeriesPoint)
	for _, tx := range txs {
		if !since.IsZero() && tx.Date.Before(since) {
			continue
		}
		label := tx.Category
		if label == "" {
			label = DefaultCategory
		}
		grouped[label] = append(grouped[label], SeriesPoint{
			When:   tx.Date.Time,
			Amount: tx.Amount.Dollars(),
		})
	}
	for label := range grouped {
		sortByDate(grouped[label])
	}
	return grouped
}

func sortByDate(points []SeriesPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].When.Before(points[j].When)
	})
}

func amounts(points []SeriesPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Amount
	}
	return out
}

// sortedCategories returns map keys in lexical order for deterministic output.
func sortedCategories[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
