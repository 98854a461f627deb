package analytics

import "finsight/internal/core"

// Budget status boundaries: spent_percent > 100 is OVER, > 80 and ≤ 100 is
// WARNING, everything else ON_TRACK. The three ranges partition [0, ∞).
const budgetWarningPercent = 80

// AnalyzeBudgetPerformance compares current-calendar-month expense sums
// against per-category budget ceilings. Only budgeted categories are
// evaluated; the month is matched exactly by year and month against now,
// not as a rolling window. A non-positive budget pins spent_percent at 0.
func (a *Analyzer) AnalyzeBudgetPerformance(txs []core.Transaction, budgets map[string]float64) map[string]BudgetStatus {
	performance := make(map[string]BudgetStatus)

	now := a.now()
	spentByCategory := make(map[string]float64)
	for _, tx := range txs {
		if tx.Kind != core.Expense {
			continue
		}
		if tx.Date.Year() != now.Year() || tx.Date.Month() != int(now.Month()) {
			continue
		}
		label := tx.Category
		if label == "" {
			label = DefaultCategory
		}
		spentByCategory[label] += tx.Amount.Dollars()
	}

	for category, budget := range budgets {
		spent := spentByCategory[category]

		percent := 0.0
		if budget > 0 {
			percent = spent / budget * 100
		}

		status := BudgetOnTrack
		switch {
		case percent > 100:
			status = BudgetOver
		case percent > budgetWarningPercent:
			status = BudgetWarning
		}

		performance[category] = BudgetStatus{
			Budget:       budget,
			Spent:        spent,
			Remaining:    budget - spent,
			SpentPercent: percent,
			Status:       status,
		}
	}

	return performance
}
