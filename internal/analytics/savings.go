package analytics

import (
	"sort"

	"finsight/internal/core"
)

const (
	// savingsFlagFraction of the budget limit a category total must exceed
	// to be flagged as reducible.
	savingsFlagFraction = 0.25

	// savingsReductionRate is the proposed cut of a flagged category's spend.
	savingsReductionRate = 0.15
)

// SavingsOptimizer ranks heavy categories and proposes fixed-percentage cuts.
type SavingsOptimizer struct{}

func NewSavingsOptimizer() *SavingsOptimizer {
	return &SavingsOptimizer{}
}

// OptimizeSavings flags categories whose total exceeds 25% of budgetLimit and
// proposes a 15% reduction with annualized (×12) savings, sorted by current
// spend descending.
//
// Known defect, preserved deliberately: category totals sum every transaction
// regardless of kind, so income transactions inflate "current spend". Filtering
// to expenses would change observable output; do not fix silently.
func (o *SavingsOptimizer) OptimizeSavings(txs []core.Transaction, budgetLimit float64) SavingsOptimization {
	result := SavingsOptimization{Optimizations: []CategorySavings{}}
	if len(txs) == 0 {
		return result
	}

	totals := make(map[string]float64)
	for _, tx := range txs {
		label := tx.Category
		if label == "" {
			label = DefaultCategory
		}
		totals[label] += tx.Amount.Dollars()
	}

	var flagged []CategorySavings
	for category, total := range totals {
		if total <= budgetLimit*savingsFlagFraction {
			continue
		}
		reduction := total * savingsReductionRate
		flagged = append(flagged, CategorySavings{
			Category:           category,
			CurrentSpend:       round2(total),
			SuggestedReduction: round2(reduction),
			TargetSpend:        round2(total - reduction),
			PotentialSavings:   round2(reduction * 12),
		})
	}

	sort.SliceStable(flagged, func(i, j int) bool {
		if flagged[i].CurrentSpend != flagged[j].CurrentSpend {
			return flagged[i].CurrentSpend > flagged[j].CurrentSpend
		}
		return flagged[i].Category < flagged[j].Category
	})

	var totalAnnual float64
	for _, f := range flagged {
		totalAnnual += f.PotentialSavings
	}

	result.Optimizations = append(result.Optimizations, flagged...)
	result.TotalPotentialAnnualSaved = round2(totalAnnual)
	return result
}
