package analytics

import "finsight/internal/core"

const (
	// predictorMinHistory is the overall transaction floor below which the
	// predictor reports insufficient history.
	predictorMinHistory = 5

	// predictorMinPoints is the per-category floor; thinner categories are
	// skipped, not errors.
	predictorMinPoints = 2
)

// Predictor estimates next-period spending per category from transaction
// history.
type Predictor struct{}

func NewPredictor() *Predictor {
	return &Predictor{}
}

// PredictSpending forecasts each category's next-period amount with the
// recency-weighted trend forecast and scores its consistency-based
// confidence. Fewer than 5 transactions overall is an insufficient-history
// result; categories with fewer than 2 transactions are absent from the
// output. Every predicted amount is non-negative.
func (p *Predictor) PredictSpending(txs []core.Transaction) Result[PredictionResult] {
	empty := PredictionResult{
		PredictedSpending: map[string]float64{},
		Confidence:        map[string]float64{},
	}
	if len(txs) < predictorMinHistory {
		return insufficient(empty, "Insufficient transaction history")
	}

	grouped := groupAllKinds(txs, noWindow)
	result := PredictionResult{
		PredictedSpending: make(map[string]float64, len(grouped)),
		Confidence:        make(map[string]float64, len(grouped)),
	}

	for category, points := range grouped {
		if len(points) < predictorMinPoints {
			continue
		}
		xs := amounts(points)
		result.PredictedSpending[category] = weightedTrendForecast(xs)
		result.Confidence[category] = confidenceScore(xs)
	}

	return ok(result)
}
