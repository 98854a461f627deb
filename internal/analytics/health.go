package analytics

import "math"

// Breakdown keys of the health score, in recommendation order.
const (
	ScoreSavingsRate     = "savings_rate"
	ScoreDebtRatio       = "debt_ratio"
	ScoreEmergencyFund   = "emergency_fund"
	ScoreIncomeStability = "income_stability"
)

const (
	// incomeStabilityBaseline is a fixed placeholder: the score carries no
	// history-based income-stability computation, so this sub-score is a
	// constant 15 regardless of input. Kept as-is on purpose; a real formula
	// would need an income history the engine does not receive.
	incomeStabilityBaseline = 15.0

	// savingsRateCeiling is the savings rate (20%) that saturates its band.
	savingsRateCeiling = 20.0

	// emergencyFundTargetMonths of expense coverage saturate that band;
	// coverage is capped at emergencyFundCapMonths before scoring.
	emergencyFundTargetMonths = 6.0
	emergencyFundCapMonths    = 12.0

	subScoreMax = 25.0

	lowSubScore = 10.0
)

// FinancialHealthScore combines savings rate, debt ratio, emergency-fund
// coverage and a fixed income-stability baseline into a 0-100 composite.
// debtRatio is liabilities over assets, caller-computed. Each sub-score is
// clamped to [0, 25] and the overall score is exactly their sum.
func (a *Analyzer) FinancialHealthScore(netWorth, monthlyIncome, monthlyExpenses, debtRatio float64) HealthScore {
	breakdown := make(map[string]float64, 4)

	savingsRate := 0.0
	if monthlyIncome > 0 {
		savingsRate = (monthlyIncome - monthlyExpenses) / monthlyIncome
	}
	// A 20% savings rate maps to the 25-point ceiling.
	breakdown[ScoreSavingsRate] = clamp(savingsRate*100/savingsRateCeiling*subScoreMax, 0, subScoreMax)

	// Clamped on both ends: a negative (nonsense) debt ratio must not push
	// the sub-score past its band.
	breakdown[ScoreDebtRatio] = clamp(subScoreMax*(1-math.Min(1, debtRatio)), 0, subScoreMax)

	months := 0.0
	if monthlyExpenses > 0 {
		months = netWorth / monthlyExpenses
	}
	months = math.Min(months, emergencyFundCapMonths)
	breakdown[ScoreEmergencyFund] = clamp(months*subScoreMax/emergencyFundTargetMonths, 0, subScoreMax)

	breakdown[ScoreIncomeStability] = incomeStabilityBaseline

	total := 0.0
	for _, s := range breakdown {
		total += s
	}

	return HealthScore{
		OverallScore:    total,
		Breakdown:       breakdown,
		Rating:          healthRating(total),
		Recommendations: healthRecommendations(breakdown),
	}
}

func healthRating(score float64) HealthRating {
	switch {
	case score >= 80:
		return RatingExcellent
	case score >= 60:
		return RatingGood
	case score >= 40:
		return RatingFair
	default:
		return RatingPoor
	}
}

// healthRecommendations appends one fixed message per sub-score below 10,
// in savings → debt → emergency order.
func healthRecommendations(breakdown map[string]float64) []string {
	recs := []string{}
	if breakdown[ScoreSavingsRate] < lowSubScore {
		recs = append(recs, "Increase saving rate by reducing expenses")
	}
	if breakdown[ScoreDebtRatio] < lowSubScore {
		recs = append(recs, "Focus on paying down debt")
	}
	if breakdown[ScoreEmergencyFund] < lowSubScore {
		recs = append(recs, "Build emergency fund with 3-6 months of expenses")
	}
	return recs
}
