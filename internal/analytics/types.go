package analytics

import "time"

const (
	TrendUp     Trend = "UP"
	TrendDown   Trend = "DOWN"
	TrendStable Trend = "STABLE"
)

const (
	BudgetOnTrack BudgetState = "ON_TRACK"
	BudgetWarning BudgetState = "WARNING"
	BudgetOver    BudgetState = "OVER"
)

const (
	RatingExcellent HealthRating = "EXCELLENT"
	RatingGood      HealthRating = "GOOD"
	RatingFair      HealthRating = "FAIR"
	RatingPoor      HealthRating = "POOR"
)

// DefaultCategory is the label applied to transactions with no category.
const DefaultCategory = "other"

type (
	// Trend is the direction of a category's spending over time.
	Trend string

	// BudgetState classifies current-month spend against a budget ceiling.
	BudgetState string

	// HealthRating is the qualitative band of a composite health score.
	HealthRating string
)

// SpendingPattern summarizes one category's expense behavior over the
// analysis window.
type SpendingPattern struct {
	MonthlyAverage    float64 `json:"monthly_average"`
	Trend             Trend   `json:"trend"`
	ForecastNextMonth float64 `json:"forecast_next_month"`
	AnomalyDetected   bool    `json:"anomaly_detected"`
	// AnomalyReason is non-empty iff AnomalyDetected is true.
	AnomalyReason    string  `json:"anomaly_reason,omitempty"`
	TransactionCount int     `json:"transaction_count"`
	TotalSpent       float64 `json:"total_spent"`
}

// BudgetStatus compares current-month category spend against its ceiling.
type BudgetStatus struct {
	Budget       float64     `json:"budget"`
	Spent        float64     `json:"spent"`
	Remaining    float64     `json:"remaining"`
	SpentPercent float64     `json:"spent_percent"`
	Status       BudgetState `json:"status"`
}

// HealthScore is the composite financial-health result. OverallScore always
// equals the sum of the four Breakdown values, each in [0, 25].
type HealthScore struct {
	OverallScore    float64            `json:"overall_score"`
	Breakdown       map[string]float64 `json:"breakdown"`
	Rating          HealthRating       `json:"rating"`
	Recommendations []string           `json:"recommendations"`
}

// NetWorthSummary aggregates assets and liabilities.
type NetWorthSummary struct {
	TotalAssets      float64            `json:"total_assets"`
	TotalLiabilities float64            `json:"total_liabilities"`
	NetWorth         float64            `json:"net_worth"`
	AssetAllocation  map[string]float64 `json:"asset_allocation"`
}

// PredictionResult carries next-period spending estimates per category and
// a consistency-based confidence in [0.3, 1.0] for each.
type PredictionResult struct {
	PredictedSpending map[string]float64 `json:"predicted_spending"`
	Confidence        map[string]float64 `json:"confidence"`
}

// Anomaly is one flagged transaction from the recent window of a category.
type Anomaly struct {
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
	ZScore   float64   `json:"z_score"`
	Average  float64   `json:"average"`
	Reason   string    `json:"reason"`
}

// AnomalyReport lists flagged transactions, categories in lexical order and
// entries within a category in chronological order.
type AnomalyReport struct {
	Anomalies []Anomaly `json:"anomalies"`
	Count     int       `json:"count"`
}

// CategorySavings is one savings-optimization suggestion.
type CategorySavings struct {
	Category           string  `json:"category"`
	CurrentSpend       float64 `json:"current_spend"`
	SuggestedReduction float64 `json:"suggested_reduction"`
	TargetSpend        float64 `json:"target_spend"`
	PotentialSavings   float64 `json:"potential_savings"`
}

// SavingsOptimization ranks reducible categories by current spend, descending.
type SavingsOptimization struct {
	Optimizations             []CategorySavings `json:"optimizations"`
	TotalPotentialAnnualSaved float64           `json:"total_potential_annual_savings"`
}
