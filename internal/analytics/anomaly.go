package analytics

import (
	"fmt"
	"math"

	"finsight/internal/core"
)

// Two z-score strategies coexist on purpose. The latest-value screen used by
// the pattern analyzer takes the absolute z against the plain standard
// deviation; the batch detector below takes a signed z with a +0.01
// stabilizer over the last 5 transactions per category. Their outputs differ
// and both are observable contracts — do not merge them.

const (
	// DefaultDetectorThreshold is the |z| above which the batch detector
	// flags a recent transaction.
	DefaultDetectorThreshold = 2.5

	// detectorMinTransactions is the overall history required before the
	// batch detector reports anything at all.
	detectorMinTransactions = 10

	// detectorRecentWindow bounds how many of a category's most recent
	// transactions are screened.
	detectorRecentWindow = 5

	// minPointsPerCategory is the per-category history floor shared by both
	// z-score strategies.
	minPointsPerCategory = 3

	// zStabilizer keeps the batch detector's divisor away from zero.
	zStabilizer = 0.01
)

// latestValueAnomaly screens only the most recent value of an expense
// sequence against the full history's mean and population standard
// deviation. With fewer than 3 points, or zero deviation, nothing is
// flagged. The reason reports the z-score to one decimal place.
func latestValueAnomaly(xs []float64, threshold float64) (bool, string) {
	if len(xs) < minPointsPerCategory {
		return false, ""
	}

	m := mean(xs)
	sd := stdDev(xs)

	z := 0.0
	if sd > 0 {
		z = math.Abs((xs[len(xs)-1] - m) / sd)
	}

	if z > threshold {
		return true, fmt.Sprintf("Spending %.1f std deviations above average", z)
	}
	return false, ""
}

// AnomalyDetector screens the recent transactions of every category against
// that category's full amount history.
type AnomalyDetector struct {
	threshold float64
}

// NewAnomalyDetector returns a detector flagging |z| above threshold.
// A non-positive threshold selects DefaultDetectorThreshold.
func NewAnomalyDetector(threshold float64) *AnomalyDetector {
	if threshold <= 0 {
		threshold = DefaultDetectorThreshold
	}
	return &AnomalyDetector{threshold: threshold}
}

// DetectAnomalies evaluates the last 5 transactions of each category (all
// kinds, chronological order) with z = (value − mean) / (std + 0.01) over the
// category's full history, flagging entries with |z| above the threshold.
// Fewer than 10 transactions overall is an insufficient-data result;
// categories with fewer than 3 transactions are skipped. Categories appear
// in lexical order.
func (d *AnomalyDetector) DetectAnomalies(txs []core.Transaction) Result[AnomalyReport] {
	if len(txs) < detectorMinTransactions {
		return insufficient(AnomalyReport{Anomalies: []Anomaly{}}, "Insufficient data")
	}

	grouped := groupAllKinds(txs, noWindow)
	report := AnomalyReport{Anomalies: []Anomaly{}}

	for _, category := range sortedCategories(grouped) {
		points := grouped[category]
		if len(points) < minPointsPerCategory {
			continue
		}

		xs := amounts(points)
		m := mean(xs)
		sd := stdDev(xs)

		recent := points
		if len(recent) > detectorRecentWindow {
			recent = recent[len(recent)-detectorRecentWindow:]
		}

		for _, p := range recent {
			z := 0.0
			if sd > 0 {
				z = (p.Amount - m) / (sd + zStabilizer)
			}
			if math.Abs(z) > d.threshold {
				report.Anomalies = append(report.Anomalies, Anomaly{
					Category: category,
					Amount:   p.Amount,
					Date:     p.When,
					ZScore:   round2(z),
					Average:  round2(m),
					Reason:   fmt.Sprintf("Spending %.1fσ away from normal pattern", math.Abs(z)),
				})
			}
		}
	}

	report.Count = len(report.Anomalies)
	return ok(report)
}
