package analytics

import (
	"strings"
	"testing"
	"time"

	"finsight/internal/core"
)

func expense(day time.Time, amount float64, category string) core.Transaction {
	return core.Transaction{
		Date:     core.Date{Time: day},
		Amount:   core.Money{Cents: core.CentsFromFloat(amount)},
		Category: category,
		Kind:     core.Expense,
	}
}

func income(day time.Time, amount float64, category string) core.Transaction {
	tx := expense(day, amount, category)
	tx.Kind = core.Income
	return tx
}

func TestLatestValueAnomalyTooFewPoints(t *testing.T) {
	// Spec example: groceries history [120, 500] has mean 310, std 190 and
	// z ≈ 1.0 for the 500 entry — but with fewer than 3 points the screen
	// never evaluates it.
	detected, reason := latestValueAnomaly([]float64{120, 500}, DefaultAnomalyThreshold)
	if detected || reason != "" {
		t.Fatalf("expected no anomaly on 2 points, got %v %q", detected, reason)
	}
}

func TestLatestValueAnomalyZeroDeviation(t *testing.T) {
	detected, _ := latestValueAnomaly([]float64{50, 50, 50, 50}, DefaultAnomalyThreshold)
	if detected {
		t.Fatalf("identical values must never flag")
	}
}

func TestLatestValueAnomalyBelowThreshold(t *testing.T) {
	// mean 310, std 190 over [120, 500, 310]: the last value sits on the
	// mean, z = 0.
	detected, _ := latestValueAnomaly([]float64{120, 500, 310}, DefaultAnomalyThreshold)
	if detected {
		t.Fatalf("expected no anomaly")
	}
}

func TestLatestValueAnomalyFlagged(t *testing.T) {
	// Tight history with a huge final value pushes z well past 2.0.
	xs := []float64{50, 52, 48, 51, 49, 50, 400}
	detected, reason := latestValueAnomaly(xs, DefaultAnomalyThreshold)
	if !detected {
		t.Fatalf("expected anomaly")
	}
	if !strings.Contains(reason, "std deviations above average") {
		t.Fatalf("unexpected reason %q", reason)
	}
}

func TestDetectAnomaliesInsufficientData(t *testing.T) {
	d := NewAnomalyDetector(0)

	var txs []core.Transaction
	for i := 0; i < 9; i++ {
		txs = append(txs, expense(testNow.AddDate(0, 0, -i), 50, "groceries"))
	}

	res := d.DetectAnomalies(txs)
	if res.OK() {
		t.Fatalf("expected insufficient data below 10 transactions")
	}
	if res.Kind != ErrorInsufficientData {
		t.Fatalf("expected ErrorInsufficientData, got %v", res.Kind)
	}
	if len(res.Value.Anomalies) != 0 || res.Value.Count != 0 {
		t.Fatalf("default value must be empty, got %+v", res.Value)
	}
}

func TestDetectAnomaliesFlagsRecentSpike(t *testing.T) {
	d := NewAnomalyDetector(0)

	var txs []core.Transaction
	for i := 12; i > 0; i-- {
		txs = append(txs, expense(daysAgo(i), 50, "groceries"))
	}
	// Final spike well past 2.5σ of the stabilized deviation.
	spikeDay := daysAgo(0)
	txs = append(txs, expense(spikeDay, 800, "groceries"))

	res := d.DetectAnomalies(txs)
	if !res.OK() {
		t.Fatalf("expected computed result, got %v", res.Kind)
	}
	if res.Value.Count != 1 || len(res.Value.Anomalies) != 1 {
		t.Fatalf("expected exactly one anomaly, got %+v", res.Value)
	}

	a := res.Value.Anomalies[0]
	if a.Category != "groceries" || a.Amount != 800 || !a.Date.Equal(spikeDay) {
		t.Fatalf("unexpected anomaly entry %+v", a)
	}
	if a.ZScore <= 0 {
		t.Fatalf("spike above the mean must carry a positive signed z, got %v", a.ZScore)
	}
	if !strings.Contains(a.Reason, "σ away from normal pattern") {
		t.Fatalf("unexpected reason %q", a.Reason)
	}
}

func TestDetectAnomaliesOnlyRecentWindowScreened(t *testing.T) {
	d := NewAnomalyDetector(0)

	// The spike is the oldest of 12 transactions: outside the last-5 window,
	// so it must not be reported even though its z is extreme.
	txs := []core.Transaction{expense(daysAgo(40), 900, "dining")}
	for i := 11; i > 0; i-- {
		txs = append(txs, expense(daysAgo(i), 40, "dining"))
	}

	res := d.DetectAnomalies(txs)
	if !res.OK() {
		t.Fatalf("expected computed result")
	}
	if res.Value.Count != 0 {
		t.Fatalf("old spike must not be screened, got %+v", res.Value.Anomalies)
	}
}

func TestDetectAnomaliesIdenticalValuesNeverFlag(t *testing.T) {
	d := NewAnomalyDetector(0)

	var txs []core.Transaction
	for i := 0; i < 15; i++ {
		txs = append(txs, expense(daysAgo(i), 75, "subscriptions"))
	}

	res := d.DetectAnomalies(txs)
	if !res.OK() || res.Value.Count != 0 {
		t.Fatalf("identical values must never flag, got %+v", res.Value)
	}
}

func TestDetectAnomaliesSignedZ(t *testing.T) {
	d := NewAnomalyDetector(0)

	// A final near-zero value against a tight high history: z is negative
	// but |z| crosses the threshold.
	var txs []core.Transaction
	for i := 12; i > 0; i-- {
		txs = append(txs, expense(daysAgo(i), 200, "rent"))
	}
	// Tiny jitter so the deviation is non-zero.
	txs[0].Amount = core.Money{Cents: 20100}
	txs = append(txs, expense(daysAgo(0), 1, "rent"))

	res := d.DetectAnomalies(txs)
	if !res.OK() || res.Value.Count == 0 {
		t.Fatalf("expected a flagged drop, got %+v", res.Value)
	}
	if res.Value.Anomalies[0].ZScore >= 0 {
		t.Fatalf("drop below the mean must carry a negative z, got %v", res.Value.Anomalies[0].ZScore)
	}
}

func TestDetectAnomaliesCategoriesInLexicalOrder(t *testing.T) {
	d := NewAnomalyDetector(0)

	var txs []core.Transaction
	for _, cat := range []string{"zeta", "alpha"} {
		for i := 12; i > 0; i-- {
			txs = append(txs, expense(daysAgo(i), 30, cat))
		}
		txs = append(txs, expense(daysAgo(0), 500, cat))
	}

	res := d.DetectAnomalies(txs)
	if res.Value.Count != 2 {
		t.Fatalf("expected two anomalies, got %+v", res.Value)
	}
	if res.Value.Anomalies[0].Category != "alpha" || res.Value.Anomalies[1].Category != "zeta" {
		t.Fatalf("expected lexical category order, got %+v", res.Value.Anomalies)
	}
}

func TestDetectAnomaliesIncludesIncomeKind(t *testing.T) {
	d := NewAnomalyDetector(0)

	// The batch detector follows full category history regardless of kind.
	var txs []core.Transaction
	for i := 12; i > 0; i-- {
		txs = append(txs, income(daysAgo(i), 100, "salary"))
	}
	txs = append(txs, income(daysAgo(0), 5000, "salary"))

	res := d.DetectAnomalies(txs)
	if res.Value.Count != 1 {
		t.Fatalf("income transactions must be screened too, got %+v", res.Value)
	}
}
