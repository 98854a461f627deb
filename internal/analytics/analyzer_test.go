package analytics

import (
	"testing"

	"finsight/internal/core"
)

func TestAnalyzeSpendingPatternsEmpty(t *testing.T) {
	a := testAnalyzer()
	patterns := a.AnalyzeSpendingPatterns(nil, 90)
	if len(patterns) != 0 {
		t.Fatalf("empty input must yield an empty map, got %+v", patterns)
	}
}

func TestAnalyzeSpendingPatternsWindowFilter(t *testing.T) {
	a := testAnalyzer()

	txs := []core.Transaction{
		expense(daysAgo(200), 999, "groceries"),
		expense(daysAgo(10), 100, "groceries"),
		expense(daysAgo(5), 100, "groceries"),
		expense(daysAgo(120), 300, "stale"),
	}
	patterns := a.AnalyzeSpendingPatterns(txs, 90)

	if _, found := patterns["stale"]; found {
		t.Fatalf("categories with no in-window expenses must be omitted")
	}
	g, found := patterns["groceries"]
	if !found {
		t.Fatalf("expected groceries pattern")
	}
	if !almostEqual(g.TotalSpent, 200) {
		t.Fatalf("out-of-window spend must not count: expected 200, got %v", g.TotalSpent)
	}
	if g.TransactionCount != 2 {
		t.Fatalf("expected 2 in-window transactions, got %d", g.TransactionCount)
	}
}

func TestAnalyzeSpendingPatternsMonthlyAverage(t *testing.T) {
	a := testAnalyzer()

	// Two 150 expenses over a 90-day window: mean 150 normalized by
	// 30/(90/30) gives a monthly average of 1500.
	txs := []core.Transaction{
		expense(daysAgo(20), 150, "dining"),
		expense(daysAgo(10), 150, "dining"),
	}
	patterns := a.AnalyzeSpendingPatterns(txs, 90)

	if !almostEqual(patterns["dining"].MonthlyAverage, 1500) {
		t.Fatalf("expected monthly average 1500, got %v", patterns["dining"].MonthlyAverage)
	}
}

func TestAnalyzeSpendingPatternsCountsAllKinds(t *testing.T) {
	a := testAnalyzer()

	// A refund posted as income in the same category counts toward the
	// transaction count but never toward spend.
	txs := []core.Transaction{
		expense(daysAgo(12), 80, "shopping"),
		expense(daysAgo(8), 90, "shopping"),
		income(daysAgo(4), 30, "shopping"),
	}
	patterns := a.AnalyzeSpendingPatterns(txs, 90)

	s := patterns["shopping"]
	if s.TransactionCount != 3 {
		t.Fatalf("expected count 3 across kinds, got %d", s.TransactionCount)
	}
	if !almostEqual(s.TotalSpent, 170) {
		t.Fatalf("income must not count as spend: expected 170, got %v", s.TotalSpent)
	}
}

func TestAnalyzeSpendingPatternsIncomeOnlyCategoryOmitted(t *testing.T) {
	a := testAnalyzer()

	txs := []core.Transaction{
		income(daysAgo(3), 4000, "salary"),
		expense(daysAgo(2), 50, "groceries"),
	}
	patterns := a.AnalyzeSpendingPatterns(txs, 90)

	if _, found := patterns["salary"]; found {
		t.Fatalf("income-only categories must be omitted, got %+v", patterns["salary"])
	}
}

func TestAnalyzeSpendingPatternsAnomalyReason(t *testing.T) {
	a := testAnalyzer()

	steady := []core.Transaction{
		expense(daysAgo(30), 50, "utilities"),
		expense(daysAgo(20), 52, "utilities"),
		expense(daysAgo(10), 48, "utilities"),
	}
	patterns := a.AnalyzeSpendingPatterns(steady, 90)
	u := patterns["utilities"]
	if u.AnomalyDetected {
		t.Fatalf("steady spending must not flag, got %+v", u)
	}
	if u.AnomalyReason != "" {
		t.Fatalf("reason must be empty when nothing is detected, got %q", u.AnomalyReason)
	}

	spiked := append(steady,
		expense(daysAgo(8), 51, "utilities"),
		expense(daysAgo(6), 49, "utilities"),
		expense(daysAgo(4), 50, "utilities"),
		expense(daysAgo(2), 400, "utilities"),
	)
	patterns = a.AnalyzeSpendingPatterns(spiked, 90)
	u = patterns["utilities"]
	if !u.AnomalyDetected {
		t.Fatalf("latest-value spike must flag, got %+v", u)
	}
	if u.AnomalyReason == "" {
		t.Fatalf("detected anomaly must carry a reason")
	}
}

func TestAnalyzeSpendingPatternsDefaultsWindow(t *testing.T) {
	a := testAnalyzer()

	txs := []core.Transaction{
		expense(daysAgo(10), 90, "misc"),
		expense(daysAgo(5), 90, "misc"),
	}
	explicit := a.AnalyzeSpendingPatterns(txs, DefaultPatternWindowDays)
	defaulted := a.AnalyzeSpendingPatterns(txs, 0)

	if !almostEqual(explicit["misc"].MonthlyAverage, defaulted["misc"].MonthlyAverage) {
		t.Fatalf("non-positive days must select the default window: %v vs %v",
			explicit["misc"].MonthlyAverage, defaulted["misc"].MonthlyAverage)
	}
}

func TestAnalyzeSpendingPatternsUncategorized(t *testing.T) {
	a := testAnalyzer()

	txs := []core.Transaction{
		expense(daysAgo(6), 40, ""),
		expense(daysAgo(3), 60, ""),
	}
	patterns := a.AnalyzeSpendingPatterns(txs, 90)
	if _, found := patterns[DefaultCategory]; !found {
		t.Fatalf("uncategorized expenses must land under %q, got %+v", DefaultCategory, patterns)
	}
}
