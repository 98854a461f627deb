package analytics

import (
	"testing"
	"time"

	"finsight/internal/core"
)

func testAnalyzer() *Analyzer {
	a := NewAnalyzer(0)
	a.now = func() time.Time { return testNow }
	return a
}

func currentMonth(day int) time.Time {
	return time.Date(testNow.Year(), testNow.Month(), day, 0, 0, 0, 0, time.UTC)
}

func TestAnalyzeBudgetPerformanceOverBudget(t *testing.T) {
	a := testAnalyzer()

	txs := []core.Transaction{
		expense(currentMonth(3), 300, "groceries"),
		expense(currentMonth(10), 120, "groceries"),
	}
	perf := a.AnalyzeBudgetPerformance(txs, map[string]float64{"groceries": 400})

	st, found := perf["groceries"]
	if !found {
		t.Fatalf("expected groceries status")
	}
	if !almostEqual(st.Spent, 420) || !almostEqual(st.SpentPercent, 105) {
		t.Fatalf("expected spent 420 percent 105, got %+v", st)
	}
	if !almostEqual(st.Remaining, -20) {
		t.Fatalf("expected remaining -20, got %v", st.Remaining)
	}
	if st.Status != BudgetOver {
		t.Fatalf("expected OVER, got %s", st.Status)
	}
}

func TestAnalyzeBudgetPerformanceStatusPartition(t *testing.T) {
	a := testAnalyzer()

	cases := []struct {
		spent float64
		want  BudgetState
	}{
		{0, BudgetOnTrack},
		{79.99, BudgetOnTrack},
		{80, BudgetOnTrack}, // boundary: 80% is still on track
		{80.01, BudgetWarning},
		{100, BudgetWarning}, // boundary: exactly 100% is a warning
		{100.01, BudgetOver},
		{250, BudgetOver},
	}
	for _, tc := range cases {
		txs := []core.Transaction{expense(currentMonth(1), tc.spent, "dining")}
		perf := a.AnalyzeBudgetPerformance(txs, map[string]float64{"dining": 100})
		if got := perf["dining"].Status; got != tc.want {
			t.Fatalf("spent %v: expected %s, got %s", tc.spent, tc.want, got)
		}
	}
}

func TestAnalyzeBudgetPerformanceExactMonthMatch(t *testing.T) {
	a := testAnalyzer()

	txs := []core.Transaction{
		// Same month last year, and last month: both excluded.
		expense(currentMonth(5).AddDate(-1, 0, 0), 500, "travel"),
		expense(currentMonth(5).AddDate(0, -1, 0), 500, "travel"),
		expense(currentMonth(5), 50, "travel"),
	}
	perf := a.AnalyzeBudgetPerformance(txs, map[string]float64{"travel": 200})
	if !almostEqual(perf["travel"].Spent, 50) {
		t.Fatalf("expected only current-month spend 50, got %v", perf["travel"].Spent)
	}
}

func TestAnalyzeBudgetPerformanceIgnoresIncome(t *testing.T) {
	a := testAnalyzer()

	txs := []core.Transaction{
		income(currentMonth(1), 5000, "groceries"),
		expense(currentMonth(2), 100, "groceries"),
	}
	perf := a.AnalyzeBudgetPerformance(txs, map[string]float64{"groceries": 400})
	if !almostEqual(perf["groceries"].Spent, 100) {
		t.Fatalf("income must not count as spend, got %v", perf["groceries"].Spent)
	}
}

func TestAnalyzeBudgetPerformanceZeroBudget(t *testing.T) {
	a := testAnalyzer()

	txs := []core.Transaction{expense(currentMonth(1), 75, "misc")}
	perf := a.AnalyzeBudgetPerformance(txs, map[string]float64{"misc": 0})

	st := perf["misc"]
	if st.SpentPercent != 0 {
		t.Fatalf("non-positive budget pins spent_percent at 0, got %v", st.SpentPercent)
	}
	if !almostEqual(st.Remaining, -75) {
		t.Fatalf("expected remaining -75, got %v", st.Remaining)
	}
}

func TestAnalyzeBudgetPerformanceUnbudgetedCategorySkipped(t *testing.T) {
	a := testAnalyzer()

	txs := []core.Transaction{expense(currentMonth(1), 75, "misc")}
	perf := a.AnalyzeBudgetPerformance(txs, map[string]float64{"groceries": 100})

	if _, found := perf["misc"]; found {
		t.Fatalf("categories absent from the budget map must not be evaluated")
	}
	if st := perf["groceries"]; st.Spent != 0 || st.Status != BudgetOnTrack {
		t.Fatalf("budgeted category with no spend: expected zero ON_TRACK, got %+v", st)
	}
}
