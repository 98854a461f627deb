package analytics

import (
	"testing"

	"finsight/internal/core"
)

func TestPredictSpendingInsufficientHistory(t *testing.T) {
	p := NewPredictor()

	txs := []core.Transaction{
		expense(daysAgo(3), 50, "groceries"),
		expense(daysAgo(2), 60, "groceries"),
		expense(daysAgo(1), 55, "groceries"),
		expense(daysAgo(0), 52, "groceries"),
	}
	res := p.PredictSpending(txs)
	if res.OK() {
		t.Fatalf("expected insufficient history below 5 transactions")
	}
	if res.Kind != ErrorInsufficientData {
		t.Fatalf("expected ErrorInsufficientData, got %v", res.Kind)
	}
	if len(res.Value.PredictedSpending) != 0 || len(res.Value.Confidence) != 0 {
		t.Fatalf("default value must carry empty maps, got %+v", res.Value)
	}
}

func TestPredictSpendingSkipsThinCategories(t *testing.T) {
	p := NewPredictor()

	txs := []core.Transaction{
		expense(daysAgo(5), 50, "groceries"),
		expense(daysAgo(4), 60, "groceries"),
		expense(daysAgo(3), 55, "groceries"),
		expense(daysAgo(2), 52, "groceries"),
		expense(daysAgo(1), 900, "one-off"),
	}
	res := p.PredictSpending(txs)
	if !res.OK() {
		t.Fatalf("expected computed result, got %v", res.Kind)
	}
	if _, found := res.Value.PredictedSpending["one-off"]; found {
		t.Fatalf("single-transaction categories must be skipped, not estimated")
	}
	if _, found := res.Value.PredictedSpending["groceries"]; !found {
		t.Fatalf("expected a groceries prediction")
	}
}

func TestPredictSpendingNonNegative(t *testing.T) {
	p := NewPredictor()

	// Collapsing spend drives the linear projection negative; the estimate
	// must still clamp at zero.
	txs := []core.Transaction{
		expense(daysAgo(6), 900, "dining"),
		expense(daysAgo(5), 500, "dining"),
		expense(daysAgo(4), 100, "dining"),
		expense(daysAgo(3), 5, "dining"),
		expense(daysAgo(2), 1, "dining"),
		expense(daysAgo(1), 1, "dining"),
	}
	res := p.PredictSpending(txs)
	for category, amount := range res.Value.PredictedSpending {
		if amount < 0 {
			t.Fatalf("%s: negative prediction %v", category, amount)
		}
	}
}

func TestPredictSpendingConfidenceBounds(t *testing.T) {
	p := NewPredictor()

	txs := []core.Transaction{
		expense(daysAgo(9), 10, "a"),
		expense(daysAgo(8), 2000, "a"),
		expense(daysAgo(7), 15, "a"),
		expense(daysAgo(6), 3000, "a"),
		expense(daysAgo(5), 70, "b"),
		expense(daysAgo(4), 70, "b"),
		expense(daysAgo(3), 70, "b"),
	}
	res := p.PredictSpending(txs)
	for category, c := range res.Value.Confidence {
		if c < 0.3 || c > 1.0 {
			t.Fatalf("%s: confidence out of [0.3, 1.0]: %v", category, c)
		}
	}
	if res.Value.Confidence["b"] <= res.Value.Confidence["a"] {
		t.Fatalf("consistent spending must score higher confidence: %+v", res.Value.Confidence)
	}
}

func TestPredictSpendingUsesChronologicalOrder(t *testing.T) {
	p := NewPredictor()

	// Same data, shuffled input order: grouping sorts by date, so the
	// recency-weighted estimate is identical.
	ordered := []core.Transaction{
		expense(daysAgo(5), 10, "x"),
		expense(daysAgo(4), 20, "x"),
		expense(daysAgo(3), 30, "x"),
		expense(daysAgo(2), 40, "x"),
		expense(daysAgo(1), 50, "x"),
	}
	shuffled := []core.Transaction{ordered[3], ordered[0], ordered[4], ordered[2], ordered[1]}

	a := p.PredictSpending(ordered)
	b := p.PredictSpending(shuffled)
	if a.Value.PredictedSpending["x"] != b.Value.PredictedSpending["x"] {
		t.Fatalf("prediction must not depend on input order: %v vs %v",
			a.Value.PredictedSpending["x"], b.Value.PredictedSpending["x"])
	}
}
