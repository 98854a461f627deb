package analytics

import "testing"

func TestDetectOutliersTooFewPoints(t *testing.T) {
	detected, reason := DetectOutliers([]float64{10, 2000})
	if detected || reason != "" {
		t.Fatalf("fewer than 3 points must never flag, got %v %q", detected, reason)
	}
}

func TestDetectOutliersUniformSequence(t *testing.T) {
	xs := []float64{50, 50, 50, 50, 50, 50, 50, 50}
	if detected, _ := DetectOutliers(xs); detected {
		t.Fatalf("identical values must never flag")
	}
}

func TestDetectOutliersIsolatedSpike(t *testing.T) {
	xs := []float64{50, 50, 50, 50, 50, 50, 50, 50, 50, 1000}
	detected, reason := DetectOutliers(xs)
	if !detected {
		t.Fatalf("expected the isolated spike to flag")
	}
	if reason != "Unusual spending pattern detected" {
		t.Fatalf("unexpected reason %q", reason)
	}
}

func TestDetectOutliersDeterministic(t *testing.T) {
	xs := []float64{12, 75, 60, 33, 41, 800, 55, 47, 62, 58}
	first, _ := DetectOutliers(xs)
	for i := 0; i < 5; i++ {
		got, _ := DetectOutliers(xs)
		if got != first {
			t.Fatalf("detection must be deterministic across calls")
		}
	}
}

func TestIsolationScoresRange(t *testing.T) {
	scores := isolationScores([]float64{10, 20, 30, 40, 500})
	for i, s := range scores {
		if s <= 0 || s >= 1 {
			t.Fatalf("score %d out of (0, 1): %v", i, s)
		}
	}
	// The extreme point isolates earliest and must score highest.
	max := 0
	for i, s := range scores {
		if s > scores[max] {
			max = i
		}
	}
	if max != 4 {
		t.Fatalf("expected the extreme point to score highest, got index %d", max)
	}
}
