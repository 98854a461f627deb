package analytics

import "math"

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdDev is the population standard deviation (divisor n, not n-1).
func stdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// linearTrend fits an ordinary-least-squares line over the sequence index
// (0..n-1) and returns slope and intercept. Fewer than 2 points yields a
// zero slope with the mean as intercept.
func linearTrend(xs []float64) (slope, intercept float64) {
	if len(xs) < 2 {
		return 0, mean(xs)
	}
	n := float64(len(xs))
	meanX := (n - 1) / 2
	meanY := mean(xs)
	var num, den float64
	for i, y := range xs {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0, meanY
	}
	slope = num / den
	return slope, meanY - slope*meanX
}
