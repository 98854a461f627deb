package analytics

// trendChangeThreshold is the relative half-over-half change beyond which a
// sequence stops being STABLE.
const trendChangeThreshold = 0.1

// ClassifyTrend labels a chronological amount sequence UP, DOWN or STABLE by
// comparing the mean of its first half against the mean of its second half.
// On odd length the first half gets the smaller share. Fewer than 2 points
// is always STABLE; a non-positive first-half mean pins the change at zero.
func ClassifyTrend(xs []float64) Trend {
	if len(xs) < 2 {
		return TrendStable
	}

	mid := len(xs) / 2
	firstHalf := mean(xs[:mid])
	secondHalf := mean(xs[mid:])

	change := 0.0
	if firstHalf > 0 {
		change = (secondHalf - firstHalf) / firstHalf
	}

	switch {
	case change > trendChangeThreshold:
		return TrendUp
	case change < -trendChangeThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}
