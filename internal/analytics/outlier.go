package analytics

import (
	"math"
	"math/rand"
	"sort"
)

// Sequence-level outlier screen: an isolation ensemble over a 1-D amount
// sequence. It backs up the z-score strategies as an independent sanity
// check on whole sequences and is deliberately kept separate from them.

const (
	// outlierContamination is the expected fraction of isolated points.
	outlierContamination = 0.1

	// outlierSeed fixes the ensemble's randomness so identical input always
	// produces identical output.
	outlierSeed = 42

	outlierTrees      = 100
	outlierSampleSize = 64
)

// DetectOutliers reports whether an amount sequence contains at least one
// statistically isolated point, with a generic reason string when it does.
// Fewer than 3 points is never an outlier. Deterministic: the ensemble uses
// a fixed seed.
func DetectOutliers(xs []float64) (bool, string) {
	if len(xs) < minPointsPerCategory {
		return false, ""
	}

	scores := isolationScores(xs)

	// Flag points whose isolation score exceeds the (1 − contamination)
	// empirical quantile. Strictly-greater keeps uniform sequences clean:
	// identical values share one score and nothing is flagged.
	threshold := quantile(scores, 1-outlierContamination)
	for _, s := range scores {
		if s > threshold {
			return true, "Unusual spending pattern detected"
		}
	}
	return false, ""
}

// isolationScores computes the standard isolation-ensemble anomaly score
// 2^(−E[h(x)]/c(n)) for each point, where h is the isolation depth in a
// randomly split tree and c(n) the average unsuccessful-search path length.
func isolationScores(xs []float64) []float64 {
	rng := rand.New(rand.NewSource(outlierSeed))

	sample := len(xs)
	if sample > outlierSampleSize {
		sample = outlierSampleSize
	}

	depths := make([]float64, len(xs))
	for t := 0; t < outlierTrees; t++ {
		idx := rng.Perm(len(xs))[:sample]
		tree := buildIsolationTree(xs, idx, 0, maxTreeDepth(sample), rng)
		for i, x := range xs {
			depths[i] += tree.pathLength(x, 0)
		}
	}

	norm := avgPathLength(sample)
	scores := make([]float64, len(xs))
	for i := range xs {
		avgDepth := depths[i] / outlierTrees
		scores[i] = math.Pow(2, -avgDepth/norm)
	}
	return scores
}

type isoNode struct {
	split       float64
	left, right *isoNode
	size        int
}

func buildIsolationTree(xs []float64, idx []int, depth, limit int, rng *rand.Rand) *isoNode {
	if len(idx) <= 1 || depth >= limit {
		return &isoNode{size: len(idx)}
	}

	lo, hi := xs[idx[0]], xs[idx[0]]
	for _, i := range idx[1:] {
		if xs[i] < lo {
			lo = xs[i]
		}
		if xs[i] > hi {
			hi = xs[i]
		}
	}
	if lo == hi {
		return &isoNode{size: len(idx)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []int
	for _, i := range idx {
		if xs[i] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &isoNode{
		split: split,
		left:  buildIsolationTree(xs, left, depth+1, limit, rng),
		right: buildIsolationTree(xs, right, depth+1, limit, rng),
		size:  len(idx),
	}
}

func (n *isoNode) pathLength(x float64, depth int) float64 {
	if n.left == nil {
		return float64(depth) + avgPathLength(n.size)
	}
	if x < n.split {
		return n.left.pathLength(x, depth+1)
	}
	return n.right.pathLength(x, depth+1)
}

// avgPathLength is c(n), the expected unsuccessful-search path length of a
// binary search tree with n nodes.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	f := float64(n)
	harmonic := math.Log(f-1) + 0.5772156649
	return 2*harmonic - 2*(f-1)/f
}

func maxTreeDepth(sample int) int {
	if sample <= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(sample))))
}

// quantile returns the q-th empirical quantile with linear interpolation.
func quantile(xs []float64, q float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
