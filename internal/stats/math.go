// Package stats holds the shared statistical helpers: moments, percentiles,
// and the bootstrap confidence-interval estimator used by every rate table.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev returns the sample standard deviation (n-1 denominator), or 0 when
// fewer than two values are present.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// MeanStddev computes the mean and sample standard deviation in one pass
// over the callers' slice.
func MeanStddev(xs []float64) (mean, stddev float64) {
	return Mean(xs), StdDev(xs)
}

// PopStdDev returns the population standard deviation (n denominator), or 0
// for an empty slice. Used where the values are the whole population, such
// as the per-coder spread within one contract.
func PopStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.PopStdDev(xs, nil)
}

// Min returns the smallest value, or 0 for an empty slice.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	min := xs[0]
	for _, v := range xs[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value, or 0 for an empty slice.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	max := xs[0]
	for _, v := range xs[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Percentile returns the p-th percentile (0-100) of an ascending-sorted
// slice using linear interpolation between order statistics.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Indicators converts outcome booleans into 0/1 observations for resampling.
func Indicators(bs []bool) []float64 {
	out := make([]float64, len(bs))
	for i, b := range bs {
		if b {
			out[i] = 1
		}
	}
	return out
}
