package stats

import (
	"errors"
	"math/rand"
	"sort"
)

// ErrInsufficientData marks a grouping with zero eligible observations.
// Callers report such groupings as "no data" rather than a fabricated zero.
var ErrInsufficientData = errors.New("insufficient data")

// Interval is a bootstrap percentile confidence interval around a point
// estimate computed from N underlying observation units.
type Interval struct {
	Point float64 `json:"point"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	N     int     `json:"n"`
}

// Degenerate reports whether the interval collapsed to its point estimate
// because only one observation was available.
func (iv Interval) Degenerate() bool {
	return iv.N <= 1
}

// Scale returns a copy with Point, Lower, and Upper multiplied by f. Report
// tables use it to express fraction intervals in percent.
func (iv Interval) Scale(f float64) Interval {
	iv.Point *= f
	iv.Lower *= f
	iv.Upper *= f
	return iv
}

// Estimator resamples observation units with replacement and reports
// percentile confidence intervals. Each call derives a fresh RNG from Seed,
// so results do not depend on the order in which intervals are computed.
type Estimator struct {
	Iterations int
	Seed       int64
	Confidence float64
}

// DefaultEstimator matches the historical analysis settings: 1000 resamples,
// seed 42, 95% confidence.
func DefaultEstimator() Estimator {
	return Estimator{Iterations: 1000, Seed: 42, Confidence: 0.95}
}

// MeanInterval bootstraps the mean of the units. This is the common case:
// agreement and miss rates are means over 0/1 outcome indicators.
func (e Estimator) MeanInterval(units []float64) (Interval, error) {
	return e.Interval(units, Mean)
}

// Interval bootstraps an arbitrary statistic over the units. Zero units
// returns ErrInsufficientData; a single unit returns a degenerate interval
// equal to the point estimate.
func (e Estimator) Interval(units []float64, statistic func([]float64) float64) (Interval, error) {
	n := len(units)
	if n == 0 {
		return Interval{}, ErrInsufficientData
	}
	point := statistic(units)
	if n == 1 {
		return Interval{Point: point, Lower: point, Upper: point, N: 1}, nil
	}

	iterations := e.Iterations
	if iterations <= 0 {
		iterations = 1000
	}
	confidence := e.Confidence
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}

	rng := rand.New(rand.NewSource(e.Seed))
	resample := make([]float64, n)
	draws := make([]float64, iterations)
	for i := 0; i < iterations; i++ {
		for j := range resample {
			resample[j] = units[rng.Intn(n)]
		}
		draws[i] = statistic(resample)
	}
	sort.Float64s(draws)

	alpha := 1 - confidence
	return Interval{
		Point: point,
		Lower: Percentile(draws, alpha/2*100),
		Upper: Percentile(draws, (1-alpha/2)*100),
		N:     n,
	}, nil
}
