package stats

import (
	"errors"
	"math"
	"testing"
)

func alternating(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		if i%2 == 0 {
			xs[i] = 1
		}
	}
	return xs
}

func TestMeanIntervalContainsPoint(t *testing.T) {
	e := DefaultEstimator()
	units := alternating(20)

	iv, err := e.MeanInterval(units)
	if err != nil {
		t.Fatalf("MeanInterval: %v", err)
	}
	if iv.Point != 0.5 {
		t.Errorf("point = %v, want 0.5", iv.Point)
	}
	if iv.Lower > iv.Point || iv.Upper < iv.Point {
		t.Errorf("interval [%v, %v] does not contain point %v", iv.Lower, iv.Upper, iv.Point)
	}
	if iv.N != 20 {
		t.Errorf("N = %d, want 20", iv.N)
	}
}

func TestMeanIntervalWidthShrinks(t *testing.T) {
	e := DefaultEstimator()

	small, err := e.MeanInterval(alternating(20))
	if err != nil {
		t.Fatalf("MeanInterval(n=20): %v", err)
	}
	large, err := e.MeanInterval(alternating(80))
	if err != nil {
		t.Fatalf("MeanInterval(n=80): %v", err)
	}

	smallWidth := small.Upper - small.Lower
	largeWidth := large.Upper - large.Lower
	if largeWidth >= smallWidth {
		t.Errorf("interval width should shrink with n: n=20 width %v, n=80 width %v", smallWidth, largeWidth)
	}
}

func TestIntervalDeterministic(t *testing.T) {
	e := Estimator{Iterations: 500, Seed: 42, Confidence: 0.95}
	units := []float64{0, 1, 1, 0, 1, 1, 1, 0, 0, 1}

	a, err := e.MeanInterval(units)
	if err != nil {
		t.Fatalf("MeanInterval: %v", err)
	}
	b, err := e.MeanInterval(units)
	if err != nil {
		t.Fatalf("MeanInterval: %v", err)
	}
	if a != b {
		t.Errorf("same seed should reproduce the interval: %+v vs %+v", a, b)
	}

	other := Estimator{Iterations: 500, Seed: 7, Confidence: 0.95}
	c, err := other.MeanInterval(units)
	if err != nil {
		t.Fatalf("MeanInterval: %v", err)
	}
	if a.Point != c.Point {
		t.Errorf("point estimate must not depend on seed: %v vs %v", a.Point, c.Point)
	}
}

func TestIntervalDegenerateCases(t *testing.T) {
	e := DefaultEstimator()

	if _, err := e.MeanInterval(nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty units: err = %v, want ErrInsufficientData", err)
	}

	iv, err := e.MeanInterval([]float64{0.7})
	if err != nil {
		t.Fatalf("single unit: %v", err)
	}
	if iv.Point != 0.7 || iv.Lower != 0.7 || iv.Upper != 0.7 {
		t.Errorf("single unit interval = %+v, want degenerate at 0.7", iv)
	}
	if !iv.Degenerate() {
		t.Errorf("single unit interval should report Degenerate")
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{25, 1.75},
		{50, 2.5},
		{100, 4},
	}
	for _, tt := range tests {
		if got := Percentile(sorted, tt.p); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if !math.IsNaN(Percentile(nil, 50)) {
		t.Errorf("Percentile of empty slice should be NaN")
	}
	if got := Percentile([]float64{5}, 97.5); got != 5 {
		t.Errorf("Percentile of single value = %v, want 5", got)
	}
}

func TestMeanStddev(t *testing.T) {
	mean, stddev := MeanStddev([]float64{1, 2, 3, 4})
	if math.Abs(mean-2.5) > 1e-12 {
		t.Errorf("mean = %v, want 2.5", mean)
	}
	want := math.Sqrt(5.0 / 3.0)
	if math.Abs(stddev-want) > 1e-12 {
		t.Errorf("stddev = %v, want %v", stddev, want)
	}

	mean, stddev = MeanStddev([]float64{3})
	if mean != 3 || stddev != 0 {
		t.Errorf("single value: mean=%v stddev=%v, want 3, 0", mean, stddev)
	}

	mean, stddev = MeanStddev(nil)
	if mean != 0 || stddev != 0 {
		t.Errorf("empty: mean=%v stddev=%v, want zeros", mean, stddev)
	}
}

func TestIndicators(t *testing.T) {
	got := Indicators([]bool{true, false, true})
	want := []float64{1, 0, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Indicators[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPopStdDev(t *testing.T) {
	// Population denominator: sqrt(mean of squared deviations).
	got := PopStdDev([]float64{1, 2, 3, 4})
	want := math.Sqrt(5.0 / 4.0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("PopStdDev = %v, want %v", got, want)
	}
	if PopStdDev(nil) != 0 {
		t.Error("PopStdDev(nil) should be 0")
	}
}

func TestIntervalScale(t *testing.T) {
	iv := Interval{Point: 0.25, Lower: 0.1, Upper: 0.4, N: 8}
	scaled := iv.Scale(100)
	if scaled.Point != 25 || scaled.Lower != 10 || scaled.Upper != 40 {
		t.Errorf("Scale(100) = %+v", scaled)
	}
	if scaled.N != 8 {
		t.Errorf("Scale changed N to %d", scaled.N)
	}
	if iv.Point != 0.25 {
		t.Error("Scale mutated the receiver")
	}
}
