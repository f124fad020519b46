// Package analysis computes the Angular Disparity Effect over a session's
// result log: Pearson correlation and an ordinary-least-squares fit of
// response time on initial angular disparity, partitioned by correctness and
// optionally by rotation condition.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cogmotion/rotation.report/internal/trial"
)

// Fit is the regression result for one partition. Partitions with fewer
// than two samples (or no variance in angle) carry the neutral fit
// (r=0, p=1, slope=0, intercept=0) rather than an error.
type Fit struct {
	Correlation float64 `json:"correlation"`
	PValue      float64 `json:"p_value"`
	Slope       float64 `json:"slope"`
	Intercept   float64 `json:"intercept"`
	N           int     `json:"n"`
}

// Group identifies one cell of the correctness x rotation partition.
type Group struct {
	Correct         bool `json:"correct"`
	RotationEnabled bool `json:"rotation_enabled"`
}

// FitSamples regresses response times on initial angles.
func FitSamples(angles, times []float64) Fit {
	n := len(angles)
	if n < 2 || n != len(times) {
		return Fit{PValue: 1, N: n}
	}

	r := stat.Correlation(angles, times, nil)
	intercept, slope := stat.LinearRegression(angles, times, nil, false)
	if math.IsNaN(r) || math.IsNaN(slope) {
		// Zero variance in angle: the correlation is undefined, so use
		// the same neutral fit as undersized partitions.
		return Fit{PValue: 1, N: n}
	}

	// Two-sided t-test on r. With n == 2 there are zero degrees of
	// freedom, so the p-value stays at 1.
	p := 1.0
	if n > 2 {
		if 1-r*r < 1e-12 {
			p = 0
		} else {
			t := r * math.Sqrt(float64(n-2)/(1-r*r))
			dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
			p = 2 * dist.CDF(-math.Abs(t))
		}
	}

	return Fit{
		Correlation: r,
		PValue:      p,
		Slope:       slope,
		Intercept:   intercept,
		N:           n,
	}
}

// FitResults regresses one slice of trial results.
func FitResults(results []trial.Result) Fit {
	angles := make([]float64, len(results))
	times := make([]float64, len(results))
	for i, r := range results {
		angles[i] = r.InitialAngle
		times[i] = r.ResponseTime
	}
	return FitSamples(angles, times)
}

// ByCorrectness partitions results into correct and incorrect responses and
// fits each partition. Both keys are always present.
func ByCorrectness(results []trial.Result) map[bool]Fit {
	parts := map[bool][]trial.Result{true: nil, false: nil}
	for _, r := range results {
		parts[r.IsCorrect] = append(parts[r.IsCorrect], r)
	}
	fits := make(map[bool]Fit, 2)
	for correct, rs := range parts {
		fits[correct] = FitResults(rs)
	}
	return fits
}

// ByCorrectnessAndRotation crosses the correctness split with the rotation
// condition. All four cells are always present.
func ByCorrectnessAndRotation(results []trial.Result) map[Group]Fit {
	parts := map[Group][]trial.Result{
		{Correct: true, RotationEnabled: true}:   nil,
		{Correct: true, RotationEnabled: false}:  nil,
		{Correct: false, RotationEnabled: true}:  nil,
		{Correct: false, RotationEnabled: false}: nil,
	}
	for _, r := range results {
		k := Group{Correct: r.IsCorrect, RotationEnabled: r.RotationEnabled}
		parts[k] = append(parts[k], r)
	}
	fits := make(map[Group]Fit, 4)
	for k, rs := range parts {
		fits[k] = FitResults(rs)
	}
	return fits
}
