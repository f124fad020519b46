package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cogmotion/rotation.report/internal/trial"
)

// Comparison contrasts the rotation and no-rotation conditions: mean
// response times, error rates, and a Welch t-test on response times. When
// either condition has fewer than two trials the test is degenerate
// (TStat=0, PValue=1).
type Comparison struct {
	MeanTimeRotation    float64 `json:"mean_time_rotation"`
	MeanTimeNoRotation  float64 `json:"mean_time_no_rotation"`
	ErrorRateRotation   float64 `json:"error_rate_rotation"`
	ErrorRateNoRotation float64 `json:"error_rate_no_rotation"`
	TStat               float64 `json:"t_stat"`
	PValue              float64 `json:"p_value"`
}

// CompareConditions contrasts physical-rotation trials with rotation-locked
// trials over one session's results.
func CompareConditions(results []trial.Result) Comparison {
	var timesRot, timesNoRot []float64
	var errRot, errNoRot, nRot, nNoRot float64
	for _, r := range results {
		if r.RotationEnabled {
			timesRot = append(timesRot, r.ResponseTime)
			nRot++
			if !r.IsCorrect {
				errRot++
			}
		} else {
			timesNoRot = append(timesNoRot, r.ResponseTime)
			nNoRot++
			if !r.IsCorrect {
				errNoRot++
			}
		}
	}

	var c Comparison
	c.MeanTimeRotation, _ = stats.Mean(timesRot)
	c.MeanTimeNoRotation, _ = stats.Mean(timesNoRot)
	if nRot > 0 {
		c.ErrorRateRotation = errRot / nRot
	}
	if nNoRot > 0 {
		c.ErrorRateNoRotation = errNoRot / nNoRot
	}
	c.TStat, c.PValue = welchTTest(timesRot, timesNoRot)
	return c
}

// welchTTest runs a two-sided Welch t-test between two samples with
// unequal variances, returning (0, 1) when either sample is too small or
// both variances are zero.
func welchTTest(a, b []float64) (tStat, pValue float64) {
	if len(a) < 2 || len(b) < 2 {
		return 0, 1
	}

	meanA, _ := stats.Mean(a)
	meanB, _ := stats.Mean(b)
	varA, _ := stats.SampleVariance(a)
	varB, _ := stats.SampleVariance(b)

	na, nb := float64(len(a)), float64(len(b))
	se := varA/na + varB/nb
	if se <= 0 {
		return 0, 1
	}

	tStat = (meanA - meanB) / math.Sqrt(se)

	// Welch-Satterthwaite degrees of freedom.
	df := se * se / (varA*varA/(na*na*(na-1)) + varB*varB/(nb*nb*(nb-1)))
	if math.IsNaN(df) || df <= 0 {
		return 0, 1
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue = 2 * dist.CDF(-math.Abs(tStat))
	return tStat, pValue
}
