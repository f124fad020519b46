package analysis

import (
	"github.com/montanaflynn/stats"

	"github.com/cogmotion/rotation.report/internal/trial"
)

// GroupAccuracy is the hit rate within one rotation condition.
type GroupAccuracy struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Summary aggregates one session: overall and per-condition accuracy plus
// mean response time and mean disparity. Accuracy values are fractions in
// [0, 1].
type Summary struct {
	Total            int           `json:"total"`
	Correct          int           `json:"correct"`
	Accuracy         float64       `json:"accuracy"`
	WithRotation     GroupAccuracy `json:"with_rotation"`
	WithoutRotation  GroupAccuracy `json:"without_rotation"`
	MeanResponseTime float64       `json:"mean_response_time"`
	MeanDisparity    float64       `json:"mean_disparity"`
}

// Summarize computes the session summary. An empty result set yields the
// zero Summary.
func Summarize(results []trial.Result) Summary {
	var s Summary
	if len(results) == 0 {
		return s
	}

	times := make([]float64, 0, len(results))
	disparities := make([]float64, 0, len(results))
	for _, r := range results {
		s.Total++
		if r.IsCorrect {
			s.Correct++
		}
		group := &s.WithoutRotation
		if r.RotationEnabled {
			group = &s.WithRotation
		}
		group.Total++
		if r.IsCorrect {
			group.Correct++
		}
		times = append(times, r.ResponseTime)
		disparities = append(disparities, r.Disparity)
	}

	s.Accuracy = float64(s.Correct) / float64(s.Total)
	for _, g := range []*GroupAccuracy{&s.WithRotation, &s.WithoutRotation} {
		if g.Total > 0 {
			g.Accuracy = float64(g.Correct) / float64(g.Total)
		}
	}

	// Errors only fire on empty input, which is excluded above.
	s.MeanResponseTime, _ = stats.Mean(times)
	s.MeanDisparity, _ = stats.Mean(disparities)
	return s
}
