package trial

import "encoding/json"

// Result is the immutable record of one completed trial. UserResponse is
// true for a "different" response and false for "same". ResponseTime is in
// seconds from trial presentation to the accepted response key.
type Result struct {
	TrialNumber     int     `json:"trial_number"`
	StimulusID      string  `json:"stimulus_id"`
	IsMirror        bool    `json:"is_mirror"`
	UserResponse    bool    `json:"user_response"`
	ResponseTime    float64 `json:"response_time"`
	IsCorrect       bool    `json:"is_correct"`
	RotationEnabled bool    `json:"rotation_enabled"`
	Disparity       float64 `json:"disparity"`
	InitialAngle    float64 `json:"initial_angle"`
}

// ResultLog is the ordered, append-only record of completed trials.
// Results are never mutated or removed after append.
type ResultLog struct {
	results []Result
}

// Append adds one completed trial in completion order.
func (l *ResultLog) Append(r Result) {
	l.results = append(l.results, r)
}

// Len returns the number of recorded trials.
func (l *ResultLog) Len() int { return len(l.results) }

// Results returns a copy of the recorded trials in completion order.
func (l *ResultLog) Results() []Result {
	out := make([]Result, len(l.results))
	copy(out, l.results)
	return out
}

// Serialize renders the log as an indented JSON array for the session
// results file.
func (l *ResultLog) Serialize() ([]byte, error) {
	if l.results == nil {
		return json.MarshalIndent([]Result{}, "", "  ")
	}
	return json.MarshalIndent(l.results, "", "  ")
}
