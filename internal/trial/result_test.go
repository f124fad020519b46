package trial

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultLogCopyIsolation(t *testing.T) {
	var l ResultLog
	l.Append(Result{TrialNumber: 1, StimulusID: "a"})

	got := l.Results()
	got[0].StimulusID = "mutated"

	assert.Equal(t, "a", l.Results()[0].StimulusID)
}

func TestResultLogSerializeEmpty(t *testing.T) {
	var l ResultLog
	data, err := l.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestResultLogSerializeFieldNames(t *testing.T) {
	var l ResultLog
	l.Append(Result{
		TrialNumber:     1,
		StimulusID:      "stim-1",
		IsMirror:        true,
		UserResponse:    true,
		ResponseTime:    2.5,
		IsCorrect:       true,
		RotationEnabled: true,
		Disparity:       42.5,
		InitialAngle:    120,
	})

	data, err := l.Serialize()
	require.NoError(t, err)

	for _, field := range []string{
		"trial_number", "stimulus_id", "is_mirror", "user_response",
		"response_time", "is_correct", "rotation_enabled", "disparity", "initial_angle",
	} {
		assert.Contains(t, string(data), `"`+field+`"`)
	}
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"), "two-space indent")

	var back []Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, l.Results(), back)
}
