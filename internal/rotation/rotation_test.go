package rotation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDragSensitivity(t *testing.T) {
	var s State
	s.ApplyDrag(10, -4)

	rotX, rotY := s.Angles()
	assert.Equal(t, -2.0, rotX) // dy * 0.5
	assert.Equal(t, 5.0, rotY)  // dx * 0.5
}

func TestAccumulationIsUnbounded(t *testing.T) {
	var s State
	for i := 0; i < 200; i++ {
		s.ApplyDrag(10, 10)
	}

	rotX, rotY := s.Angles()
	assert.Equal(t, 1000.0, rotX)
	assert.Equal(t, 1000.0, rotY)
}

func TestReset(t *testing.T) {
	var s State
	s.ApplyDrag(123, -456)
	s.Reset()

	rotX, rotY := s.Angles()
	assert.Zero(t, rotX)
	assert.Zero(t, rotY)
	assert.Zero(t, s.Disparity())
}

func TestDisparity(t *testing.T) {
	tests := []struct {
		name       string
		rotX, rotY float64
		want       float64
	}{
		{"no rotation", 0, 0, 0},
		{"single axis", 90, 0, 90},
		{"both axes", 3, 4, 5},
		{"negative angles", -3, -4, 5},
		{"past full turn", 400, 300, 500},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Disparity(tc.rotX, tc.rotY), 1e-12)
		})
	}
}

func TestStateDisparityMatchesFunction(t *testing.T) {
	var s State
	s.ApplyDrag(14, 6)
	rotX, rotY := s.Angles()
	assert.Equal(t, Disparity(rotX, rotY), s.Disparity())
	assert.InDelta(t, math.Sqrt(rotX*rotX+rotY*rotY), s.Disparity(), 1e-12)
}
