// Package rotation tracks the interactive rotation a participant applies to
// the comparison figure during one trial.
package rotation

import "math"

// DragSensitivity converts pointer-drag pixels into degrees of rotation.
const DragSensitivity = 0.5

// State accumulates signed rotation around the X and Y axes in degrees.
// There is no axis wraparound: sustained dragging can push either
// accumulator past ±360°.
type State struct {
	rotX float64
	rotY float64
}

// ApplyDrag folds one pointer-drag delta (in pixels) into the accumulators.
// Horizontal motion turns the figure about Y, vertical motion about X.
func (s *State) ApplyDrag(dx, dy float64) {
	s.rotY += dx * DragSensitivity
	s.rotX += dy * DragSensitivity
}

// Reset zeroes both accumulators. Called exactly once per trial transition,
// before the next trial's first input is processed.
func (s *State) Reset() {
	s.rotX = 0
	s.rotY = 0
}

// Angles returns the accumulated X and Y rotation in degrees.
func (s *State) Angles() (rotX, rotY float64) {
	return s.rotX, s.rotY
}

// Disparity returns the scalar disparity for this state's accumulators.
func (s *State) Disparity() float64 {
	return Disparity(s.rotX, s.rotY)
}

// Disparity returns the Euclidean norm of the two accumulated rotations.
// This is a proxy for how much the participant rotated, not the angle of the
// composed 3-D rotation; the formula is kept for compatibility with
// previously recorded sessions.
func Disparity(rotX, rotY float64) float64 {
	return math.Sqrt(rotX*rotX + rotY*rotY)
}
