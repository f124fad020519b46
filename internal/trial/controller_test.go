package trial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogmotion/rotation.report/internal/stimulus"
)

func makePlan(n int, rotationEnabled bool) []Trial {
	plan := make([]Trial, n)
	for i := range plan {
		plan[i] = Trial{
			Stimulus:        stimulus.Stimulus{ID: string(rune('a' + i)), Angle: float64(20 * i)},
			RotationEnabled: rotationEnabled,
			IsMirror:        i%2 == 0,
		}
	}
	return plan
}

// fakeClock advances by a fixed step on every reading.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (f *fakeClock) now() time.Time {
	f.t = f.t.Add(f.step)
	return f.t
}

func TestCorrectnessCombinations(t *testing.T) {
	tests := []struct {
		name        string
		isMirror    bool
		event       EventKind
		wantCorrect bool
	}{
		{"same on non-mirrored", false, EventSame, true},
		{"different on non-mirrored", false, EventDifferent, false},
		{"same on mirrored", true, EventSame, false},
		{"different on mirrored", true, EventDifferent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := []Trial{{Stimulus: stimulus.Stimulus{ID: "x"}, IsMirror: tt.isMirror}}
			c := NewController(plan)
			c.Start()
			c.Handle(Event{Kind: tt.event})

			results := c.Results()
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantCorrect, results[0].IsCorrect)
			assert.Equal(t, tt.event == EventDifferent, results[0].UserResponse)
			assert.Equal(t, tt.isMirror, results[0].IsMirror)
		})
	}
}

func TestResponseTimeFromClock(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: 250 * time.Millisecond}
	c := NewController(makePlan(2, false))
	c.now = clock.now

	c.Start()
	c.Handle(Event{Kind: EventSame})
	c.Handle(Event{Kind: EventSame})

	results := c.Results()
	require.Len(t, results, 2)
	// one clock step elapses between each stamp and the following response
	assert.InDelta(t, 0.25, results[0].ResponseTime, 1e-9)
	assert.InDelta(t, 0.25, results[1].ResponseTime, 1e-9)
}

func TestRotationResetBetweenTrials(t *testing.T) {
	c := NewController(makePlan(2, true))
	c.Start()

	c.Handle(Event{Kind: EventPointerDown})
	c.Handle(Event{Kind: EventPointerMove, DX: 6, DY: 8})
	c.Handle(Event{Kind: EventPointerUp})
	c.Handle(Event{Kind: EventDifferent})

	rotX, rotY := c.RotationAngles()
	assert.Zero(t, rotX, "accumulator carries into next trial")
	assert.Zero(t, rotY)

	c.Handle(Event{Kind: EventSame})

	results := c.Results()
	require.Len(t, results, 2)
	assert.InDelta(t, 5.0, results[0].Disparity, 1e-9) // sqrt(3^2+4^2)
	assert.Zero(t, results[1].Disparity)
}

func TestDragIgnoredWhenRotationDisabled(t *testing.T) {
	c := NewController(makePlan(1, false))
	c.Start()

	c.Handle(Event{Kind: EventPointerDown})
	c.Handle(Event{Kind: EventPointerMove, DX: 100, DY: 100})

	rotX, rotY := c.RotationAngles()
	assert.Zero(t, rotX)
	assert.Zero(t, rotY)

	c.Handle(Event{Kind: EventSame})
	results := c.Results()
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Disparity)
	assert.False(t, results[0].RotationEnabled)
}

func TestMoveWithoutPointerDownIgnored(t *testing.T) {
	c := NewController(makePlan(1, true))
	c.Start()

	c.Handle(Event{Kind: EventPointerMove, DX: 10, DY: 10})

	rotX, rotY := c.RotationAngles()
	assert.Zero(t, rotX)
	assert.Zero(t, rotY)
}

func TestDragEndsOnPointerUp(t *testing.T) {
	c := NewController(makePlan(1, true))
	c.Start()

	c.Handle(Event{Kind: EventPointerDown})
	c.Handle(Event{Kind: EventPointerMove, DX: 2, DY: 0})
	c.Handle(Event{Kind: EventPointerUp})
	c.Handle(Event{Kind: EventPointerMove, DX: 2, DY: 0})

	_, rotY := c.RotationAngles()
	assert.InDelta(t, 1.0, rotY, 1e-9, "only the first move applies")
}

func TestAbortKeepsRecordedResults(t *testing.T) {
	c := NewController(makePlan(10, false))
	c.Start()

	for i := 0; i < 4; i++ {
		c.Handle(Event{Kind: EventSame})
	}
	c.Handle(Event{Kind: EventAbort})

	assert.Equal(t, StateAborted, c.State())
	results := c.Results()
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, i+1, r.TrialNumber)
	}
}

func TestCompletesAfterLastTrial(t *testing.T) {
	c := NewController(makePlan(3, false))
	c.Start()

	for i := 0; i < 3; i++ {
		assert.Equal(t, StatePresenting, c.State())
		c.Handle(Event{Kind: EventDifferent})
	}
	assert.Equal(t, StateCompleted, c.State())

	_, ok := c.Current()
	assert.False(t, ok)
}

func TestEventsIgnoredAfterSessionEnds(t *testing.T) {
	c := NewController(makePlan(1, false))
	c.Start()
	c.Handle(Event{Kind: EventSame})
	require.Equal(t, StateCompleted, c.State())

	c.Handle(Event{Kind: EventSame})
	c.Handle(Event{Kind: EventAbort})

	assert.Equal(t, StateCompleted, c.State())
	assert.Len(t, c.Results(), 1)
}

func TestEmptyPlanCompletesImmediately(t *testing.T) {
	c := NewController(nil)
	assert.Equal(t, StateCompleted, c.State())
	assert.Empty(t, c.Results())
}

func TestTrialNumberAndInitialAngle(t *testing.T) {
	plan := makePlan(3, false)
	c := NewController(plan)
	c.Start()

	assert.Equal(t, 1, c.TrialNumber())
	c.Handle(Event{Kind: EventSame})
	assert.Equal(t, 2, c.TrialNumber())

	results := c.Results()
	require.Len(t, results, 1)
	assert.Equal(t, plan[0].Stimulus.Angle, results[0].InitialAngle)
	assert.Equal(t, plan[0].Stimulus.ID, results[0].StimulusID)
}
