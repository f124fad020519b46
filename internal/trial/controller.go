package trial

import (
	"log"
	"time"

	"github.com/cogmotion/rotation.report/internal/rotation"
)

// State is the controller's session state. Recording is transient: an
// accepted response is captured, logged and advanced past within a single
// Handle call, so observers only ever see the three states below.
type State int

const (
	// StatePresenting means a trial is on screen awaiting a response.
	StatePresenting State = iota
	// StateCompleted means every planned trial has been answered.
	StateCompleted
	// StateAborted means the session was cancelled; recorded results stand.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StatePresenting:
		return "presenting"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// Controller owns the live session: the trial plan, the current rotation
// accumulators, and the result log. All event handling is synchronous and
// single-threaded; events arriving in any state other than Presenting are
// ignored rather than raised.
type Controller struct {
	plan    []Trial
	idx     int
	state   State
	rot     *rotation.State
	results ResultLog

	now        func() time.Time
	trialStart time.Time
	dragging   bool
}

// NewController builds a controller over the given plan. An empty plan
// completes immediately.
func NewController(plan []Trial) *Controller {
	c := &Controller{
		plan: plan,
		rot:  &rotation.State{},
		now:  time.Now,
	}
	if len(plan) == 0 {
		c.state = StateCompleted
	}
	return c
}

// Start stamps the response clock for the first trial. Call once, when the
// first presentation becomes visible.
func (c *Controller) Start() {
	c.trialStart = c.now()
}

// State returns the current session state.
func (c *Controller) State() State { return c.state }

// Current returns the trial being presented, or false when the session has
// ended.
func (c *Controller) Current() (Trial, bool) {
	if c.state != StatePresenting {
		return Trial{}, false
	}
	return c.plan[c.idx], true
}

// TrialNumber returns the 1-based number of the trial being presented.
func (c *Controller) TrialNumber() int { return c.idx + 1 }

// PlanLength returns the number of planned trials.
func (c *Controller) PlanLength() int { return len(c.plan) }

// RotationAngles exposes the live accumulators for the renderer.
func (c *Controller) RotationAngles() (rotX, rotY float64) {
	return c.rot.Angles()
}

// Results returns a copy of the completed-trial records so far.
func (c *Controller) Results() []Result {
	return c.results.Results()
}

// Log returns the session result log.
func (c *Controller) Log() *ResultLog { return &c.results }

// Handle applies one input event to the session. Response keys record a
// result and advance the session; pointer events only mutate the rotation
// accumulators and never cause a state transition.
func (c *Controller) Handle(ev Event) {
	if c.state != StatePresenting {
		return
	}

	switch ev.Kind {
	case EventAbort:
		c.state = StateAborted
		log.Printf("session aborted after %d of %d trials", c.results.Len(), len(c.plan))

	case EventPointerDown:
		if c.plan[c.idx].RotationEnabled {
			c.dragging = true
		}

	case EventPointerUp:
		c.dragging = false

	case EventPointerMove:
		if c.dragging && c.plan[c.idx].RotationEnabled {
			c.rot.ApplyDrag(ev.DX, ev.DY)
		}

	case EventSame, EventDifferent:
		c.record(ev.Kind == EventDifferent)
	}
}

// record captures a response for the current trial and advances the session.
func (c *Controller) record(userResponse bool) {
	t := c.plan[c.idx]
	responseTime := c.now().Sub(c.trialStart).Seconds()
	if responseTime < 0 {
		responseTime = 0
	}

	// "same" is correct iff the pair is not mirrored; "different" is
	// correct iff it is.
	isCorrect := userResponse == t.IsMirror

	rotX, rotY := c.rot.Angles()
	res := Result{
		TrialNumber:     c.idx + 1,
		StimulusID:      t.Stimulus.ID,
		IsMirror:        t.IsMirror,
		UserResponse:    userResponse,
		ResponseTime:    responseTime,
		IsCorrect:       isCorrect,
		RotationEnabled: t.RotationEnabled,
		Disparity:       rotation.Disparity(rotX, rotY),
		InitialAngle:    t.Stimulus.Angle,
	}
	c.results.Append(res)

	c.rot.Reset()
	c.dragging = false
	c.idx++
	if c.idx >= len(c.plan) {
		c.state = StateCompleted
		return
	}
	c.trialStart = c.now()
}
