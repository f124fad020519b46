package trial

// EventKind enumerates the discrete inputs the session reacts to.
type EventKind int

const (
	// EventSame is the "figures are identical" response key.
	EventSame EventKind = iota
	// EventDifferent is the "figures are mirrored" response key.
	EventDifferent
	// EventAbort ends the session immediately, keeping recorded results.
	EventAbort
	// EventPointerDown begins a drag on the comparison figure.
	EventPointerDown
	// EventPointerUp ends a drag.
	EventPointerUp
	// EventPointerMove carries a drag delta in pixels.
	EventPointerMove
)

func (k EventKind) String() string {
	switch k {
	case EventSame:
		return "same"
	case EventDifferent:
		return "different"
	case EventAbort:
		return "abort"
	case EventPointerDown:
		return "pointer-down"
	case EventPointerUp:
		return "pointer-up"
	case EventPointerMove:
		return "pointer-move"
	}
	return "unknown"
}

// Event is one discrete input delivered by the input collaborator.
// DX and DY are only meaningful for EventPointerMove.
type Event struct {
	Kind EventKind
	DX   float64
	DY   float64
}
