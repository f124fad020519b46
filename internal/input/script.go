package input

import (
	"bufio"
	"bytes"
	"context"

	"github.com/cogmotion/rotation.report/internal/trial"
)

// ScriptSource replays a fixed byte script of protocol lines. Used for dev
// mode (fixtures file) and tests.
type ScriptSource struct {
	data   []byte
	events chan trial.Event
}

// NewScriptSource builds a source over the given script bytes.
func NewScriptSource(data []byte) *ScriptSource {
	return &ScriptSource{
		data:   data,
		events: make(chan trial.Event),
	}
}

// Events returns the event stream. Closed when the script is exhausted.
func (s *ScriptSource) Events() <-chan trial.Event { return s.events }

// Monitor delivers every scripted event in order, then returns.
func (s *ScriptSource) Monitor(ctx context.Context) error {
	return monitorLines(ctx, bufio.NewScanner(bytes.NewReader(s.data)), s.events)
}

// Close is a no-op; the script has no underlying device.
func (s *ScriptSource) Close() error { return nil }
