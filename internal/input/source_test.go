package input

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogmotion/rotation.report/internal/trial"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line   string
		want   trial.Event
		wantOK bool
	}{
		{"SAME", trial.Event{Kind: trial.EventSame}, true},
		{"DIFF", trial.Event{Kind: trial.EventDifferent}, true},
		{"ABORT", trial.Event{Kind: trial.EventAbort}, true},
		{"DOWN", trial.Event{Kind: trial.EventPointerDown}, true},
		{"UP", trial.Event{Kind: trial.EventPointerUp}, true},
		{"MOVE 6 -8", trial.Event{Kind: trial.EventPointerMove, DX: 6, DY: -8}, true},
		{"MOVE 1.5 0.25", trial.Event{Kind: trial.EventPointerMove, DX: 1.5, DY: 0.25}, true},
		{"  same  ", trial.Event{Kind: trial.EventSame}, true},
		{"diff", trial.Event{Kind: trial.EventDifferent}, true},
		{"", trial.Event{}, false},
		{"   ", trial.Event{}, false},
		{"MOVE 6", trial.Event{}, false},
		{"MOVE a b", trial.Event{}, false},
		{"MOVE 1 2 3", trial.Event{}, false},
		{"READY v1.2", trial.Event{}, false},
		{"PING", trial.Event{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ev, ok := ParseLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestScriptSourceDeliversInOrder(t *testing.T) {
	script := []byte("DOWN\nMOVE 10 -4\nUP\nstatus: battery ok\nDIFF\n")
	src := NewScriptSource(script)

	errc := make(chan error, 1)
	go func() { errc <- src.Monitor(context.Background()) }()

	var got []trial.Event
	for ev := range src.Events() {
		got = append(got, ev)
	}
	require.NoError(t, <-errc)

	want := []trial.Event{
		{Kind: trial.EventPointerDown},
		{Kind: trial.EventPointerMove, DX: 10, DY: -4},
		{Kind: trial.EventPointerUp},
		{Kind: trial.EventDifferent},
	}
	assert.Equal(t, want, got)
}

func TestScriptSourceClosesChannelOnExhaustion(t *testing.T) {
	src := NewScriptSource([]byte("SAME\n"))

	go func() { _ = src.Monitor(context.Background()) }()

	ev, open := <-src.Events()
	require.True(t, open)
	assert.Equal(t, trial.EventSame, ev.Kind)

	select {
	case _, open := <-src.Events():
		assert.False(t, open, "channel should close after the script ends")
	case <-time.After(time.Second):
		t.Fatal("events channel never closed")
	}
}

func TestScriptSourceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := NewScriptSource([]byte("SAME\nSAME\nSAME\n"))

	errc := make(chan error, 1)
	go func() { errc <- src.Monitor(ctx) }()

	<-src.Events()
	cancel()

	// drain so Monitor can observe the cancel even if a send wins the race
	for range src.Events() {
	}

	select {
	case err := <-errc:
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	case <-time.After(time.Second):
		t.Fatal("Monitor did not return after cancel")
	}
}
