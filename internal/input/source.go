// Package input delivers discrete trial events from an input collaborator.
// The production source is a serial response box speaking a one-command-per-
// line protocol; a scripted source replays fixture bytes for dev mode and
// tests.
//
// Line protocol:
//
//	SAME            same-response key
//	DIFF            different-response key
//	ABORT           cancel the session
//	DOWN / UP       pointer press / release
//	MOVE <dx> <dy>  pointer drag delta in pixels
package input

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cogmotion/rotation.report/internal/trial"
)

// Source is a stream of trial events. Monitor blocks until the underlying
// device is exhausted or ctx is cancelled; the Events channel is closed when
// Monitor returns.
type Source interface {
	Events() <-chan trial.Event
	Monitor(ctx context.Context) error
	Close() error
}

// ParseLine decodes one protocol line. Blank lines and unknown commands are
// skipped (ok=false); response boxes emit status chatter between commands.
func ParseLine(line string) (ev trial.Event, ok bool) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return trial.Event{}, false
	}

	switch strings.ToUpper(fields[0]) {
	case "SAME":
		return trial.Event{Kind: trial.EventSame}, true
	case "DIFF":
		return trial.Event{Kind: trial.EventDifferent}, true
	case "ABORT":
		return trial.Event{Kind: trial.EventAbort}, true
	case "DOWN":
		return trial.Event{Kind: trial.EventPointerDown}, true
	case "UP":
		return trial.Event{Kind: trial.EventPointerUp}, true
	case "MOVE":
		if len(fields) != 3 {
			return trial.Event{}, false
		}
		dx, errX := strconv.ParseFloat(fields[1], 64)
		dy, errY := strconv.ParseFloat(fields[2], 64)
		if errX != nil || errY != nil {
			return trial.Event{}, false
		}
		return trial.Event{Kind: trial.EventPointerMove, DX: dx, DY: dy}, true
	}
	return trial.Event{}, false
}

// monitorLines scans r line by line, parses each into an event, and sends it
// on events, stopping on EOF, read error, or ctx cancellation.
func monitorLines(ctx context.Context, scanner *bufio.Scanner, events chan<- trial.Event) error {
	defer close(events)
	for scanner.Scan() {
		ev, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input source: %w", err)
	}
	return nil
}
