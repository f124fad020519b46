package input

import (
	"bufio"
	"context"

	"go.bug.st/serial"

	"github.com/cogmotion/rotation.report/internal/trial"
)

// DefaultBaudRate matches the response boxes used in the lab.
const DefaultBaudRate = 115200

// SerialSource reads the line protocol from a hardware response box.
type SerialSource struct {
	port   serial.Port
	events chan trial.Event
}

// NewSerialSource opens the response box at the given device path.
func NewSerialSource(path string, baudRate int) (*SerialSource, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(path, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, err
	}
	return &SerialSource{
		port:   port,
		events: make(chan trial.Event),
	}, nil
}

// Events returns the event stream. Closed when Monitor returns.
func (s *SerialSource) Events() <-chan trial.Event { return s.events }

// Monitor reads lines from the serial port until the port closes or ctx is
// cancelled.
func (s *SerialSource) Monitor(ctx context.Context) error {
	return monitorLines(ctx, bufio.NewScanner(s.port), s.events)
}

// Close closes the serial port, which also unblocks Monitor.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
