package hvsp

import "github.com/moffa90/go-hvsp/protocol"

// Bus is the line-level capability the session drives.
//
// Implementations control the four HVSP lines (SDI, SII, SCI, SDO) plus the
// target supply and the 12V reset line. gpiobus.Bus drives periph.io pins;
// hvsptest.Device simulates a target.
type Bus interface {
	// Configure is invoked once before use. The session always passes false
	// (push-pull outputs).
	Configure(openDrain bool) error

	// Read samples a single line.
	Read(line protocol.Line) (bool, error)

	// Write drives the given lines.
	Write(lines protocol.Lines) error

	// WriteRead samples SDO and drives the given lines as one step.
	WriteRead(lines protocol.Lines) (protocol.Lines, error)

	// SetPower switches the target supply.
	SetPower(on bool) error

	// SetHighVoltage switches the 12V reset line.
	SetHighVoltage(on bool) error
}

// FrameBus is an optional Bus capability that clocks a complete 11-edge frame
// in one call. The returned samples must be in edge order.
type FrameBus interface {
	Transfer(frame protocol.Frame) ([protocol.DataEdges]bool, error)
}
