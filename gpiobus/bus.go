package gpiobus

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/moffa90/go-hvsp/protocol"
)

// ErrOpenDrain is returned by Configure when open-drain drive is requested.
// Host GPIO pins are driven push-pull.
var ErrOpenDrain = errors.New("open-drain drive not supported")

// Pins are the host pins wired to the programming interface.
//
// Power switches the target's VCC and HighVoltage switches 12V onto RESET,
// usually through a transistor stage; set the matching ActiveLow flag when
// that stage inverts.
type Pins struct {
	SDI         gpio.PinOut
	SII         gpio.PinOut
	SCI         gpio.PinOut
	SDO         gpio.PinIn
	Power       gpio.PinOut
	HighVoltage gpio.PinOut

	PowerActiveLow       bool
	HighVoltageActiveLow bool
}

// PinNames names the pins to look up in the periph registry, such as
// "GPIO17" or "P1_11".
type PinNames struct {
	SDI         string
	SII         string
	SCI         string
	SDO         string
	Power       string
	HighVoltage string

	PowerActiveLow       bool
	HighVoltageActiveLow bool
}

// Bus drives HVSP lines on host GPIO pins.
//
// Bus is safe for concurrent use, though a session serializes its own calls.
type Bus struct {
	mu    sync.Mutex
	pins  Pins
	level protocol.Lines
}

// New creates a Bus on the given pins. All pins must be set.
func New(pins Pins) (*Bus, error) {
	missing := map[string]bool{
		"SDI":         pins.SDI == nil,
		"SII":         pins.SII == nil,
		"SCI":         pins.SCI == nil,
		"SDO":         pins.SDO == nil,
		"Power":       pins.Power == nil,
		"HighVoltage": pins.HighVoltage == nil,
	}
	for _, name := range []string{"SDI", "SII", "SCI", "SDO", "Power", "HighVoltage"} {
		if missing[name] {
			return nil, errors.Errorf("pin %s not set", name)
		}
	}
	return &Bus{pins: pins, level: protocol.Lines{}}, nil
}

// Open initializes the periph host drivers and looks pins up by name.
func Open(names PinNames) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize host drivers")
	}
	return lookup(names)
}

func lookup(names PinNames) (*Bus, error) {
	var pins [6]gpio.PinIO
	for i, name := range []string{names.SDI, names.SII, names.SCI, names.SDO, names.Power, names.HighVoltage} {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, errors.Errorf("pin %q not found", name)
		}
		pins[i] = p
	}
	return New(Pins{
		SDI:                  pins[0],
		SII:                  pins[1],
		SCI:                  pins[2],
		SDO:                  pins[3],
		Power:                pins[4],
		HighVoltage:          pins[5],
		PowerActiveLow:       names.PowerActiveLow,
		HighVoltageActiveLow: names.HighVoltageActiveLow,
	})
}

// Configure drives the data and clock lines low and makes SDO an input.
func (b *Bus) Configure(openDrain bool) error {
	if openDrain {
		return ErrOpenDrain
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.write(protocol.Lines{protocol.SDI: false, protocol.SII: false, protocol.SCI: false}); err != nil {
		return err
	}
	if err := b.pins.SDO.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return errors.Wrapf(err, "configure %s", protocol.SDO)
	}
	return nil
}

// Read returns the level of a line. Output lines report the last level written.
func (b *Bus) Read(line protocol.Line) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if line == protocol.SDO {
		return b.pins.SDO.Read() == gpio.High, nil
	}
	return b.level[line], nil
}

// Write drives SDI and SII before SCI so data is stable when the clock moves.
func (b *Bus) Write(lines protocol.Lines) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.write(lines)
}

// WriteRead samples SDO, then drives lines.
func (b *Bus) WriteRead(lines protocol.Lines) (protocol.Lines, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sdo := b.pins.SDO.Read() == gpio.High
	if err := b.write(lines); err != nil {
		return nil, err
	}
	return protocol.Lines{protocol.SDO: sdo}, nil
}

// SetPower switches target VCC.
func (b *Bus) SetPower(on bool) error {
	return errors.Wrap(drive(b.pins.Power, on != b.pins.PowerActiveLow), "set power")
}

// SetHighVoltage switches 12V onto RESET.
func (b *Bus) SetHighVoltage(on bool) error {
	return errors.Wrap(drive(b.pins.HighVoltage, on != b.pins.HighVoltageActiveLow), "set high voltage")
}

func (b *Bus) write(lines protocol.Lines) error {
	for _, line := range []protocol.Line{protocol.SDI, protocol.SII, protocol.SCI} {
		v, ok := lines[line]
		if !ok {
			continue
		}
		if err := drive(b.pin(line), v); err != nil {
			return errors.Wrapf(err, "drive %s", line)
		}
		b.level[line] = v
	}
	return nil
}

func (b *Bus) pin(line protocol.Line) gpio.PinOut {
	switch line {
	case protocol.SDI:
		return b.pins.SDI
	case protocol.SII:
		return b.pins.SII
	default:
		return b.pins.SCI
	}
}

func drive(p gpio.PinOut, high bool) error {
	if high {
		return p.Out(gpio.High)
	}
	return p.Out(gpio.Low)
}
