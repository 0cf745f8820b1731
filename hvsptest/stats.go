package hvsptest

import "github.com/moffa90/go-hvsp/protocol"

// Instructions returns every instruction the device has executed.
func (d *Device) Instructions() []protocol.Instruction {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]protocol.Instruction, len(d.executed))
	copy(out, d.executed)
	return out
}

// Count returns how many executed instructions carried sii on SII.
func (d *Device) Count(sii byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, in := range d.executed {
		if in.SII == sii {
			n++
		}
	}
	return n
}

// Calls returns the number of bus method calls made on the device.
func (d *Device) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Polls returns the number of SDO ready polls.
func (d *Device) Polls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.polls
}

// ResetStats clears the instruction log and counters.
func (d *Device) ResetStats() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.executed = nil
	d.calls = 0
	d.polls = 0
}

// Powered reports whether the supply is on.
func (d *Device) Powered() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.powered
}

// HighVoltage reports whether the 12V reset line is on.
func (d *Device) HighVoltage() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.highVoltage
}

// Configured reports whether Configure was called, and with which mode.
func (d *Device) Configured() (configured, openDrain bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.configured, d.openDrain
}

// Framed wraps the device so that it also accepts whole 11-edge frames.
func (d *Device) Framed() *FramedDevice {
	return &FramedDevice{Device: d}
}

// FramedDevice is a Device that accepts whole frames in one call.
type FramedDevice struct {
	*Device
}

// Transfer clocks a complete frame and returns the SDO samples in edge order.
func (f *FramedDevice) Transfer(frame protocol.Frame) ([protocol.DataEdges]bool, error) {
	var bits [protocol.DataEdges]bool
	d := f.Device
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call(); err != nil {
		return bits, err
	}
	for i := range frame {
		d.apply(protocol.Lines{protocol.SCI: true})
		if protocol.Sampled(i) {
			bits[i] = d.sdo()
		}
		d.apply(frame.Lines(i))
	}
	return bits, nil
}
