package hvsptest

import (
	"sync"

	"github.com/moffa90/go-hvsp/part"
	"github.com/moffa90/go-hvsp/protocol"
)

// Factory defaults of a fresh simulated part.
const (
	DefaultLowFuse     = 0x62
	DefaultHighFuse    = 0xDF
	DefaultExtFuse     = 0xFF
	DefaultLock        = 0xFF
	DefaultCalibration = 0x80
)

// Device simulates the HVSP state machine of an AVR part at line level.
//
// It decodes SCI falling edges into 11-bit frames, executes each completed
// instruction, and shifts read results out on SDO during the following
// transfer. Memories are exported so tests can seed and inspect them.
//
// Device is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	part part.Part

	// Memory contents
	Signature   [3]byte
	Calibration byte
	Flash       []byte
	EEPROM      []byte
	LowFuse     byte
	HighFuse    byte
	ExtFuse     byte
	Lock        byte

	// Host-driven line levels
	lines       protocol.Lines
	powered     bool
	highVoltage bool
	configured  bool
	openDrain   bool

	// Frame decoder
	edge     int
	sdiShift byte
	siiShift byte
	out      byte

	// Programming registers
	cmd       byte
	addrLow   byte
	addrHigh  byte
	dataLow   byte
	dataHigh  byte
	pageLow   map[int]byte
	pageHigh  map[int]byte
	busy      int
	busyPolls int
	stuckBusy bool
	failAfter int
	failErr   error
	calls     int
	polls     int
	executed  []protocol.Instruction
}

// New creates a simulated device for p with erased memories and factory fuses.
func New(p part.Part, opts ...Option) *Device {
	d := &Device{
		part:        p,
		Signature:   p.Signature,
		Calibration: DefaultCalibration,
		Flash:       fill(make([]byte, p.FlashWords*2), protocol.ErasedByte),
		EEPROM:      fill(make([]byte, p.EEPROMBytes), protocol.ErasedByte),
		LowFuse:     DefaultLowFuse,
		HighFuse:    DefaultHighFuse,
		ExtFuse:     DefaultExtFuse,
		Lock:        DefaultLock,
		lines:       protocol.Lines{},
		pageLow:     make(map[int]byte),
		pageHigh:    make(map[int]byte),
		failAfter:   -1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func fill(b []byte, v byte) []byte {
	for i := range b {
		b[i] = v
	}
	return b
}

// Configure records the requested drive mode.
func (d *Device) Configure(openDrain bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call(); err != nil {
		return err
	}
	d.configured = true
	d.openDrain = openDrain
	return nil
}

// SetPower switches the simulated supply.
func (d *Device) SetPower(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call(); err != nil {
		return err
	}
	d.powered = on
	if !on {
		d.resetLogic()
	}
	return nil
}

// SetHighVoltage switches the simulated 12V reset line.
func (d *Device) SetHighVoltage(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call(); err != nil {
		return err
	}
	d.highVoltage = on
	if !on {
		d.resetLogic()
	}
	return nil
}

// Read returns a line level. Reading SDO outside a frame counts as a ready poll.
func (d *Device) Read(line protocol.Line) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call(); err != nil {
		return false, err
	}
	if line != protocol.SDO {
		return d.lines[line], nil
	}
	d.polls++
	if !d.active() || d.stuckBusy {
		return false, nil
	}
	if d.busy > 0 {
		d.busy--
		return false, nil
	}
	return true, nil
}

// Write applies line levels. A high-to-low SCI transition clocks one edge.
func (d *Device) Write(lines protocol.Lines) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call(); err != nil {
		return err
	}
	d.apply(lines)
	return nil
}

// WriteRead samples SDO for the current edge, then applies line levels.
func (d *Device) WriteRead(lines protocol.Lines) (protocol.Lines, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call(); err != nil {
		return nil, err
	}
	sdo := d.sdo()
	d.apply(lines)
	return protocol.Lines{protocol.SDO: sdo}, nil
}

func (d *Device) call() error {
	d.calls++
	if d.failAfter >= 0 && d.calls > d.failAfter {
		return d.failErr
	}
	return nil
}

func (d *Device) active() bool {
	return d.powered && d.highVoltage
}

func (d *Device) sdo() bool {
	if !d.active() || d.edge >= protocol.DataEdges {
		return false
	}
	return d.out>>uint(protocol.DataEdges-1-d.edge)&1 == 1
}

func (d *Device) apply(lines protocol.Lines) {
	prevClock := d.lines[protocol.SCI]
	for _, l := range []protocol.Line{protocol.SDI, protocol.SII, protocol.SCI} {
		if v, ok := lines[l]; ok {
			d.lines[l] = v
		}
	}
	if prevClock && !d.lines[protocol.SCI] {
		d.clock()
	}
}

func (d *Device) clock() {
	if !d.active() {
		return
	}
	if d.edge < protocol.DataEdges {
		d.sdiShift = d.sdiShift<<1 | bit(d.lines[protocol.SDI])
		d.siiShift = d.siiShift<<1 | bit(d.lines[protocol.SII])
	}
	d.edge++
	if d.edge == protocol.FrameEdges {
		in := protocol.Instruction{SDI: d.sdiShift, SII: d.siiShift}
		d.edge, d.sdiShift, d.siiShift = 0, 0, 0
		d.execute(in)
	}
}

func bit(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func (d *Device) resetLogic() {
	d.edge, d.sdiShift, d.siiShift, d.out = 0, 0, 0, 0
	d.cmd, d.busy = 0, 0
	d.pageLow = make(map[int]byte)
	d.pageHigh = make(map[int]byte)
}

func (d *Device) address() int {
	return int(d.addrHigh)<<8 | int(d.addrLow)
}

func (d *Device) execute(in protocol.Instruction) {
	d.executed = append(d.executed, in)
	d.out = 0

	switch in.SII {
	case protocol.InstrLoadCommand:
		d.cmd = in.SDI
	case protocol.InstrLoadAddressLow:
		d.addrLow = in.SDI
	case protocol.InstrLoadAddressHigh:
		d.addrHigh = in.SDI
	case protocol.InstrLoadDataLow:
		d.dataLow = in.SDI
	case protocol.InstrLoadDataHigh:
		d.dataHigh = in.SDI
	case protocol.InstrReadLow:
		d.out = d.readLow()
	case protocol.InstrReadHigh:
		d.out = d.readHigh()
	case protocol.InstrReadFuseHigh:
		if d.cmd == protocol.CmdReadFuseLock {
			d.out = d.HighFuse
		}
	case protocol.InstrReadFuseExtended:
		if d.cmd == protocol.CmdReadFuseLock && d.part.HasExtendedFuse {
			d.out = d.ExtFuse
		}
	case protocol.InstrProgramLow:
		d.latch(d.pageLow, d.dataLow)
	case protocol.InstrProgramHigh:
		if d.cmd == protocol.CmdWriteFlash {
			d.latch(d.pageHigh, d.dataHigh)
		}
	case protocol.InstrWriteLow:
		d.writeLow()
	case protocol.InstrWriteHigh:
		if d.cmd == protocol.CmdWriteFuse {
			d.HighFuse = d.dataLow
			d.busy = d.busyPolls
		}
	case protocol.InstrWriteExtended:
		if d.cmd == protocol.CmdWriteFuse && d.part.HasExtendedFuse {
			d.ExtFuse = d.dataLow
			d.busy = d.busyPolls
		}
	}
}

func (d *Device) readLow() byte {
	addr := d.address()
	switch d.cmd {
	case protocol.CmdReadFlash:
		if addr < d.part.FlashWords {
			return d.Flash[2*addr]
		}
	case protocol.CmdReadEEPROM:
		if addr < d.part.EEPROMBytes {
			return d.EEPROM[addr]
		}
	case protocol.CmdReadFuseLock:
		return d.LowFuse
	case protocol.CmdReadSignature:
		if int(d.addrLow) < len(d.Signature) {
			return d.Signature[d.addrLow]
		}
	}
	return 0
}

func (d *Device) readHigh() byte {
	switch d.cmd {
	case protocol.CmdReadFlash:
		if addr := d.address(); addr < d.part.FlashWords {
			return d.Flash[2*addr+1]
		}
	case protocol.CmdReadFuseLock:
		return d.Lock
	case protocol.CmdReadSignature:
		return d.Calibration
	}
	return 0
}

func (d *Device) pageSize() int {
	switch d.cmd {
	case protocol.CmdWriteFlash:
		return d.part.FlashPageWords
	case protocol.CmdWriteEEPROM:
		return d.part.EEPROMPageBytes
	}
	return 0
}

func (d *Device) latch(buf map[int]byte, v byte) {
	if size := d.pageSize(); size > 0 {
		buf[int(d.addrLow)%size] = v
	}
}

func (d *Device) writeLow() {
	switch d.cmd {
	case protocol.CmdWriteFlash:
		base := d.address() &^ (d.part.FlashPageWords - 1)
		for off, v := range d.pageLow {
			if w := base + off; w < d.part.FlashWords {
				d.Flash[2*w] = v
			}
		}
		for off, v := range d.pageHigh {
			if w := base + off; w < d.part.FlashWords {
				d.Flash[2*w+1] = v
			}
		}
	case protocol.CmdWriteEEPROM:
		base := d.address() &^ (d.part.EEPROMPageBytes - 1)
		for off, v := range d.pageLow {
			if a := base + off; a < d.part.EEPROMBytes {
				d.EEPROM[a] = v
			}
		}
	case protocol.CmdWriteLock:
		d.Lock = d.dataLow | ^byte(protocol.LockMask)
	case protocol.CmdWriteFuse:
		d.LowFuse = d.dataLow
	case protocol.CmdChipErase:
		fill(d.Flash, protocol.ErasedByte)
		fill(d.EEPROM, protocol.ErasedByte)
		d.Lock = DefaultLock
	default:
		return
	}
	d.pageLow = make(map[int]byte)
	d.pageHigh = make(map[int]byte)
	d.busy = d.busyPolls
}
