package protocol

// Line identifies one of the four HVSP signal lines.
type Line uint8

// HVSP signal lines.
const (
	// SDI is Serial Data Input (host to target data byte)
	SDI Line = iota

	// SII is Serial Instruction Input (host to target instruction byte)
	SII

	// SCI is Serial Clock Input, driven by the host
	SCI

	// SDO is Serial Data Output, driven by the target
	SDO
)

func (l Line) String() string {
	switch l {
	case SDI:
		return "SDI"
	case SII:
		return "SII"
	case SCI:
		return "SCI"
	case SDO:
		return "SDO"
	default:
		return "Line(?)"
	}
}

// Lines maps signal lines to logic levels (true = high).
type Lines map[Line]bool

// Frame geometry of a single HVSP transfer.
const (
	// FrameEdges is the number of clock cycles in one transfer
	FrameEdges = 11

	// DataEdges is the number of edges that carry payload bits
	DataEdges = 8
)

// Command bytes, sent on SDI together with InstrLoadCommand on SII.
const (
	// CmdNoOperation leaves the device outside any active command
	CmdNoOperation = 0x00

	// CmdReadFlash selects flash read
	CmdReadFlash = 0x02

	// CmdReadEEPROM selects EEPROM read
	CmdReadEEPROM = 0x03

	// CmdReadFuseLock selects fuse and lock bit read
	CmdReadFuseLock = 0x04

	// CmdReadSignature selects signature and calibration read
	CmdReadSignature = 0x08

	// CmdWriteFlash selects flash page programming
	CmdWriteFlash = 0x10

	// CmdWriteEEPROM selects EEPROM page programming
	CmdWriteEEPROM = 0x11

	// CmdWriteLock selects lock bit programming
	CmdWriteLock = 0x20

	// CmdWriteFuse selects fuse programming
	CmdWriteFuse = 0x40

	// CmdChipErase selects chip erase
	CmdChipErase = 0x80
)

// Instruction bytes, sent on SII.
const (
	// InstrLoadCommand latches the SDI byte as the active command
	InstrLoadCommand = 0x4C

	// InstrLoadAddressLow latches the SDI byte as address bits 7..0
	InstrLoadAddressLow = 0x0C

	// InstrLoadAddressHigh latches the SDI byte as address bits 15..8
	InstrLoadAddressHigh = 0x1C

	// InstrLoadDataLow latches the SDI byte into the low data register
	InstrLoadDataLow = 0x2C

	// InstrLoadDataHigh latches the SDI byte into the high data register
	InstrLoadDataHigh = 0x3C

	// InstrWriteLow drives WR low for flash/EEPROM page, lock and low fuse writes
	InstrWriteLow = 0x64

	// InstrWriteHigh drives WR low for high fuse writes
	InstrWriteHigh = 0x74

	// InstrWriteExtended drives WR low for extended fuse writes
	InstrWriteExtended = 0x66

	// InstrReadLow drives OE low for low byte, low fuse and signature reads
	InstrReadLow = 0x68

	// InstrReadHigh drives OE low for high byte, lock and calibration reads
	InstrReadHigh = 0x78

	// InstrReadFuseHigh drives OE low for high fuse reads
	InstrReadFuseHigh = 0x7A

	// InstrReadFuseExtended drives OE low for extended fuse reads
	InstrReadFuseExtended = 0x6A

	// InstrProgramLow pulses PAGEL to latch the low data byte into the page buffer.
	// Released with ProgramRelease, not StrobeMask: the strobe-mask form of this
	// pulse does not latch data on real parts, 0x6D/0x6C is the value confirmed
	// on hardware.
	InstrProgramLow = 0x6D

	// InstrProgramHigh pulses PAGEL to latch the high data byte into the page buffer.
	// Same release rule as InstrProgramLow; 0x7D/0x7C is confirmed on hardware.
	InstrProgramHigh = 0x7D

	// StrobeMask is OR-ed into a strobe instruction to release the strobe line
	StrobeMask = 0x0C

	// ProgramRelease ends a PAGEL pulse by clearing bit 0
	ProgramRelease = 0xFE
)

// LockMask selects the two lock bits of the lock byte.
const LockMask = 0x03

// ErasedByte is the value of an erased flash or EEPROM byte.
const ErasedByte = 0xFF

// SignatureSize is the number of signature bytes.
const SignatureSize = 3
