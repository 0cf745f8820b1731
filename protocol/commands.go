package protocol

import "fmt"

// LoadCommand returns the instruction that activates a command byte.
func LoadCommand(cmd byte) Instruction {
	return Instruction{SDI: cmd, SII: InstrLoadCommand}
}

// LoadAddressLow returns the instruction that loads address bits 7..0.
func LoadAddressLow(addr byte) Instruction {
	return Instruction{SDI: addr, SII: InstrLoadAddressLow}
}

// LoadAddressHigh returns the instruction that loads address bits 15..8.
func LoadAddressHigh(addr byte) Instruction {
	return Instruction{SDI: addr, SII: InstrLoadAddressHigh}
}

// LoadDataLow returns the instruction that loads the low data register.
func LoadDataLow(b byte) Instruction {
	return Instruction{SDI: b, SII: InstrLoadDataLow}
}

// LoadDataHigh returns the instruction that loads the high data register.
func LoadDataHigh(b byte) Instruction {
	return Instruction{SDI: b, SII: InstrLoadDataHigh}
}

// Strobe returns the plain and OR-masked pair for a WR or OE strobe.
// For reads, the data byte is shifted out during the second transfer.
func Strobe(instr byte) []Instruction {
	plain := Instruction{SII: instr}
	return []Instruction{plain, plain.Strobed()}
}

// ProgramPulse returns the PAGEL pulse pair for InstrProgramLow or InstrProgramHigh.
func ProgramPulse(instr byte) []Instruction {
	return []Instruction{{SII: instr}, {SII: instr & ProgramRelease}}
}

// BuildReadSignatureCmd constructs the read of one signature byte.
//
// Sequence:
//
//	[08/4C][index/0C][00/68][00/6C]
//
// The byte is returned by the last transfer.
func BuildReadSignatureCmd(index byte) ([]Instruction, error) {
	if index >= SignatureSize {
		return nil, fmt.Errorf("signature index %d out of range 0-%d", index, SignatureSize-1)
	}
	seq := []Instruction{LoadCommand(CmdReadSignature), LoadAddressLow(index)}
	return append(seq, Strobe(InstrReadLow)...), nil
}

// BuildReadCalibrationCmd constructs the read of the oscillator calibration byte.
//
// Sequence:
//
//	[08/4C][00/0C][00/78][00/7C]
func BuildReadCalibrationCmd() []Instruction {
	seq := []Instruction{LoadCommand(CmdReadSignature), LoadAddressLow(0)}
	return append(seq, Strobe(InstrReadHigh)...)
}

// BuildReadFuseCmd constructs the read of a fuse byte.
//
// Sequence:
//
//	lfuse: [04/4C][00/68][00/6C]
//	hfuse: [04/4C][00/7A][00/7E]
//	efuse: [04/4C][00/6A][00/6E]
func BuildReadFuseCmd(f Fuse) ([]Instruction, error) {
	var strobe byte
	switch f {
	case FuseLow:
		strobe = InstrReadLow
	case FuseHigh:
		strobe = InstrReadFuseHigh
	case FuseExtended:
		strobe = InstrReadFuseExtended
	default:
		return nil, &UnknownFuseError{Fuse: f}
	}
	return append([]Instruction{LoadCommand(CmdReadFuseLock)}, Strobe(strobe)...), nil
}

// BuildWriteFuseCmd constructs the programming of a fuse byte.
// The caller must wait for SDO to rise after the last transfer.
//
// Sequence:
//
//	lfuse: [40/4C][value/2C][00/64][00/6C]
//	hfuse: [40/4C][value/2C][00/74][00/7C]
//	efuse: [40/4C][value/2C][00/66][00/6E]
func BuildWriteFuseCmd(f Fuse, value byte) ([]Instruction, error) {
	var strobe byte
	switch f {
	case FuseLow:
		strobe = InstrWriteLow
	case FuseHigh:
		strobe = InstrWriteHigh
	case FuseExtended:
		strobe = InstrWriteExtended
	default:
		return nil, &UnknownFuseError{Fuse: f}
	}
	seq := []Instruction{LoadCommand(CmdWriteFuse), LoadDataLow(value)}
	return append(seq, Strobe(strobe)...), nil
}

// BuildReadLockCmd constructs the read of the lock byte.
// Only the bits in LockMask are meaningful.
//
// Sequence:
//
//	[04/4C][00/78][00/7C]
func BuildReadLockCmd() []Instruction {
	return append([]Instruction{LoadCommand(CmdReadFuseLock)}, Strobe(InstrReadHigh)...)
}

// BuildWriteLockCmd constructs the programming of the lock byte.
//
// Sequence:
//
//	[20/4C][value/2C][00/64][00/6C]
func BuildWriteLockCmd(value byte) []Instruction {
	seq := []Instruction{LoadCommand(CmdWriteLock), LoadDataLow(value)}
	return append(seq, Strobe(InstrWriteLow)...)
}

// BuildChipEraseCmd constructs a chip erase. Fuses are not affected.
//
// Sequence:
//
//	[80/4C][00/64][00/6C]
func BuildChipEraseCmd() []Instruction {
	return append([]Instruction{LoadCommand(CmdChipErase)}, Strobe(InstrWriteLow)...)
}
