package protocol

import "fmt"

// Instruction is one HVSP transfer: a data byte on SDI and an instruction byte on SII.
type Instruction struct {
	SDI byte
	SII byte
}

func (i Instruction) String() string {
	return fmt.Sprintf("%02X/%02X", i.SDI, i.SII)
}

// Strobed returns the instruction with StrobeMask applied to SII.
func (i Instruction) Strobed() Instruction {
	return Instruction{SDI: i.SDI, SII: i.SII | StrobeMask}
}

// Fuse identifies one of the fuse bytes.
type Fuse int

const (
	// FuseLow is the low fuse byte (lfuse)
	FuseLow Fuse = iota

	// FuseHigh is the high fuse byte (hfuse)
	FuseHigh

	// FuseExtended is the extended fuse byte (efuse)
	FuseExtended
)

// String returns the memory name of the fuse.
func (f Fuse) String() string {
	switch f {
	case FuseLow:
		return "lfuse"
	case FuseHigh:
		return "hfuse"
	case FuseExtended:
		return "efuse"
	default:
		return fmt.Sprintf("fuse(%d)", int(f))
	}
}

// ParseFuse maps a memory name to a Fuse.
func ParseFuse(name string) (Fuse, bool) {
	switch name {
	case "lfuse":
		return FuseLow, true
	case "hfuse":
		return FuseHigh, true
	case "efuse":
		return FuseExtended, true
	}
	return 0, false
}
