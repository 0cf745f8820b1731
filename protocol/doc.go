// Package protocol implements the AVR High-Voltage Serial Programming (HVSP)
// wire protocol.
//
// This package provides the instruction set and bit plan of the HVSP
// interface. It does not touch hardware; the hvsp package executes the
// sequences built here against a bus.
//
// # Protocol Overview
//
// Every HVSP transfer clocks two bytes into the target and one byte out:
//
//	SDI: data byte        (host to target)
//	SII: instruction byte (host to target)
//	SDO: data byte        (target to host)
//
// A transfer is 11 clock cycles. On each cycle the host raises SCI, then
// lowers it while presenting the next SDI/SII bit pair and sampling SDO.
// Cycles 0..7 carry bits 7..0, MSB first; cycles 8..10 carry zero.
//
//	frame := protocol.NewFrame(protocol.Instruction{SDI: 0x08, SII: 0x4C})
//	for i := range frame {
//	    lines := frame.Lines(i)
//	    // raise SCI, then apply lines; sample SDO if protocol.Sampled(i)
//	}
//
// # Command Builders
//
// Fixed sequences for fuses, lock bits, signature and chip erase are built
// with the Build* functions:
//
//	seq, err := protocol.BuildReadFuseCmd(protocol.FuseHigh)
//	seq := protocol.BuildChipEraseCmd()
//
// Read sequences end with an OE strobe pair; the result is the SDO byte of
// the final transfer. Write sequences end with a WR strobe pair, after which
// the host must poll SDO until the target reports ready.
//
// # Strobe Opcodes
//
// The OR-masked half of a WR/OE strobe is the plain opcode with StrobeMask
// set. Page buffer latch pulses use InstrProgramLow (0x6D) and
// InstrProgramHigh (0x7D) followed by the same value with bit 0 cleared.
package protocol
