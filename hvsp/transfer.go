package hvsp

import (
	"github.com/moffa90/go-hvsp/protocol"
)

// transfer clocks one instruction into the target and returns the byte
// shifted out on SDO during the same frame.
//
// For each of the 11 edges SCI is raised, then lowered together with the
// next SDI/SII bit pair; SDO is sampled on that falling edge for edges 0..7.
// All samples are resolved before the byte is assembled.
func (s *Session) transfer(in protocol.Instruction) (byte, error) {
	frame := protocol.NewFrame(in)

	if fb, ok := s.bus.(FrameBus); ok {
		bits, err := fb.Transfer(frame)
		if err != nil {
			return 0, err
		}
		return protocol.AssembleByte(bits), nil
	}

	var bits [protocol.DataEdges]bool
	for i := range frame {
		if err := s.bus.Write(protocol.Lines{protocol.SCI: true}); err != nil {
			return 0, err
		}
		if !protocol.Sampled(i) {
			if err := s.bus.Write(frame.Lines(i)); err != nil {
				return 0, err
			}
			continue
		}
		got, err := s.bus.WriteRead(frame.Lines(i))
		if err != nil {
			return 0, err
		}
		bits[i] = got[protocol.SDO]
	}
	return protocol.AssembleByte(bits), nil
}

// run issues a sequence of instructions and returns the SDO byte of the last one.
func (s *Session) run(seq []protocol.Instruction) (byte, error) {
	var out byte
	for _, in := range seq {
		b, err := s.transfer(in)
		if err != nil {
			return 0, err
		}
		out = b
	}
	return out, nil
}

// loadAddress loads the low address byte and, when it differs from the
// cached value, the high address byte.
func (s *Session) loadAddress(addr int) error {
	if _, err := s.transfer(protocol.LoadAddressLow(byte(addr))); err != nil {
		return err
	}
	high := addr >> 8
	if high == s.highAddr {
		return nil
	}
	if _, err := s.transfer(protocol.LoadAddressHigh(byte(high))); err != nil {
		return err
	}
	s.highAddr = high
	return nil
}
