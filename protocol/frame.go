package protocol

// Edge is the SDI/SII level pair presented on one falling clock edge.
type Edge struct {
	SDI bool
	SII bool
}

// Frame is the complete 11-edge bit plan of one transfer.
//
// Edges 0..7 carry bits 7..0 of the data and instruction bytes, MSB first.
// Edges 8..10 carry zero. SDO is sampled on edges 0..7 only.
type Frame [FrameEdges]Edge

// NewFrame builds the bit plan for an instruction.
func NewFrame(in Instruction) Frame {
	var f Frame
	for i := 0; i < DataEdges; i++ {
		shift := uint(DataEdges - 1 - i)
		f[i] = Edge{
			SDI: in.SDI>>shift&1 == 1,
			SII: in.SII>>shift&1 == 1,
		}
	}
	return f
}

// Lines returns the line levels for the falling half of edge i.
func (f Frame) Lines(i int) Lines {
	return Lines{SCI: false, SDI: f[i].SDI, SII: f[i].SII}
}

// Sampled reports whether SDO is sampled on edge i.
func Sampled(i int) bool {
	return i < DataEdges
}

// AssembleByte packs SDO samples, first sample being the MSB.
func AssembleByte(bits [DataEdges]bool) byte {
	var b byte
	for _, bit := range bits {
		b <<= 1
		if bit {
			b |= 1
		}
	}
	return b
}

// DecodeFrame recovers the instruction from a frame.
func DecodeFrame(f Frame) Instruction {
	var sdi, sii [DataEdges]bool
	for i := 0; i < DataEdges; i++ {
		sdi[i] = f[i].SDI
		sii[i] = f[i].SII
	}
	return Instruction{SDI: AssembleByte(sdi), SII: AssembleByte(sii)}
}
