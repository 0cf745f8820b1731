package ihex

// Record types understood by the parser.
const (
	// RecordData carries data bytes at a 16-bit offset
	RecordData = 0x00

	// RecordEOF terminates the file
	RecordEOF = 0x01

	// RecordExtendedSegment sets bits 4..19 of the base address
	RecordExtendedSegment = 0x02

	// RecordExtendedLinear sets bits 16..31 of the base address
	RecordExtendedLinear = 0x04
)

// FillByte is used for addresses not covered by any data record.
const FillByte = 0xFF

// Record is a single decoded line of an Intel HEX file.
type Record struct {
	// Type is one of the Record* constants
	Type byte

	// Offset is the 16-bit load offset field
	Offset uint16

	// Data is the record payload
	Data []byte

	// Checksum is the record checksum (for validation)
	Checksum byte
}

// Image is the contiguous memory image described by a file.
type Image struct {
	// Base is the address of Data[0]
	Base uint32

	// Data covers every address from Base to the last byte of the highest
	// data record. Gaps between records are FillByte.
	Data []byte

	// Records holds every record in file order, including the EOF record
	Records []*Record
}

// End returns the address after the last byte of the image.
func (img *Image) End() uint32 {
	return img.Base + uint32(len(img.Data))
}

// From returns the image laid out from origin, padding the space before
// Base with FillByte. It fails if the image starts below origin.
func (img *Image) From(origin uint32) ([]byte, error) {
	if img.Base < origin {
		return nil, &AddressError{Address: img.Base, Origin: origin}
	}
	out := make([]byte, int(img.Base-origin)+len(img.Data))
	for i := 0; i < int(img.Base-origin); i++ {
		out[i] = FillByte
	}
	copy(out[img.Base-origin:], img.Data)
	return out, nil
}
