package ihex

import "fmt"

// ChecksumError indicates a record whose checksum does not match its contents.
type ChecksumError struct {
	Line     int
	Expected byte
	Actual   byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("line %d: checksum mismatch: got 0x%02X, expected 0x%02X",
		e.Line, e.Actual, e.Expected)
}

// AddressError indicates an image that starts below the requested origin.
type AddressError struct {
	Address uint32
	Origin  uint32
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("image starts at 0x%X, below origin 0x%X", e.Address, e.Origin)
}
