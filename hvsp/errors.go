package hvsp

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/moffa90/go-hvsp/part"
)

var (
	// ErrNotRunning is returned by chip operations outside the Running state.
	ErrNotRunning = errors.New("session not running")

	// ErrAlreadyRunning is returned by Start on a running session.
	ErrAlreadyRunning = errors.New("session already running")

	// ErrTimeout is returned when SDO does not rise within the poll budget.
	// The target state is unspecified afterwards; re-read before trusting it.
	ErrTimeout = errors.New("timed out waiting for device ready")
)

// UnrecognizedPartError indicates that the signature read at start matches no catalog entry.
type UnrecognizedPartError struct {
	Signature [3]byte
}

func (e *UnrecognizedPartError) Error() string {
	return fmt.Sprintf("unrecognized part: signature %s", part.SignatureString(e.Signature))
}

// UnknownMemoryError indicates a memory name that is not in the memory map.
type UnknownMemoryError struct {
	Name string
}

func (e *UnknownMemoryError) Error() string {
	return fmt.Sprintf("unknown memory %q", e.Name)
}

// UnsupportedMemoryError indicates a memory the attached part does not have.
type UnsupportedMemoryError struct {
	Name string
	Part string
}

func (e *UnsupportedMemoryError) Error() string {
	return fmt.Sprintf("%s has no %s", e.Part, e.Name)
}

// OversizeWriteError indicates a payload larger than the target memory.
type OversizeWriteError struct {
	Memory    string
	Requested int
	Capacity  int
}

func (e *OversizeWriteError) Error() string {
	return fmt.Sprintf("%s write of %d bytes exceeds capacity of %d bytes",
		e.Memory, e.Requested, e.Capacity)
}

// AddressRangeError indicates a read range outside the memory.
type AddressRangeError struct {
	Memory string
	Start  int
	Stop   int
	Words  int
}

func (e *AddressRangeError) Error() string {
	return fmt.Sprintf("%s range %d-%d is out of range: valid range is 0-%d",
		e.Memory, e.Start, e.Stop, e.Words)
}

// VerifyError indicates that read-back data differs from what was expected.
type VerifyError struct {
	Memory   string
	Offset   int
	Expected byte
	Actual   byte
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s verification failed at offset 0x%04X: expected 0x%02X, got 0x%02X",
		e.Memory, e.Offset, e.Expected, e.Actual)
}
