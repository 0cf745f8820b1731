package protocol

import "fmt"

// UnknownFuseError is returned by command builders for a Fuse value outside
// FuseLow, FuseHigh and FuseExtended.
type UnknownFuseError struct {
	Fuse Fuse
}

func (e *UnknownFuseError) Error() string {
	return fmt.Sprintf("unknown fuse %d", int(e.Fuse))
}

// IsUnknownFuseError returns true if the error is an UnknownFuseError.
func IsUnknownFuseError(err error) bool {
	_, ok := err.(*UnknownFuseError)
	return ok
}
