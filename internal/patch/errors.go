package patch

import (
	"errors"
	"fmt"
)

// FormatError indicates a malformed patch artifact: wrong magic, unsupported
// version, or a stream that ends before a record's declared length.
type FormatError struct{ Reason string }

func (e FormatError) Error() string { return "patch format: " + e.Reason }

// IsFormat reports whether err is a patch FormatError.
func IsFormat(err error) bool {
	var fe FormatError
	return errors.As(err, &fe)
}

// BoundsError indicates a record whose byte range falls outside the weight
// buffer. It is raised before any byte of the offending set is written.
type BoundsError struct {
	Offset  uint64
	Length  int
	BufSize int
}

func (e BoundsError) Error() string {
	return fmt.Sprintf("patch out of bounds: offset=%d length=%d buffer=%d", e.Offset, e.Length, e.BufSize)
}

// IsBounds reports whether err is a patch BoundsError.
func IsBounds(err error) bool {
	var be BoundsError
	return errors.As(err, &be)
}
