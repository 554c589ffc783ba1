package pgs

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by [FormatError] and [TruncatedStreamError] via
// errors.Is, so callers can classify failures without a type assertion.
var (
	ErrFormat    = errors.New("pgs: malformed stream")
	ErrTruncated = errors.New("pgs: truncated stream")
)

// FormatError reports a stream that violates the segment layout: a bad magic
// value, a negative or inconsistent body size. Decoding cannot continue past
// it because segment boundaries are derived from prior declared sizes.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("pgs: %s (offset %d)", e.Reason, e.Offset)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// TruncatedStreamError reports a field read that would run past the end of
// its segment body or of the buffer.
type TruncatedStreamError struct {
	Offset int
	Want   int
	Have   int
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("pgs: truncated at offset %d: need %d bytes, have %d", e.Offset, e.Want, e.Have)
}

func (e *TruncatedStreamError) Is(target error) bool {
	return target == ErrTruncated
}
