package wsprcodex

/*------------------------------------------------------------------
 *
 * Purpose:	Error kinds reported by the codec.
 *
 * Description:	Every failure is one of the sentinels below, wrapped
 *		with the detail of what went wrong.  Callers match
 *		the kind with errors.Is.
 *
 *		Reassembly failures also come back as *SequenceError
 *		so the caller can see which chunks to ask for again.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyInput         = errors.New("empty input")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrOverflow           = errors.New("overflow")
	ErrSymbolMismatch     = errors.New("symbol mismatch")
	ErrSizeMismatch       = errors.New("size mismatch")
	ErrIncompleteSequence = errors.New("incomplete sequence")
	ErrFormatInvalid      = errors.New("invalid format")
)

// SequenceError describes why a set of chunks could not be reassembled.
type SequenceError struct {
	Reason    string
	Missing   []int // Sequence numbers in 0..Total-1 that were not received.
	Duplicate []int // Sequence numbers received more than once.
}

func (e *SequenceError) Error() string {
	var sb strings.Builder

	sb.WriteString(ErrIncompleteSequence.Error())
	sb.WriteString(": ")
	sb.WriteString(e.Reason)

	if len(e.Missing) > 0 {
		fmt.Fprintf(&sb, ", missing %v", e.Missing)
	}

	if len(e.Duplicate) > 0 {
		fmt.Fprintf(&sb, ", duplicate %v", e.Duplicate)
	}

	return sb.String()
}

func (e *SequenceError) Unwrap() error {
	return ErrIncompleteSequence
}

// ErrorKind returns a short stable name for the kind of err, for metrics labels and
// the HTTP API.  "other" if err is not one of ours.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	case errors.Is(err, ErrSymbolMismatch):
		return "symbol_mismatch"
	case errors.Is(err, ErrSizeMismatch):
		return "size_mismatch"
	case errors.Is(err, ErrIncompleteSequence):
		return "incomplete_sequence"
	case errors.Is(err, ErrFormatInvalid):
		return "format_invalid"
	default:
		return "other"
	}
}
