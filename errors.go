package pef

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsorted is returned by Encode when the input sequence is not
	// non-decreasing. Use errors.As with *UnsortedError for the
	// offending index.
	ErrUnsorted = errors.New("unsorted input")

	// ErrValueOverflow is returned by Encode when the input contains
	// MaxUint64. The universe is one past the maximum value and must
	// itself be representable.
	ErrValueOverflow = errors.New("value overflows universe")

	// ErrCorrupt is returned by Decode when the buffer is malformed.
	// Use errors.As with *CorruptError for diagnostic context.
	ErrCorrupt = errors.New("corrupt data")
)

// UnsortedError reports the first index at which the input sequence
// decreases.
type UnsortedError struct {
	Index uint64
}

func (e *UnsortedError) Error() string {
	return fmt.Sprintf("unsorted input: sequence decreases at index %d", e.Index)
}

func (e *UnsortedError) Unwrap() error { return ErrUnsorted }

// CorruptError reports why a buffer failed to decode and the byte
// offset at which decoding stopped.
type CorruptError struct {
	Offset int
	Reason string
	cause  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt data at offset %d: %s", e.Offset, e.Reason)
}

func (e *CorruptError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return ErrCorrupt
}

// Is makes errors.Is(err, ErrCorrupt) hold even when a cause is
// wrapped.
func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

func corruptf(offset int, format string, args ...any) error {
	return &CorruptError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

func corruptErr(offset int, cause error) error {
	return &CorruptError{Offset: offset, Reason: cause.Error(), cause: cause}
}
