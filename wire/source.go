package wire

import (
	"errors"
)

var (
	// ErrEndOfData is returned when the source is exhausted inside a field.
	ErrEndOfData = errors.New("wire: end of data")
	// ErrOverflow is returned together with a truncated value when an
	// integer does not fit its declared width.
	ErrOverflow = errors.New("wire: integer overflow")
	// ErrExponentRange is returned together with the decoded decimal when
	// its exponent lies outside [-63, 63].
	ErrExponentRange = errors.New("wire: decimal exponent out of range")
	// ErrInvalidASCII is returned when an ASCII string holds a byte >= 0x80.
	ErrInvalidASCII = errors.New("wire: non-ASCII byte in ASCII string")
	// ErrTooLong is returned when a length prefix exceeds MaxByteVectorLength.
	ErrTooLong = errors.New("wire: byte vector too long")
)

// MaxByteVectorLength bounds length-prefixed payloads.
const MaxByteVectorLength = 16 << 20

// ByteSource delivers input one byte at a time. ok is false when no byte is
// available; the codec treats "not yet available" and "ended" alike.
type ByteSource interface {
	NextByte() (b byte, ok bool)
}

// ContiguousSource is an optional fast path for zero-copy runs.
type ContiguousSource interface {
	ByteSource
	// Contiguous returns the next n bytes without consuming them.
	Contiguous(n int) ([]byte, bool)
	// Skip consumes n bytes previously returned by Contiguous.
	Skip(n int)
}

// Notifier receives message and field boundary hooks. They are diagnostic
// only and never change decoding.
type Notifier interface {
	BeginMessage()
	BeginField(name string)
}

// ByteSink receives encoded output.
type ByteSink interface {
	PutByte(b byte) error
}
