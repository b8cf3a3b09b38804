package wire

import (
	"fmt"
)

// Width is the bit width of a FAST integer type.
type Width uint8

const (
	Width32 Width = 32
	Width64 Width = 64
)

const (
	stopBit  = 0x80
	dataBits = 0x7f
	signBit  = 0x40
)

// Reader decodes FAST primitives from a ByteSource with position tracking.
type Reader struct {
	src    ByteSource
	fast   ContiguousSource
	notify Notifier
	pos    int

	// IgnoreOverflow suppresses ErrOverflow for producers that emit
	// integers wider than their declared type.
	IgnoreOverflow bool
}

// NewReader creates a Reader over src.
func NewReader(src ByteSource) *Reader {
	r := &Reader{src: src}
	r.fast, _ = src.(ContiguousSource)
	r.notify, _ = src.(Notifier)
	return r
}

// Position returns the number of bytes consumed.
func (r *Reader) Position() int {
	return r.pos
}

// BeginMessage forwards the message boundary hook to the source.
func (r *Reader) BeginMessage() {
	if r.notify != nil {
		r.notify.BeginMessage()
	}
}

// BeginField forwards the field boundary hook to the source.
func (r *Reader) BeginField(name string) {
	if r.notify != nil {
		r.notify.BeginField(name)
	}
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	b, ok := r.src.NextByte()
	if !ok {
		return 0, ErrEndOfData
	}
	r.pos++
	return b, nil
}

// Peek reports whether at least one more byte is available without
// consuming it. Only contiguous sources can answer; others report true.
func (r *Reader) Peek() bool {
	if r.fast == nil {
		return true
	}
	_, ok := r.fast.Contiguous(1)
	return ok
}

// ReadBytes reads exactly n bytes, using the contiguous fast path when the
// source offers one.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	if r.fast != nil {
		if p, ok := r.fast.Contiguous(n); ok {
			out := make([]byte, n)
			copy(out, p)
			r.fast.Skip(n)
			r.pos += n
			return out, nil
		}
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}

// readStopBitRun reads bytes up to and including the one carrying the stop
// bit. The stop bit is left set on the final byte.
func (r *Reader) readStopBitRun() ([]byte, error) {
	if r.fast != nil {
		for n := 1; ; n++ {
			p, ok := r.fast.Contiguous(n)
			if !ok {
				break
			}
			if p[n-1]&stopBit != 0 {
				out := make([]byte, n)
				copy(out, p)
				r.fast.Skip(n)
				r.pos += n
				return out, nil
			}
		}
	}
	var out []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
		if b&stopBit != 0 {
			return out, nil
		}
	}
}

func (r *Reader) overflow() error {
	if r.IgnoreOverflow {
		return nil
	}
	return r.wrapError(ErrOverflow)
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at position %d: %w", r.pos, err)
}
