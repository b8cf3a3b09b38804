// Package pmap implements the FAST presence map: a per-segment bit sequence
// telling the decoder which operator-bearing fields are carried explicitly.
//
// On the wire a presence map is a stop-bit run with 7 bits per byte, first
// bit in bit 6 of the first byte. Trailing all-zero bytes are dropped by the
// encoder and bits past the end of a decoded map read as zero.
package pmap

import (
	"errors"
	"strings"

	"github.com/wippyai/fastcodec/wire"
)

// ErrCapacity is returned when more bits are appended than the map was
// sized for.
var ErrCapacity = errors.New("presence map capacity exceeded")

const bitsPerByte = 7

// Map is a fixed-capacity bit sequence with independent read and write
// cursors.
type Map struct {
	bits     []byte // packed 8 bits per byte, MSB first
	capacity int
	length   int // bits written or decoded
	cursor   int // next bit to read
}

// New creates an empty map that accepts up to capacity bits.
func New(capacity int) *Map {
	m := &Map{}
	m.Reset(capacity)
	return m
}

// Reset empties the map and resizes it for reuse.
func (m *Map) Reset(capacity int) {
	need := (capacity + 7) / 8
	if cap(m.bits) < need {
		m.bits = make([]byte, need)
	} else {
		m.bits = m.bits[:need]
		clear(m.bits)
	}
	m.capacity = capacity
	m.length = 0
	m.cursor = 0
}

// Capacity returns the number of bits the map was sized for.
func (m *Map) Capacity() int { return m.capacity }

// Len returns the number of bits appended or decoded.
func (m *Map) Len() int { return m.length }

// Consumed returns the number of bits read so far.
func (m *Map) Consumed() int { return m.cursor }

func (m *Map) get(i int) bool {
	return m.bits[i/8]&(0x80>>(i%8)) != 0
}

func (m *Map) set(i int) {
	m.bits[i/8] |= 0x80 >> (i % 8)
}

// Append writes the next bit.
func (m *Map) Append(bit bool) error {
	if m.length >= m.capacity {
		return ErrCapacity
	}
	if bit {
		m.set(m.length)
	}
	m.length++
	return nil
}

// Next reads the next bit. Reading past the stored bits yields false, which
// is how trimmed trailing zero bytes are restored.
func (m *Map) Next() bool {
	i := m.cursor
	m.cursor++
	if i >= m.length {
		return false
	}
	return m.get(i)
}

// Rewind moves the read cursor back to the first bit.
func (m *Map) Rewind() { m.cursor = 0 }

// Read decodes a presence map from r, replacing the current contents. The
// capacity grows to fit the decoded bits if the encoder sent more than
// expected.
func (m *Map) Read(r *wire.Reader) error {
	var raw [16]byte
	data := raw[:0]
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		data = append(data, b)
		if b&0x80 != 0 {
			break
		}
	}

	capacity := max(m.capacity, len(data)*bitsPerByte)
	m.Reset(capacity)
	for _, b := range data {
		for k := bitsPerByte - 1; k >= 0; k-- {
			if b&(1<<k) != 0 {
				m.set(m.length)
			}
			m.length++
		}
	}
	return nil
}

// Write encodes the appended bits to w, trimming trailing zero bytes but
// always emitting at least one byte.
func (m *Map) Write(w *wire.Writer) {
	n := max((m.length+bitsPerByte-1)/bitsPerByte, 1)
	out := make([]byte, n)
	for i := 0; i < m.length; i++ {
		if m.get(i) {
			out[i/bitsPerByte] |= 1 << (bitsPerByte - 1 - i%bitsPerByte)
		}
	}
	for n > 1 && out[n-1] == 0 {
		n--
	}
	out[n-1] |= 0x80
	w.WriteBytes(out[:n])
}

// Equal reports whether both maps have the same capacity and bit sequence.
func (m *Map) Equal(o *Map) bool {
	if m.capacity != o.capacity || m.length != o.length {
		return false
	}
	for i := 0; i < m.length; i++ {
		if m.get(i) != o.get(i) {
			return false
		}
	}
	return true
}

func (m *Map) String() string {
	var sb strings.Builder
	sb.Grow(m.length)
	for i := 0; i < m.length; i++ {
		if m.get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
