package pmap_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/wippyai/fastcodec/pmap"
	"github.com/wippyai/fastcodec/wire"
)

type sliceSource struct {
	data []byte
	pos  int
}

func (s *sliceSource) NextByte() (byte, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	b := s.data[s.pos]
	s.pos++
	return b, true
}

func build(t *testing.T, capacity int, bits ...bool) *pmap.Map {
	t.Helper()
	m := pmap.New(capacity)
	for _, b := range bits {
		if err := m.Append(b); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return m
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name    string
		bits    []bool
		encoded []byte
	}{
		{"empty", nil, []byte{0x80}},
		{"single set", []bool{true}, []byte{0xc0}},
		{"single clear", []bool{false}, []byte{0x80}},
		{"1,0,1", []bool{true, false, true}, []byte{0xd0}},
		{"eight bits", []bool{true, false, false, false, false, false, false, true}, []byte{0x40, 0xc0}},
		{"trimmed tail", []bool{true, false, false, false, false, false, false, false, false}, []byte{0xc0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := build(t, 16, tt.bits...)
			w := wire.NewWriter()
			m.Write(w)
			if !bytes.Equal(w.Bytes(), tt.encoded) {
				t.Errorf("got % x, want % x", w.Bytes(), tt.encoded)
			}
		})
	}
}

func TestReadRoundTrip(t *testing.T) {
	bits := []bool{true, false, true, true, false, false, true, false, true, true}
	m := build(t, len(bits), bits...)
	w := wire.NewWriter()
	m.Write(w)

	got := pmap.New(len(bits))
	if err := got.Read(wire.NewReader(&sliceSource{data: w.Bytes()})); err != nil {
		t.Fatal(err)
	}
	for i, want := range bits {
		if b := got.Next(); b != want {
			t.Errorf("bit %d: got %v, want %v", i, b, want)
		}
	}
	// Past the end everything reads as zero.
	for i := 0; i < 10; i++ {
		if got.Next() {
			t.Fatal("bit past the end should be zero")
		}
	}
}

func TestCapacity(t *testing.T) {
	m := build(t, 2, true, false)
	if err := m.Append(true); !errors.Is(err, pmap.ErrCapacity) {
		t.Errorf("expected ErrCapacity, got %v", err)
	}
	if m.Len() != 2 || m.Capacity() != 2 {
		t.Errorf("len=%d cap=%d", m.Len(), m.Capacity())
	}
}

func TestEqual(t *testing.T) {
	a := build(t, 4, true, false, true)
	b := build(t, 4, true, false, true)
	c := build(t, 4, true, true, true)
	d := build(t, 5, true, false, true)

	if !a.Equal(b) {
		t.Error("identical maps should be equal")
	}
	if a.Equal(c) {
		t.Error("different bits should not be equal")
	}
	if a.Equal(d) {
		t.Error("different capacity should not be equal")
	}
	if a.String() != "101" {
		t.Errorf("String: got %q", a.String())
	}
}

func TestReadEndOfData(t *testing.T) {
	m := pmap.New(7)
	err := m.Read(wire.NewReader(&sliceSource{data: []byte{0x40}}))
	if !errors.Is(err, wire.ErrEndOfData) {
		t.Errorf("expected ErrEndOfData, got %v", err)
	}
}
