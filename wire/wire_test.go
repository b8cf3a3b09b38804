package wire_test

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/wippyai/fastcodec/value"
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

// contiguousSource adds the zero-copy fast path.
type contiguousSource struct {
	sliceSource
	fastReads int
}

func (s *contiguousSource) Contiguous(n int) ([]byte, bool) {
	if s.pos+n > len(s.data) {
		return nil, false
	}
	s.fastReads++
	return s.data[s.pos : s.pos+n], true
}

func (s *contiguousSource) Skip(n int) { s.pos += n }

func reader(data ...byte) *wire.Reader {
	return wire.NewReader(&sliceSource{data: data})
}

func TestUnsigned(t *testing.T) {
	tests := []struct {
		encoded  []byte
		value    uint64
		nullable bool
	}{
		{[]byte{0x80}, 0, false},
		{[]byte{0x81}, 1, false},
		{[]byte{0xff}, 127, false},
		{[]byte{0x01, 0x80}, 128, false},
		{[]byte{0x39, 0x45, 0xa3}, 942755, false},
		{[]byte{0x0f, 0x7f, 0x7f, 0x7f, 0xff}, math.MaxUint32, false},
		{[]byte{0x81}, 0, true},
		{[]byte{0x82}, 1, true},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			w := wire.NewWriter()
			w.WriteUnsigned(tt.value, tt.nullable)
			if !bytes.Equal(w.Bytes(), tt.encoded) {
				t.Errorf("encode %d: got % x, want % x", tt.value, w.Bytes(), tt.encoded)
			}

			got, present, err := reader(tt.encoded...).ReadUnsigned(wire.Width32, tt.nullable)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !present || got != tt.value {
				t.Errorf("decode: got %d (present=%v), want %d", got, present, tt.value)
			}
		})
	}
}

func TestSigned(t *testing.T) {
	tests := []struct {
		encoded  []byte
		value    int64
		nullable bool
	}{
		{[]byte{0x80}, 0, false},
		{[]byte{0xff}, -1, false},
		{[]byte{0xbf}, 63, false},
		{[]byte{0x00, 0xc0}, 64, false},
		{[]byte{0xc0}, -64, false},
		{[]byte{0x7f, 0xbf}, -65, false},
		{[]byte{0x39, 0x45, 0xa3}, 942755, false},
		{[]byte{0x81}, 0, true},
		{[]byte{0x86}, 5, true},
		{[]byte{0xff}, -1, true},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			w := wire.NewWriter()
			w.WriteSigned(tt.value, tt.nullable)
			if !bytes.Equal(w.Bytes(), tt.encoded) {
				t.Errorf("encode %d: got % x, want % x", tt.value, w.Bytes(), tt.encoded)
			}

			got, present, err := reader(tt.encoded...).ReadSigned(wire.Width32, tt.nullable)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !present || got != tt.value {
				t.Errorf("decode: got %d (present=%v), want %d", got, present, tt.value)
			}
		})
	}
}

func TestNull(t *testing.T) {
	w := wire.NewWriter()
	w.WriteNull()
	if !bytes.Equal(w.Bytes(), []byte{0x80}) {
		t.Errorf("null: got % x, want 80", w.Bytes())
	}

	if _, present, err := reader(0x80).ReadUnsigned(wire.Width32, true); err != nil || present {
		t.Errorf("nullable unsigned 0x80: present=%v err=%v", present, err)
	}
	if _, present, err := reader(0x80).ReadSigned(wire.Width64, true); err != nil || present {
		t.Errorf("nullable signed 0x80: present=%v err=%v", present, err)
	}
}

func TestNullableExtremes(t *testing.T) {
	w := wire.NewWriter()
	w.WriteUnsigned(math.MaxUint64, true)
	w.WriteSigned(math.MaxInt64, true)
	w.WriteSigned(math.MinInt64, true)

	r := wire.NewReader(&sliceSource{data: w.Bytes()})
	u, _, err := r.ReadUnsigned(wire.Width64, true)
	if err != nil || u != math.MaxUint64 {
		t.Errorf("uint64 max: got %d, err %v", u, err)
	}
	s, _, err := r.ReadSigned(wire.Width64, true)
	if err != nil || s != math.MaxInt64 {
		t.Errorf("int64 max: got %d, err %v", s, err)
	}
	s, _, err = r.ReadSigned(wire.Width64, true)
	if err != nil || s != math.MinInt64 {
		t.Errorf("int64 min: got %d, err %v", s, err)
	}
}

func TestOverflow(t *testing.T) {
	t.Run("unsigned", func(t *testing.T) {
		data := []byte{0x1f, 0x7f, 0x7f, 0x7f, 0xff}
		got, present, err := reader(data...).ReadUnsigned(wire.Width32, false)
		if !errors.Is(err, wire.ErrOverflow) {
			t.Fatalf("expected ErrOverflow, got %v", err)
		}
		if !present || got != math.MaxUint32 {
			t.Errorf("truncated value: got %#x", got)
		}
	})

	t.Run("signed", func(t *testing.T) {
		w := wire.NewWriter()
		w.WriteSigned(1<<31, false)
		got, _, err := reader(w.Bytes()...).ReadSigned(wire.Width32, false)
		if !errors.Is(err, wire.ErrOverflow) {
			t.Fatalf("expected ErrOverflow, got %v", err)
		}
		if got != math.MinInt32 {
			t.Errorf("truncated value: got %d", got)
		}
	})

	t.Run("ignored", func(t *testing.T) {
		r := reader(0x1f, 0x7f, 0x7f, 0x7f, 0xff)
		r.IgnoreOverflow = true
		if _, _, err := r.ReadUnsigned(wire.Width32, false); err != nil {
			t.Errorf("IgnoreOverflow: got %v", err)
		}
	})

	t.Run("too many groups", func(t *testing.T) {
		data := bytes.Repeat([]byte{0x7f}, 20)
		data = append(data, 0xff)
		_, _, err := reader(data...).ReadUnsigned(wire.Width64, false)
		if !errors.Is(err, wire.ErrOverflow) {
			t.Errorf("expected ErrOverflow, got %v", err)
		}
	})

	t.Run("negative in range", func(t *testing.T) {
		w := wire.NewWriter()
		w.WriteSigned(math.MinInt32, false)
		got, _, err := reader(w.Bytes()...).ReadSigned(wire.Width32, false)
		if err != nil || got != math.MinInt32 {
			t.Errorf("int32 min: got %d, err %v", got, err)
		}
	})
}

func TestDeltaOversize(t *testing.T) {
	deltas := []wire.Wide{
		wire.WideFromUint(math.MaxUint64).Sub(wire.WideFromUint(0)),
		wire.WideFromUint(0).Sub(wire.WideFromUint(math.MaxUint64)),
		wire.WideFromInt(math.MaxInt64).Sub(wire.WideFromInt(math.MinInt64)),
		wire.WideFromInt(-3),
	}
	for _, nullable := range []bool{false, true} {
		for _, d := range deltas {
			w := wire.NewWriter()
			w.WriteDelta(d, nullable)
			got, present, err := reader(w.Bytes()...).ReadDelta(wire.Width64, nullable)
			if err != nil {
				t.Fatalf("delta %v: %v", d, err)
			}
			if !present || got != d {
				t.Errorf("delta: got %v, want %v", got, d)
			}
		}
	}

	// A 32-bit field accepts a 33-bit delta but not a 34-bit one.
	w := wire.NewWriter()
	w.WriteDelta(wire.WideFromInt(1<<32), false)
	if _, _, err := reader(w.Bytes()...).ReadDelta(wire.Width32, false); !errors.Is(err, wire.ErrOverflow) {
		t.Errorf("34-bit delta: expected overflow, got %v", err)
	}
	w.Reset()
	w.WriteDelta(wire.WideFromInt(math.MaxUint32), false)
	if _, _, err := reader(w.Bytes()...).ReadDelta(wire.Width32, false); err != nil {
		t.Errorf("33-bit delta: %v", err)
	}
}

func TestIntegerRoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		v := int64(rng.Uint64()) >> uint(rng.Intn(64))
		w := wire.NewWriter()
		w.WriteSigned(v, false)
		enc := w.Bytes()

		for j, b := range enc {
			last := j == len(enc)-1
			if (b&0x80 != 0) != last {
				t.Fatalf("value %d: stop bit misplaced in % x", v, enc)
			}
		}

		got, _, err := reader(enc...).ReadSigned(wire.Width64, false)
		if err != nil || got != v {
			t.Fatalf("signed %d: got %d, err %v", v, got, err)
		}

		u := rng.Uint64() >> uint(rng.Intn(64))
		w.Reset()
		w.WriteUnsigned(u, false)
		gotU, _, err := reader(w.Bytes()...).ReadUnsigned(wire.Width64, false)
		if err != nil || gotU != u {
			t.Fatalf("unsigned %d: got %d, err %v", u, gotU, err)
		}
	}
}

func TestDecimal(t *testing.T) {
	w := wire.NewWriter()
	w.WriteDecimal(value.Decimal{Mantissa: 942755, Exponent: 2}, false)
	want := []byte{0x82, 0x39, 0x45, 0xa3}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("encode: got % x, want % x", w.Bytes(), want)
	}

	d, present, err := reader(want...).ReadDecimal(false)
	if err != nil || !present {
		t.Fatalf("decode: present=%v err=%v", present, err)
	}
	if d.Mantissa != 942755 || d.Exponent != 2 {
		t.Errorf("decode: got %+v", d)
	}

	if _, present, err := reader(0x80).ReadDecimal(true); err != nil || present {
		t.Errorf("null decimal: present=%v err=%v", present, err)
	}
}

func TestDecimalExponentRange(t *testing.T) {
	w := wire.NewWriter()
	w.WriteSigned(64, false)
	w.WriteSigned(5, false)

	d, present, err := reader(w.Bytes()...).ReadDecimal(false)
	if !errors.Is(err, wire.ErrExponentRange) {
		t.Fatalf("expected ErrExponentRange, got %v", err)
	}
	if !wire.IsRangeError(err) {
		t.Error("IsRangeError should accept exponent range faults")
	}
	if !present || d.Exponent != 64 || d.Mantissa != 5 {
		t.Errorf("substitute value: got %+v", d)
	}
}

func TestASCII(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		nullable bool
		encoded  []byte
	}{
		{"empty", "", false, []byte{0x80}},
		{"nul", "\x00", false, []byte{0x00, 0x80}},
		{"double nul", "\x00\x00", false, []byte{0x00, 0x00, 0x80}},
		{"CME", "CME", false, []byte{0x43, 0x4d, 0xc5}},
		{"nullable empty", "", true, []byte{0x00, 0x80}},
		{"nullable nul", "\x00", true, []byte{0x00, 0x00, 0x80}},
		{"nullable CME", "CME", true, []byte{0x43, 0x4d, 0xc5}},
		{"trailing nul", "A\x00", false, []byte{0x41, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := wire.NewWriter()
			if err := w.WriteASCII([]byte(tt.value), tt.nullable); err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !bytes.Equal(w.Bytes(), tt.encoded) {
				t.Errorf("encode %q: got % x, want % x", tt.value, w.Bytes(), tt.encoded)
			}

			got, present, err := reader(tt.encoded...).ReadASCII(tt.nullable)
			if err != nil || !present {
				t.Fatalf("decode: present=%v err=%v", present, err)
			}
			if string(got) != tt.value {
				t.Errorf("decode: got %q, want %q", got, tt.value)
			}
		})
	}

	if _, present, err := reader(0x80).ReadASCII(true); err != nil || present {
		t.Errorf("nullable 0x80 should be null: present=%v err=%v", present, err)
	}
	if err := wire.NewWriter().WriteASCII([]byte{0xc3}, false); !errors.Is(err, wire.ErrInvalidASCII) {
		t.Errorf("expected ErrInvalidASCII, got %v", err)
	}
}

func TestASCIIRoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		s := make([]byte, rng.Intn(6))
		for j := range s {
			s[j] = byte(rng.Intn(4)) // small alphabet with many NULs
		}
		for _, nullable := range []bool{false, true} {
			w := wire.NewWriter()
			if err := w.WriteASCII(s, nullable); err != nil {
				t.Fatal(err)
			}
			if nullable && bytes.Equal(w.Bytes(), []byte{0x80}) {
				t.Fatalf("%q encoded as null", s)
			}
			got, present, err := reader(w.Bytes()...).ReadASCII(nullable)
			if err != nil || !present || !bytes.Equal(got, s) {
				t.Fatalf("%q (nullable=%v): got %q present=%v err=%v", s, nullable, got, present, err)
			}
		}
	}
}

func TestByteVector(t *testing.T) {
	tests := []struct {
		value    []byte
		nullable bool
		encoded  []byte
	}{
		{[]byte{}, false, []byte{0x80}},
		{[]byte{1, 2}, false, []byte{0x82, 0x01, 0x02}},
		{[]byte{}, true, []byte{0x81}},
		{[]byte{0xff}, true, []byte{0x82, 0xff}},
	}
	for _, tt := range tests {
		w := wire.NewWriter()
		if err := w.WriteByteVector(tt.value, tt.nullable); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(w.Bytes(), tt.encoded) {
			t.Errorf("encode % x: got % x, want % x", tt.value, w.Bytes(), tt.encoded)
		}
		got, present, err := reader(tt.encoded...).ReadByteVector(tt.nullable)
		if err != nil || !present || !bytes.Equal(got, tt.value) {
			t.Errorf("decode: got % x present=%v err=%v", got, present, err)
		}
	}

	if _, present, err := reader(0x80).ReadByteVector(true); err != nil || present {
		t.Errorf("null byte vector: present=%v err=%v", present, err)
	}
}

func TestByteVectorLengthTooLong(t *testing.T) {
	tests := []struct {
		name    string
		encoded []byte
	}{
		{"beyond 32 bits", []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x80, 0x41, 0x42, 0x85}},
		{"beyond 64 bits", []byte{0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0xff}},
		{"above limit", []byte{0x08, 0x00, 0x00, 0x81}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, ignore := range []bool{false, true} {
				r := reader(tt.encoded...)
				r.IgnoreOverflow = ignore
				_, present, err := r.ReadByteVector(false)
				if !errors.Is(err, wire.ErrTooLong) || present {
					t.Errorf("ignore=%v: got present=%v err=%v, want ErrTooLong", ignore, present, err)
				}
				if errors.Is(err, wire.ErrOverflow) {
					t.Errorf("ignore=%v: length reported as a recoverable overflow", ignore)
				}
			}
		})
	}
}

func TestStringDeltaProperty(t *testing.T) {
	tests := []struct {
		prev, cur string
		sub       int32
		diff      string
	}{
		{"", "", 0, ""},
		{"", "abc", 0, "abc"},
		{"abc", "", 3, ""},
		{"abc", "abc", 0, ""},
		{"abc", "abcde", 0, "de"},
		{"abcde", "abc", 2, ""},
		{"abcd", "abxy", 2, "xy"},
		{"xbcd", "ybcd", -2, "y"},
		{"bcd", "abcd", -1, "a"},
		{"abcd", "bcd", -2, ""},
		{"aa", "aaa", 0, "a"},
		{"GEH6", "GEM6", 2, "M6"},
	}
	for _, tt := range tests {
		sub, diff := wire.StringDelta([]byte(tt.prev), []byte(tt.cur))
		if sub != tt.sub || string(diff) != tt.diff {
			t.Errorf("StringDelta(%q, %q) = %d %q, want %d %q", tt.prev, tt.cur, sub, diff, tt.sub, tt.diff)
		}
		got, clamped := wire.ApplyStringDelta([]byte(tt.prev), sub, diff)
		if clamped || string(got) != tt.cur {
			t.Errorf("ApplyStringDelta(%q, %d, %q) = %q clamped=%v, want %q", tt.prev, sub, diff, got, clamped, tt.cur)
		}
	}

	rng := rand.New(rand.NewSource(3))
	alphabet := []byte("abAB")
	word := func() []byte {
		b := make([]byte, rng.Intn(6))
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return b
	}
	for i := 0; i < 2000; i++ {
		prev, cur := word(), word()
		sub, diff := wire.StringDelta(prev, cur)
		got, clamped := wire.ApplyStringDelta(prev, sub, diff)
		if clamped || !bytes.Equal(got, cur) {
			t.Fatalf("%q -> %q: delta %d %q applied to %q", prev, cur, sub, diff, got)
		}
	}
}

func TestApplyStringDeltaClamps(t *testing.T) {
	tests := []struct {
		sub  int32
		want string
	}{
		{5, "x"},
		{-6, "x"},
	}
	for _, tt := range tests {
		got, clamped := wire.ApplyStringDelta([]byte("abc"), tt.sub, []byte("x"))
		if !clamped || string(got) != tt.want {
			t.Errorf("sub %d: got %q clamped=%v, want %q", tt.sub, got, clamped, tt.want)
		}
	}
}

func TestTail(t *testing.T) {
	tests := []struct {
		prev, cur string
		tail      string
		ok        bool
	}{
		{"", "", "", true},
		{"", "abc", "abc", true},
		{"abc", "abd", "d", true},
		{"abc", "xyz", "xyz", true},
		{"abc", "abcd", "abcd", true},
		{"abcd", "abc", "", false},
	}
	for _, tt := range tests {
		tail, ok := wire.Tail([]byte(tt.prev), []byte(tt.cur))
		if ok != tt.ok || string(tail) != tt.tail {
			t.Errorf("Tail(%q, %q) = %q %v, want %q %v", tt.prev, tt.cur, tail, ok, tt.tail, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if got := wire.ApplyTail([]byte(tt.prev), tail); string(got) != tt.cur {
			t.Errorf("ApplyTail(%q, %q) = %q, want %q", tt.prev, tail, got, tt.cur)
		}
	}

	if got := wire.ApplyTail([]byte("abcd"), []byte("xy")); string(got) != "abxy" {
		t.Errorf("ApplyTail keeps the head: got %q", got)
	}
}

func TestContiguousFastPath(t *testing.T) {
	src := &contiguousSource{sliceSource: sliceSource{data: []byte{0x43, 0x4d, 0xc5, 0x83, 1, 2, 3}}}
	r := wire.NewReader(src)

	s, _, err := r.ReadASCII(false)
	if err != nil || string(s) != "CME" {
		t.Fatalf("ReadASCII: %q, %v", s, err)
	}
	b, _, err := r.ReadByteVector(false)
	if err != nil || !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Fatalf("ReadByteVector: % x, %v", b, err)
	}
	if src.fastReads == 0 {
		t.Error("contiguous path was not used")
	}
	if r.Position() != 7 {
		t.Errorf("position: got %d, want 7", r.Position())
	}
}

func TestEndOfData(t *testing.T) {
	if _, _, err := reader(0x01).ReadUnsigned(wire.Width32, false); !errors.Is(err, wire.ErrEndOfData) {
		t.Errorf("integer: expected ErrEndOfData, got %v", err)
	}
	if _, _, err := reader(0x41, 0x42).ReadASCII(false); !errors.Is(err, wire.ErrEndOfData) {
		t.Errorf("ascii: expected ErrEndOfData, got %v", err)
	}
	if _, _, err := reader(0x83, 0x01).ReadByteVector(false); !errors.Is(err, wire.ErrEndOfData) {
		t.Errorf("byte vector: expected ErrEndOfData, got %v", err)
	}
}

type recordingSink struct{ bytes.Buffer }

func (s *recordingSink) PutByte(b byte) error { return s.WriteByte(b) }

func TestWriterWriteTo(t *testing.T) {
	w := wire.NewWriter()
	w.WriteUnsigned(942755, false)
	var sink recordingSink
	if err := w.WriteTo(&sink); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sink.Bytes(), []byte{0x39, 0x45, 0xa3}) {
		t.Errorf("sink: got % x", sink.Bytes())
	}
}
