// Package value defines the tagged union carried between the codec and the
// application: integers of each FAST width, scaled decimals, ASCII and UTF8
// strings and byte vectors.
package value

import (
	"bytes"
	"strconv"
)

// Kind identifies the type held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindDecimal
	KindASCII
	KindUTF8
	KindBytes
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindInt32:   "int32",
	KindUint32:  "uint32",
	KindInt64:   "int64",
	KindUint64:  "uint64",
	KindDecimal: "decimal",
	KindASCII:   "ascii",
	KindUTF8:    "utf8",
	KindBytes:   "byteVector",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsInteger reports whether k is one of the four integer kinds.
func (k Kind) IsInteger() bool {
	return k >= KindInt32 && k <= KindUint64
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool {
	return k == KindInt32 || k == KindInt64
}

// IsBytes reports whether k holds a byte payload (ascii, utf8, byteVector).
func (k Kind) IsBytes() bool {
	return k >= KindASCII && k <= KindBytes
}

// Value is an immutable tagged union. The zero Value is invalid and is used
// to mean "absent".
type Value struct {
	data []byte
	bits uint64
	exp  int32
	kind Kind
}

func Int32(v int32) Value   { return Value{kind: KindInt32, bits: uint64(int64(v))} }
func Uint32(v uint32) Value { return Value{kind: KindUint32, bits: uint64(v)} }
func Int64(v int64) Value   { return Value{kind: KindInt64, bits: uint64(v)} }
func Uint64(v uint64) Value { return Value{kind: KindUint64, bits: v} }

// Integer builds an integer Value of kind k from raw two's complement bits.
func Integer(k Kind, bits uint64) Value {
	switch k {
	case KindInt32:
		return Int32(int32(bits))
	case KindUint32:
		return Uint32(uint32(bits))
	case KindInt64:
		return Int64(int64(bits))
	default:
		return Uint64(bits)
	}
}

// Dec builds a decimal Value.
func Dec(mantissa int64, exponent int32) Value {
	return Value{kind: KindDecimal, bits: uint64(mantissa), exp: exponent}
}

// FromDecimal builds a decimal Value from d.
func FromDecimal(d Decimal) Value {
	return Dec(d.Mantissa, d.Exponent)
}

// ASCII builds an ASCII string Value.
func ASCII(s string) Value { return Value{kind: KindASCII, data: []byte(s)} }

// UTF8 builds a Unicode string Value.
func UTF8(s string) Value { return Value{kind: KindUTF8, data: []byte(s)} }

// Bytes builds a byte vector Value. The slice is copied.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, data: append([]byte(nil), b...)}
}

// FromBytes builds a Value of byte kind k that takes ownership of b.
func FromBytes(k Kind, b []byte) Value {
	return Value{kind: k, data: b}
}

// Kind returns the held type.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Int returns the value of a signed integer kind, or the bit pattern of an
// unsigned one.
func (v Value) Int() int64 { return int64(v.bits) }

// Uint returns the raw 64-bit pattern of an integer kind.
func (v Value) Uint() uint64 { return v.bits }

// Decimal returns the decimal held by v.
func (v Value) Decimal() Decimal {
	return Decimal{Mantissa: int64(v.bits), Exponent: v.exp}
}

// Data returns the byte payload of a string or byte vector. Callers must not
// modify it.
func (v Value) Data() []byte { return v.data }

// Text returns the byte payload as a string.
func (v Value) Text() string { return string(v.data) }

// Equal reports whether v and o have the same kind and contents.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch {
	case v.kind.IsBytes():
		return bytes.Equal(v.data, o.data)
	case v.kind == KindDecimal:
		return v.bits == o.bits && v.exp == o.exp
	default:
		return v.bits == o.bits
	}
}

// String renders v for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindInt32, KindInt64:
		return strconv.FormatInt(v.Int(), 10)
	case KindUint32, KindUint64:
		return strconv.FormatUint(v.bits, 10)
	case KindDecimal:
		return v.Decimal().String()
	case KindASCII, KindUTF8:
		return string(v.data)
	case KindBytes:
		return strconv.Quote(string(v.data))
	default:
		return "<absent>"
	}
}
