package wire

import (
	"math/bits"
	"strconv"
)

// Wide is a 128-bit two's complement integer. Stop-bit integers are
// accumulated in a Wide so that nullable and delta encodings of 64-bit
// fields, which need 65 or 66 bits, round-trip exactly.
type Wide struct {
	Hi int64
	Lo uint64
}

var wideOne = Wide{Lo: 1}

// WideFromInt sign-extends v.
func WideFromInt(v int64) Wide {
	return Wide{Hi: v >> 63, Lo: uint64(v)}
}

// WideFromUint zero-extends v.
func WideFromUint(v uint64) Wide {
	return Wide{Lo: v}
}

// Add returns w + o.
func (w Wide) Add(o Wide) Wide {
	lo, carry := bits.Add64(w.Lo, o.Lo, 0)
	return Wide{Hi: w.Hi + o.Hi + int64(carry), Lo: lo}
}

// Sub returns w - o.
func (w Wide) Sub(o Wide) Wide {
	lo, borrow := bits.Sub64(w.Lo, o.Lo, 0)
	return Wide{Hi: w.Hi - o.Hi - int64(borrow), Lo: lo}
}

// IsNegative reports whether w < 0.
func (w Wide) IsNegative() bool { return w.Hi < 0 }

// IsZero reports whether w == 0.
func (w Wide) IsZero() bool { return w.Hi == 0 && w.Lo == 0 }

// Int64 returns the low 64 bits as a signed value.
func (w Wide) Int64() int64 { return int64(w.Lo) }

// sar is an arithmetic right shift by k < 128.
func (w Wide) sar(k uint) Wide {
	switch {
	case k == 0:
		return w
	case k < 64:
		return Wide{Hi: w.Hi >> k, Lo: w.Lo>>k | uint64(w.Hi)<<(64-k)}
	default:
		return Wide{Hi: w.Hi >> 63, Lo: uint64(w.Hi >> (k - 64))}
	}
}

// shl7 shifts left by one 7-bit group and ORs g into the low bits.
func (w Wide) shl7(g byte) Wide {
	return Wide{Hi: w.Hi<<7 | int64(w.Lo>>57), Lo: w.Lo<<7 | uint64(g&0x7f)}
}

func (w Wide) isSignFill() bool {
	return (w.Hi == 0 && w.Lo == 0) || (w.Hi == -1 && w.Lo == ^uint64(0))
}

// FitsSigned reports whether w is representable as an n-bit signed integer.
func (w Wide) FitsSigned(n uint) bool {
	return w.sar(n - 1).isSignFill()
}

// FitsUnsigned reports whether w is representable as an n-bit unsigned
// integer.
func (w Wide) FitsUnsigned(n uint) bool {
	if w.Hi < 0 {
		return false
	}
	if n >= 128 {
		return true
	}
	return w.sar(n).IsZero()
}

func (w Wide) String() string {
	if w.FitsSigned(64) {
		return strconv.FormatInt(int64(w.Lo), 10)
	}
	if w.Hi == 0 {
		return strconv.FormatUint(w.Lo, 10)
	}
	return "0x" + strconv.FormatUint(uint64(w.Hi), 16) + ":" + strconv.FormatUint(w.Lo, 16)
}
