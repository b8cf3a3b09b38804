package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Exponent limits of a FAST scaled number.
const (
	MinExponent = -63
	MaxExponent = 63
)

// Decimal is a scaled number: Mantissa * 10^Exponent.
type Decimal struct {
	Mantissa int64
	Exponent int32
}

// Float64 returns the nearest float64.
func (d Decimal) Float64() float64 {
	return float64(d.Mantissa) * math.Pow10(int(d.Exponent))
}

// Normalize strips trailing zeros from the mantissa into the exponent.
func (d Decimal) Normalize() Decimal {
	if d.Mantissa == 0 {
		return Decimal{}
	}
	for d.Mantissa%10 == 0 && d.Exponent < MaxExponent {
		d.Mantissa /= 10
		d.Exponent++
	}
	return d
}

// String renders d in plain positional notation.
func (d Decimal) String() string {
	neg := d.Mantissa < 0
	digits := strconv.FormatUint(absInt64(d.Mantissa), 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	switch {
	case d.Exponent >= 0:
		b.WriteString(digits)
		if d.Mantissa != 0 {
			b.WriteString(strings.Repeat("0", int(d.Exponent)))
		}
	case int(-d.Exponent) < len(digits):
		point := len(digits) + int(d.Exponent)
		b.WriteString(digits[:point])
		b.WriteByte('.')
		b.WriteString(digits[point:])
	default:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", int(-d.Exponent)-len(digits)))
		b.WriteString(digits)
	}
	return b.String()
}

// ParseDecimal parses positional ("-12.50") or scientific ("125e-2")
// notation into a normalized Decimal.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, fmt.Errorf("decimal: empty literal")
	}

	var exp int64
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.ParseInt(s[i+1:], 10, 32)
		if err != nil {
			return Decimal{}, fmt.Errorf("decimal: exponent of %q: %w", s, err)
		}
		exp = e
		s = s[:i]
	}

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	digits := strings.TrimLeft(intPart+fracPart, "0")
	exp -= int64(len(fracPart))
	if intPart+fracPart == "" {
		return Decimal{}, fmt.Errorf("decimal: no digits in %q", s)
	}
	for _, c := range intPart + fracPart {
		if c < '0' || c > '9' {
			return Decimal{}, fmt.Errorf("decimal: invalid digit %q", c)
		}
	}

	// Trailing zeros move into the exponent so long literals still fit.
	for len(digits) > 1 && digits[len(digits)-1] == '0' {
		digits = digits[:len(digits)-1]
		exp++
	}
	if digits == "" {
		return Decimal{}, nil
	}

	m, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || (m > math.MaxInt64 && !(neg && m == 1<<63)) {
		return Decimal{}, fmt.Errorf("decimal: mantissa %s out of range", digits)
	}
	if exp < MinExponent || exp > MaxExponent {
		return Decimal{}, fmt.Errorf("decimal: exponent %d out of range", exp)
	}

	mant := int64(m)
	if neg {
		mant = -mant
	}
	return Decimal{Mantissa: mant, Exponent: int32(exp)}.Normalize(), nil
}

func absInt64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}
