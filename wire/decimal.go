package wire

import (
	"errors"

	"github.com/wippyai/fastcodec/value"
)

// ReadExponent reads a decimal exponent. A nullable exponent carrying null
// makes the whole decimal absent.
func (r *Reader) ReadExponent(nullable bool) (int32, bool, error) {
	e, present, err := r.ReadSigned(Width32, nullable)
	if err != nil && !errors.Is(err, ErrOverflow) || !present {
		return 0, present, err
	}
	if err == nil && (e < value.MinExponent || e > value.MaxExponent) {
		err = r.wrapError(ErrExponentRange)
	}
	return int32(e), true, err
}

// ReadDecimal reads an exponent followed, unless the exponent is null, by a
// mantissa. A range fault in either part is returned with the decoded value.
func (r *Reader) ReadDecimal(nullable bool) (value.Decimal, bool, error) {
	exp, present, expErr := r.ReadExponent(nullable)
	if !present || isHardError(expErr) {
		return value.Decimal{}, present, expErr
	}
	mant, _, mantErr := r.ReadSigned(Width64, false)
	if isHardError(mantErr) {
		return value.Decimal{}, false, mantErr
	}
	d := value.Decimal{Mantissa: mant, Exponent: exp}
	if expErr != nil {
		return d, true, expErr
	}
	return d, true, mantErr
}

// WriteDecimal writes exponent then mantissa.
func (w *Writer) WriteDecimal(d value.Decimal, nullable bool) {
	w.WriteSigned(int64(d.Exponent), nullable)
	w.WriteSigned(d.Mantissa, false)
}

// isHardError reports whether err prevents using the decoded value.
func isHardError(err error) bool {
	return err != nil && !errors.Is(err, ErrOverflow) && !errors.Is(err, ErrExponentRange)
}

// IsRangeError reports whether err is a recoverable range fault that came
// with a usable value.
func IsRangeError(err error) bool {
	return errors.Is(err, ErrOverflow) || errors.Is(err, ErrExponentRange)
}
