package codec

import (
	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/pmap"
	"github.com/wippyai/fastcodec/schema"
	"github.com/wippyai/fastcodec/value"
	"github.com/wippyai/fastcodec/wire"
)

var decimalLiteral = literalCodec{
	read:  readDecimal,
	write: writeDecimal,
}

func readDecimal(d *Decoder, in *schema.Instruction, nullable bool) (value.Value, error) {
	dec, present, err := d.r.ReadDecimal(nullable)
	if err != nil {
		if err := d.wireError(in, err, value.FromDecimal(dec)); err != nil {
			return value.Value{}, err
		}
	}
	if !present {
		return value.Value{}, nil
	}
	return value.FromDecimal(dec), nil
}

func writeDecimal(e *Encoder, in *schema.Instruction, v value.Value, nullable bool) error {
	dec := v.Decimal()
	if err := e.checkExponent(in, int64(dec.Exponent)); err != nil {
		return err
	}
	e.w.WriteDecimal(dec, nullable)
	return nil
}

func (s *session) checkExponent(in *schema.Instruction, exp int64) error {
	if exp < value.MinExponent || exp > value.MaxExponent {
		return s.recoverable(errors.ExponentRange(s.phase, in.Path(), exp))
	}
	return nil
}

// Decimal delta: exponent and mantissa differences against the base, the
// exponent nullable for optional fields.

func decodeDecimalDelta(d *Decoder, _ *pmap.Map, in *schema.Instruction) (value.Value, error) {
	expDelta, present, err := d.r.ReadDelta(wire.Width32, !in.Mandatory)
	if err != nil {
		if err := d.wireError(in, err, value.Dec(0, int32(expDelta.Lo))); err != nil {
			return value.Value{}, err
		}
	}
	if !present {
		return value.Value{}, nil
	}
	mantDelta, _, err := d.r.ReadDelta(wire.Width64, false)
	if err != nil {
		if err := d.wireError(in, err, value.Dec(int64(mantDelta.Lo), 0)); err != nil {
			return value.Value{}, err
		}
	}

	base, err := d.deltaBase(in, zeroValue(schema.TypeDecimal))
	if err != nil {
		return value.Value{}, err
	}
	b := base.Decimal()
	exp := int64(b.Exponent) + expDelta.Int64()
	mant := wire.WideFromInt(b.Mantissa).Add(mantDelta)

	if err := d.checkExponent(in, exp); err != nil {
		return value.Value{}, err
	}
	if !mant.FitsSigned(64) {
		if err := d.recoverable(errors.Overflow(errors.PhaseDecode, in.Path(), mant.String(), "decimal mantissa")); err != nil {
			return value.Value{}, err
		}
	}
	v := value.Dec(mant.Int64(), int32(exp))
	d.dict.Set(in.Slot(), v)
	return v, nil
}

func encodeDecimalDelta(e *Encoder, _ *pmap.Map, in *schema.Instruction, v value.Value) error {
	if !v.IsValid() {
		if in.Mandatory {
			return e.missing(in, errors.CodeMissingOnEncode)
		}
		e.w.WriteNull()
		return nil
	}
	base, err := e.deltaBase(in, zeroValue(schema.TypeDecimal))
	if err != nil {
		return err
	}
	cur, prev := v.Decimal(), base.Decimal()
	if err := e.checkExponent(in, int64(cur.Exponent)); err != nil {
		return err
	}
	e.w.WriteDelta(wire.WideFromInt(int64(cur.Exponent)-int64(prev.Exponent)), !in.Mandatory)
	e.w.WriteDelta(wire.WideFromInt(cur.Mantissa).Sub(wire.WideFromInt(prev.Mantissa)), false)
	e.dict.Set(in.Slot(), v)
	return nil
}

// Split decimals run the exponent and mantissa through the integer table
// with their own operators and dictionary entries. An absent exponent
// means the whole decimal is absent and the mantissa is not on the wire.

func (d *Decoder) decodeSplitDecimal(pm *pmap.Map, in *schema.Instruction) (value.Value, error) {
	exp, err := d.scalar(pm, in.Exponent)
	if err != nil || !exp.IsValid() {
		return value.Value{}, err
	}
	if err := d.checkExponent(in, exp.Int()); err != nil {
		return value.Value{}, err
	}
	mant, err := d.scalar(pm, in.Mantissa)
	if err != nil || !mant.IsValid() {
		return value.Value{}, err
	}
	return value.Dec(mant.Int(), int32(exp.Int())), nil
}

func (e *Encoder) encodeSplitDecimal(pm *pmap.Map, in *schema.Instruction, v value.Value) error {
	if !v.IsValid() {
		return e.scalar(pm, in.Exponent, value.Value{})
	}
	dec := v.Decimal()
	if err := e.checkExponent(in, int64(dec.Exponent)); err != nil {
		return err
	}
	if err := e.scalar(pm, in.Exponent, value.Int32(dec.Exponent)); err != nil {
		return err
	}
	return e.scalar(pm, in.Mantissa, value.Int64(dec.Mantissa))
}
