package codec

import (
	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/pmap"
	"github.com/wippyai/fastcodec/schema"
	"github.com/wippyai/fastcodec/value"
	"github.com/wippyai/fastcodec/wire"
)

var integerLiteral = literalCodec{
	read:  readInteger,
	write: writeInteger,
}

func readInteger(d *Decoder, in *schema.Instruction, nullable bool) (value.Value, error) {
	t := in.Type
	var (
		bits    uint64
		present bool
		err     error
	)
	if t.IsSigned() {
		var v int64
		v, present, err = d.r.ReadSigned(t.Width(), nullable)
		bits = uint64(v)
	} else {
		bits, present, err = d.r.ReadUnsigned(t.Width(), nullable)
	}
	if err != nil {
		if err := d.wireError(in, err, value.Integer(t.ValueKind(), bits)); err != nil {
			return value.Value{}, err
		}
	}
	if !present {
		return value.Value{}, nil
	}
	return value.Integer(t.ValueKind(), bits), nil
}

func writeInteger(e *Encoder, in *schema.Instruction, v value.Value, nullable bool) error {
	if in.Type.IsSigned() {
		e.w.WriteSigned(v.Int(), nullable)
	} else {
		e.w.WriteUnsigned(v.Uint(), nullable)
	}
	return nil
}

func toWide(v value.Value) wire.Wide {
	if v.Kind().IsSigned() {
		return wire.WideFromInt(v.Int())
	}
	return wire.WideFromUint(v.Uint())
}

func fitsType(w wire.Wide, t schema.Type) bool {
	if t.IsSigned() {
		return w.FitsSigned(uint(t.Width()))
	}
	return w.FitsUnsigned(uint(t.Width()))
}

// Integer delta: a signed difference against the base, one bit wider than
// the field.

func decodeIntegerDelta(d *Decoder, _ *pmap.Map, in *schema.Instruction) (value.Value, error) {
	t := in.Type
	delta, present, err := d.r.ReadDelta(t.Width(), !in.Mandatory)
	if err != nil {
		if err := d.wireError(in, err, value.Integer(t.ValueKind(), delta.Lo)); err != nil {
			return value.Value{}, err
		}
	}
	if !present {
		return value.Value{}, nil
	}

	base, err := d.deltaBase(in, zeroValue(t))
	if err != nil {
		return value.Value{}, err
	}
	sum := toWide(base).Add(delta)
	v := value.Integer(t.ValueKind(), sum.Lo)
	if !fitsType(sum, t) {
		if err := d.recoverable(errors.Overflow(errors.PhaseDecode, in.Path(), sum.String(), t.String())); err != nil {
			return value.Value{}, err
		}
	}
	d.dict.Set(in.Slot(), v)
	return v, nil
}

func encodeIntegerDelta(e *Encoder, _ *pmap.Map, in *schema.Instruction, v value.Value) error {
	if !v.IsValid() {
		if in.Mandatory {
			return e.missing(in, errors.CodeMissingOnEncode)
		}
		e.w.WriteNull()
		return nil
	}
	base, err := e.deltaBase(in, zeroValue(in.Type))
	if err != nil {
		return err
	}
	e.w.WriteDelta(toWide(v).Sub(toWide(base)), !in.Mandatory)
	e.dict.Set(in.Slot(), v)
	return nil
}
