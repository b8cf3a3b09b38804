package codec

import (
	"github.com/wippyai/fastcodec/dictionary"
	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/pmap"
	"github.com/wippyai/fastcodec/schema"
	"github.com/wippyai/fastcodec/value"
	"github.com/wippyai/fastcodec/wire"
)

var asciiLiteral = literalCodec{
	read: func(d *Decoder, in *schema.Instruction, nullable bool) (value.Value, error) {
		s, present, err := d.r.ReadASCII(nullable)
		if err != nil {
			return value.Value{}, d.wireError(in, err, value.Value{})
		}
		if !present {
			return value.Value{}, nil
		}
		return value.FromBytes(value.KindASCII, s), nil
	},
	write: func(e *Encoder, in *schema.Instruction, v value.Value, nullable bool) error {
		if err := e.w.WriteASCII(v.Data(), nullable); err != nil {
			return e.wireError(in, err, v)
		}
		return nil
	},
}

// bytesLiteral serves unicode strings and byte vectors, both carried as a
// length followed by raw bytes.
var bytesLiteral = literalCodec{
	read: func(d *Decoder, in *schema.Instruction, nullable bool) (value.Value, error) {
		b, present, err := d.r.ReadByteVector(nullable)
		if err != nil {
			return value.Value{}, d.wireError(in, err, value.Value{})
		}
		if !present {
			return value.Value{}, nil
		}
		return value.FromBytes(in.Type.ValueKind(), b), nil
	},
	write: func(e *Encoder, in *schema.Instruction, v value.Value, nullable bool) error {
		if err := e.w.WriteByteVector(v.Data(), nullable); err != nil {
			return e.wireError(in, err, v)
		}
		return nil
	},
}

// String delta: a subtraction length, negative -(n+1) for front edits and
// nullable for optional fields, followed by the difference as a mandatory
// literal.

func decodeStringDelta(lit literalCodec) decodeFunc {
	return func(d *Decoder, _ *pmap.Map, in *schema.Instruction) (value.Value, error) {
		sub, present, err := d.r.ReadSigned(wire.Width32, !in.Mandatory)
		if err != nil {
			if err := d.wireError(in, err, value.Int32(int32(sub))); err != nil {
				return value.Value{}, err
			}
		}
		if !present {
			return value.Value{}, nil
		}
		diff, err := lit.read(d, in, false)
		if err != nil {
			return value.Value{}, err
		}
		base, err := d.deltaBase(in, zeroValue(in.Type))
		if err != nil {
			return value.Value{}, err
		}

		out, clamped := wire.ApplyStringDelta(base.Data(), int32(sub), diff.Data())
		if clamped {
			n := int(sub)
			if n < 0 {
				n = -n - 1
			}
			if err := d.recoverable(errors.DeltaLength(errors.PhaseDecode, in.Path(), n, len(base.Data()))); err != nil {
				return value.Value{}, err
			}
		}
		v := value.FromBytes(in.Type.ValueKind(), out)
		d.dict.Set(in.Slot(), v)
		return v, nil
	}
}

func encodeStringDelta(lit literalCodec) encodeFunc {
	return func(e *Encoder, _ *pmap.Map, in *schema.Instruction, v value.Value) error {
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
		sub, diff := wire.StringDelta(base.Data(), v.Data())
		e.w.WriteSigned(int64(sub), !in.Mandatory)
		if err := lit.write(e, in, value.FromBytes(v.Kind(), diff), false); err != nil {
			return err
		}
		e.dict.Set(in.Slot(), v)
		return nil
	}
}

// Tail: bit set carries a suffix that replaces the end of the base; bit
// clear repeats the previous value.

func tailBase(s *session, in *schema.Instruction) []byte {
	prev, st := s.dict.Get(in.Slot())
	if st == dictionary.Assigned {
		return prev.Data()
	}
	if lit, ok := in.Literal(); ok {
		return lit.Data()
	}
	return nil
}

func decodeTail(lit literalCodec) decodeFunc {
	return func(d *Decoder, pm *pmap.Map, in *schema.Instruction) (value.Value, error) {
		if !pm.Next() {
			return d.repeat(in, same, errors.CodeMissingMandatoryTail)
		}
		tail, err := lit.read(d, in, !in.Mandatory)
		if err != nil {
			return value.Value{}, err
		}
		if !tail.IsValid() {
			d.dict.SetNull(in.Slot())
			return value.Value{}, nil
		}
		v := value.FromBytes(in.Type.ValueKind(), wire.ApplyTail(tailBase(&d.session, in), tail.Data()))
		d.dict.Set(in.Slot(), v)
		return v, nil
	}
}

func encodeTail(lit literalCodec) encodeFunc {
	return func(e *Encoder, pm *pmap.Map, in *schema.Instruction, v value.Value) error {
		if !v.IsValid() {
			return e.encodeAbsentPrevious(pm, in)
		}
		if e.matchesPrevious(in, v, same) {
			e.dict.Set(in.Slot(), v)
			return e.bit(pm, false)
		}
		tail, ok := wire.Tail(tailBase(&e.session, in), v.Data())
		if !ok {
			return e.fatal(errors.New(errors.PhaseEncode, errors.CodeTailShorter).
				Field(in.Path()...).
				Value(v).
				Detail("value is shorter than the previous one and cannot be sent as a tail").
				Build())
		}
		if err := e.bit(pm, true); err != nil {
			return err
		}
		if err := lit.write(e, in, value.FromBytes(v.Kind(), tail), !in.Mandatory); err != nil {
			return err
		}
		e.dict.Set(in.Slot(), v)
		return nil
	}
}
