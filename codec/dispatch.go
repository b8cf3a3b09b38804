package codec

import (
	"github.com/wippyai/fastcodec/dictionary"
	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/pmap"
	"github.com/wippyai/fastcodec/schema"
	"github.com/wippyai/fastcodec/value"
)

// Operator dispatch is a two-axis table: value family × operator kind.
// Every cell is a plain function over the presence map, the session
// dictionary and the primitive codec. An invalid Value means "absent".

type family uint8

const (
	familyInteger family = iota
	familyDecimal
	familyASCII
	familyBytes // unicode and byteVector
	familyCount
)

func familyOf(t schema.Type) (family, bool) {
	switch {
	case t.IsInteger():
		return familyInteger, true
	case t == schema.TypeDecimal:
		return familyDecimal, true
	case t == schema.TypeASCII:
		return familyASCII, true
	case t == schema.TypeUTF8, t == schema.TypeBytes:
		return familyBytes, true
	}
	return 0, false
}

type (
	decodeFunc func(d *Decoder, pm *pmap.Map, in *schema.Instruction) (value.Value, error)
	encodeFunc func(e *Encoder, pm *pmap.Map, in *schema.Instruction, v value.Value) error
)

// literalCodec reads and writes the plain wire form of one family. read
// returns an invalid Value for null; write is never called with one.
type literalCodec struct {
	read  func(d *Decoder, in *schema.Instruction, nullable bool) (value.Value, error)
	write func(e *Encoder, in *schema.Instruction, v value.Value, nullable bool) error
}

var (
	decodeTable [familyCount][schema.OpCount]decodeFunc
	encodeTable [familyCount][schema.OpCount]encodeFunc
)

func init() {
	literals := [familyCount]literalCodec{
		familyInteger: integerLiteral,
		familyDecimal: decimalLiteral,
		familyASCII:   asciiLiteral,
		familyBytes:   bytesLiteral,
	}

	for f, lit := range literals {
		decodeTable[f][schema.OpNop] = decodeNop(lit)
		decodeTable[f][schema.OpConstant] = decodeConstant
		decodeTable[f][schema.OpDefault] = decodeDefault(lit)
		decodeTable[f][schema.OpCopy] = decodePrevious(lit, same, errors.CodeMissingMandatoryCopy)

		encodeTable[f][schema.OpNop] = encodeNop(lit)
		encodeTable[f][schema.OpConstant] = encodeConstant
		encodeTable[f][schema.OpDefault] = encodeDefault(lit)
		encodeTable[f][schema.OpCopy] = encodePrevious(lit, same)
	}

	decodeTable[familyInteger][schema.OpIncrement] = decodePrevious(integerLiteral, successor, errors.CodeMissingMandatoryIncr)
	encodeTable[familyInteger][schema.OpIncrement] = encodePrevious(integerLiteral, successor)
	decodeTable[familyInteger][schema.OpDelta] = decodeIntegerDelta
	encodeTable[familyInteger][schema.OpDelta] = encodeIntegerDelta

	decodeTable[familyDecimal][schema.OpDelta] = decodeDecimalDelta
	encodeTable[familyDecimal][schema.OpDelta] = encodeDecimalDelta

	for _, f := range []family{familyASCII, familyBytes} {
		lit := literals[f]
		decodeTable[f][schema.OpDelta] = decodeStringDelta(lit)
		encodeTable[f][schema.OpDelta] = encodeStringDelta(lit)
		decodeTable[f][schema.OpTail] = decodeTail(lit)
		encodeTable[f][schema.OpTail] = encodeTail(lit)
	}
}

func unsupported(s *session, in *schema.Instruction) error {
	return s.fatal(errors.New(s.phase, errors.CodeUnsupportedOperator).
		Field(in.Path()...).
		Detail("operator %s is not defined for %s", in.Op.Kind, in.Type).
		Build())
}

func decodeCell(in *schema.Instruction) decodeFunc {
	f, ok := familyOf(in.Type)
	if !ok || in.Op.Kind >= schema.OpCount {
		return nil
	}
	return decodeTable[f][in.Op.Kind]
}

func encodeCell(in *schema.Instruction) encodeFunc {
	f, ok := familyOf(in.Type)
	if !ok || in.Op.Kind >= schema.OpCount {
		return nil
	}
	return encodeTable[f][in.Op.Kind]
}

// same and successor give the value a clear presence bit stands for,
// relative to the previous one.
func same(v value.Value) value.Value { return v }

func successor(v value.Value) value.Value {
	return value.Integer(v.Kind(), v.Uint()+1)
}

// Nop: no presence bit, the literal (or null escape) is always present.

func decodeNop(lit literalCodec) decodeFunc {
	return func(d *Decoder, _ *pmap.Map, in *schema.Instruction) (value.Value, error) {
		return lit.read(d, in, !in.Mandatory)
	}
}

func encodeNop(lit literalCodec) encodeFunc {
	return func(e *Encoder, _ *pmap.Map, in *schema.Instruction, v value.Value) error {
		if !v.IsValid() {
			if in.Mandatory {
				return e.missing(in, errors.CodeMissingOnEncode)
			}
			e.w.WriteNull()
			return nil
		}
		return lit.write(e, in, v, !in.Mandatory)
	}
}

// Constant: mandatory fields take nothing from the stream, optional ones
// one bit.

func decodeConstant(d *Decoder, pm *pmap.Map, in *schema.Instruction) (value.Value, error) {
	lit, _ := in.Literal()
	if in.Mandatory || pm.Next() {
		return lit, nil
	}
	return value.Value{}, nil
}

func encodeConstant(e *Encoder, pm *pmap.Map, in *schema.Instruction, v value.Value) error {
	lit, _ := in.Literal()
	if v.IsValid() && !v.Equal(lit) {
		if err := e.recoverable(errors.ConstantMismatch(in.Path(), v, lit)); err != nil {
			return err
		}
	}
	if in.Mandatory {
		return nil
	}
	return e.bit(pm, v.IsValid())
}

// Default: bit clear means the default value.

func decodeDefault(lit literalCodec) decodeFunc {
	return func(d *Decoder, pm *pmap.Map, in *schema.Instruction) (value.Value, error) {
		if pm.Next() {
			return lit.read(d, in, !in.Mandatory)
		}
		if def, ok := in.Literal(); ok {
			return def, nil
		}
		if in.Mandatory {
			return value.Value{}, d.missing(in, errors.CodeMissingMandatoryDefault)
		}
		return value.Value{}, nil
	}
}

func encodeDefault(lit literalCodec) encodeFunc {
	return func(e *Encoder, pm *pmap.Map, in *schema.Instruction, v value.Value) error {
		def, hasDefault := in.Literal()
		if !v.IsValid() {
			if in.Mandatory {
				return e.missing(in, errors.CodeMissingOnEncode)
			}
			if !hasDefault {
				return e.bit(pm, false)
			}
			// An explicit null overrides the default.
			if err := e.bit(pm, true); err != nil {
				return err
			}
			e.w.WriteNull()
			return nil
		}
		if hasDefault && v.Equal(def) {
			return e.bit(pm, false)
		}
		if err := e.bit(pm, true); err != nil {
			return err
		}
		return lit.write(e, in, v, !in.Mandatory)
	}
}

// Copy and increment: bit clear means expect(previous); bit set carries a
// literal that replaces the dictionary entry. Tail shares the clear-bit
// half.

func decodePrevious(lit literalCodec, expect func(value.Value) value.Value, code errors.Code) decodeFunc {
	return func(d *Decoder, pm *pmap.Map, in *schema.Instruction) (value.Value, error) {
		if pm.Next() {
			v, err := lit.read(d, in, !in.Mandatory)
			if err != nil {
				return value.Value{}, err
			}
			d.store(in, v)
			return v, nil
		}
		return d.repeat(in, expect, code)
	}
}

// repeat produces the value of a clear presence bit.
func (d *Decoder) repeat(in *schema.Instruction, expect func(value.Value) value.Value, code errors.Code) (value.Value, error) {
	prev, st, err := d.previous(in, code)
	if err != nil || !prev.IsValid() || st != dictionary.Assigned {
		return prev, err
	}
	v := expect(prev)
	d.dict.Set(in.Slot(), v)
	return v, nil
}

func encodePrevious(lit literalCodec, expect func(value.Value) value.Value) encodeFunc {
	return func(e *Encoder, pm *pmap.Map, in *schema.Instruction, v value.Value) error {
		if !v.IsValid() {
			return e.encodeAbsentPrevious(pm, in)
		}
		if e.matchesPrevious(in, v, expect) {
			e.dict.Set(in.Slot(), v)
			return e.bit(pm, false)
		}
		if err := e.bit(pm, true); err != nil {
			return err
		}
		if err := lit.write(e, in, v, !in.Mandatory); err != nil {
			return err
		}
		e.dict.Set(in.Slot(), v)
		return nil
	}
}

// matchesPrevious reports whether the decoder will reconstruct v from a
// clear presence bit.
func (e *Encoder) matchesPrevious(in *schema.Instruction, v value.Value, expect func(value.Value) value.Value) bool {
	prev, st := e.dict.Get(in.Slot())
	switch st {
	case dictionary.Assigned:
		return expect(prev).Equal(v)
	case dictionary.Undefined:
		lit, ok := in.Literal()
		return ok && lit.Equal(v)
	}
	return false
}

// encodeAbsentPrevious is the missing-value half of copy, increment and
// tail. A clear bit already means absent when the entry is null, or
// undefined without an initial value; otherwise an explicit null is sent.
func (e *Encoder) encodeAbsentPrevious(pm *pmap.Map, in *schema.Instruction) error {
	if in.Mandatory {
		return e.missing(in, errors.CodeMissingOnEncode)
	}
	_, st := e.dict.Get(in.Slot())
	_, hasInitial := in.Literal()
	if st == dictionary.Null || st == dictionary.Undefined && !hasInitial {
		e.dict.SetNull(in.Slot())
		return e.bit(pm, false)
	}
	e.dict.SetNull(in.Slot())
	if err := e.bit(pm, true); err != nil {
		return err
	}
	e.w.WriteNull()
	return nil
}
