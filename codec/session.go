package codec

import (
	stderrors "errors"

	"github.com/wippyai/fastcodec/dictionary"
	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/schema"
	"github.com/wippyai/fastcodec/value"
	"github.com/wippyai/fastcodec/wire"
)

// session is the state shared by Decoder and Encoder: the finalized
// registry, the dictionary of one stream and the fault reporter.
type session struct {
	reg      *schema.Registry
	dict     *dictionary.Dictionary
	reporter Reporter
	phase    errors.Phase
}

func newSession(reg *schema.Registry, phase errors.Phase, opts Options) session {
	return session{
		reg:      reg,
		dict:     dictionary.New(reg.DictionarySize()),
		reporter: opts.reporter(),
		phase:    phase,
	}
}

// Dictionary exposes the session dictionary, for diagnostics.
func (s *session) Dictionary() *dictionary.Dictionary { return s.dict }

// Reset clears the dictionary, as a FAST reset message does.
func (s *session) Reset() { s.dict.Reset() }

func (s *session) fatal(err *errors.Error) error {
	err.Severity = errors.Fatal
	s.reporter.Fatal(err)
	return err
}

func (s *session) recoverable(err *errors.Error) error {
	err.Severity = errors.Recoverable
	return s.reporter.Recoverable(err)
}

func (s *session) missing(in *schema.Instruction, code errors.Code) error {
	return s.fatal(errors.MandatoryMissing(s.phase, code, in.Path()))
}

// wireError converts a primitive codec error into a reported fault. Range
// faults are recoverable and the caller keeps its substitute value when nil
// is returned.
func (s *session) wireError(in *schema.Instruction, err error, substitute value.Value) error {
	switch {
	case stderrors.Is(err, wire.ErrOverflow):
		return s.recoverable(errors.Overflow(s.phase, in.Path(), substitute, in.Type.String()))
	case stderrors.Is(err, wire.ErrExponentRange):
		return s.recoverable(errors.ExponentRange(s.phase, in.Path(), int64(substitute.Decimal().Exponent)))
	case stderrors.Is(err, wire.ErrEndOfData):
		e := errors.UnexpectedEnd(in.Path())
		e.Cause = err
		return s.fatal(e)
	case stderrors.Is(err, wire.ErrTooLong):
		return s.fatal(errors.New(s.phase, errors.CodeOverflow).
			Field(in.Path()...).
			Cause(err).
			Detail("length prefix exceeds %d bytes", wire.MaxByteVectorLength).
			Build())
	case stderrors.Is(err, wire.ErrInvalidASCII):
		return s.fatal(errors.New(s.phase, errors.CodeInvalidASCII).
			Field(in.Path()...).
			Cause(err).
			Detail("string field holds bytes above 0x7f").
			Build())
	default:
		return s.fatal(errors.New(s.phase, errors.CodeOverflow).
			Field(in.Path()...).
			Cause(err).
			Detail("value cannot be represented").
			Build())
	}
}

// previous resolves the dictionary basis of copy, increment and tail when
// the presence bit is clear. Undefined falls back to the initial value,
// which becomes the entry's value; with no initial value an optional field
// is absent and the entry becomes null.
func (s *session) previous(in *schema.Instruction, code errors.Code) (value.Value, dictionary.State, error) {
	prev, st := s.dict.Get(in.Slot())
	switch st {
	case dictionary.Assigned:
		return prev, st, nil
	case dictionary.Null:
		if in.Mandatory {
			return value.Value{}, st, s.fatal(errors.MandatoryNull(s.phase, in.Path()))
		}
		return value.Value{}, st, nil
	}
	if lit, ok := in.Literal(); ok {
		s.dict.Set(in.Slot(), lit)
		return lit, st, nil
	}
	if in.Mandatory {
		return value.Value{}, st, s.missing(in, code)
	}
	s.dict.SetNull(in.Slot())
	return value.Value{}, st, nil
}

// deltaBase returns the value a delta applies to: the previous value, else
// the initial value, else zero. A null entry has no base.
func (s *session) deltaBase(in *schema.Instruction, zero value.Value) (value.Value, error) {
	prev, st := s.dict.Get(in.Slot())
	switch st {
	case dictionary.Assigned:
		return prev, nil
	case dictionary.Null:
		return value.Value{}, s.fatal(errors.MandatoryNull(s.phase, in.Path()))
	}
	if lit, ok := in.Literal(); ok {
		return lit, nil
	}
	return zero, nil
}

// store records a freshly read literal: a value sets the entry, null
// clears it.
func (s *session) store(in *schema.Instruction, v value.Value) {
	if v.IsValid() {
		s.dict.Set(in.Slot(), v)
	} else {
		s.dict.SetNull(in.Slot())
	}
}

func zeroValue(t schema.Type) value.Value {
	switch t {
	case schema.TypeDecimal:
		return value.Dec(0, 0)
	case schema.TypeASCII, schema.TypeUTF8, schema.TypeBytes:
		return value.FromBytes(t.ValueKind(), []byte{})
	}
	return value.Integer(t.ValueKind(), 0)
}
