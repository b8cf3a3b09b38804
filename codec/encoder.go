package codec

import (
	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/message"
	"github.com/wippyai/fastcodec/pmap"
	"github.com/wippyai/fastcodec/schema"
	"github.com/wippyai/fastcodec/value"
	"github.com/wippyai/fastcodec/wire"
)

// Encoder writes FAST messages to a byte sink. Each segment is encoded
// into a scratch buffer while its presence map bits are collected; the
// finished map is written in front of the buffer. Nothing reaches the
// sink for a message that fails, and its dictionary changes are undone.
type Encoder struct {
	session
	sink wire.ByteSink
	w    *wire.Writer
}

// NewEncoder creates an encoder writing to sink. The registry must be
// finalized.
func NewEncoder(reg *schema.Registry, sink wire.ByteSink, opts Options) *Encoder {
	return &Encoder{
		session: newSession(reg, errors.PhaseEncode, opts),
		sink:    sink,
	}
}

// Encode writes one message: presence map, template id, then the body of
// the template m names.
func (e *Encoder) Encode(m message.Message) error {
	t, ok := e.reg.Template(m.TemplateID())
	if !ok {
		return e.fatal(errors.UnknownTemplate(errors.PhaseEncode, m.TemplateID()))
	}
	return e.message(t, m, true)
}

// EncodeTemplate writes a message body for a template the receiver
// resolves out of band: a presence map followed by the body.
func (e *Encoder) EncodeTemplate(t *schema.Template, a message.Accessor) error {
	return e.message(t, a, false)
}

func (e *Encoder) message(t *schema.Template, a message.Accessor, header bool) error {
	out := getWriter()
	defer putWriter(out)

	e.dict.Begin()
	if !header && t.Reset {
		e.dict.Reset()
	}

	bits := t.Bits()
	if header {
		bits++
	}
	parent := e.w
	e.w = out
	err := e.nested(bits, true, func(pm *pmap.Map) error {
		if header {
			if err := e.templateID(pm, t, true); err != nil {
				return err
			}
		}
		return e.segment(&t.Segment, pm, a)
	})
	e.w = parent
	if err != nil {
		e.dict.Rollback()
		return err
	}
	e.dict.Commit()

	debugf("encode message template=%d bytes=%d", t.ID, out.Len())
	if err := out.WriteTo(e.sink); err != nil {
		return e.fatal(errors.Wrap(errors.PhaseEncode, errors.CodeSinkFailure, err, "writing message"))
	}
	return nil
}

// nested runs fn against a fresh presence map and body buffer, then
// appends the map (when withPmap) and the body to the current writer.
func (e *Encoder) nested(bits int, withPmap bool, fn func(pm *pmap.Map) error) error {
	pm := getPmap(bits)
	body := getWriter()
	parent := e.w
	e.w = body

	err := fn(pm)

	e.w = parent
	if err == nil {
		if withPmap {
			pm.Write(parent)
		}
		parent.WriteBytes(body.Bytes())
	}
	putWriter(body)
	putPmap(pm)
	return err
}

func (e *Encoder) templateID(pm *pmap.Map, t *schema.Template, top bool) error {
	hdr := e.reg.Header()
	id := value.Uint32(t.ID)
	if err := e.scalar(pm, hdr, id); err != nil {
		return err
	}
	if top && t.Reset {
		e.dict.Reset()
		e.dict.Set(hdr.Slot(), id)
	}
	return nil
}

func (e *Encoder) bit(pm *pmap.Map, set bool) error {
	if err := pm.Append(set); err != nil {
		return e.fatal(errors.New(errors.PhaseEncode, errors.CodeInvalidInstruction).
			Cause(err).
			Detail("presence map holds %d bits", pm.Capacity()).
			Build())
	}
	return nil
}

func (e *Encoder) segment(seg *schema.Segment, pm *pmap.Map, a message.Accessor) error {
	for _, in := range seg.Instructions {
		if err := e.instruction(in, pm, a); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) instruction(in *schema.Instruction, pm *pmap.Map, a message.Accessor) error {
	switch in.Type {
	case schema.TypeGroup:
		ga, ok := a.Group(in)
		if !in.Mandatory {
			if err := e.bit(pm, ok); err != nil {
				return err
			}
		}
		if !ok {
			if in.Mandatory {
				return e.missing(in, errors.CodeMissingOnEncode)
			}
			return nil
		}
		return e.nested(in.Segment.Bits(), in.Segment.NeedsPmap(), func(gpm *pmap.Map) error {
			return e.segment(in.Segment, gpm, ga)
		})

	case schema.TypeSequence:
		return e.sequence(in, pm, a)

	case schema.TypeTemplateRef:
		if t := in.Target(); t != nil {
			return e.segment(&t.Segment, pm, a)
		}
		return e.dynamicRef(in, a)

	case schema.TypeFiller:
		return nil
	}

	v, ok := a.Value(in)
	if !ok {
		v = value.Value{}
	}
	if in.IsSplitDecimal() {
		if v.IsValid() && v.Kind() != value.KindDecimal {
			return e.fatal(errors.TypeMismatch(errors.PhaseEncode, in.Path(), v.Kind().String(), value.KindDecimal.String()))
		}
		return e.encodeSplitDecimal(pm, in, v)
	}
	return e.scalar(pm, in, v)
}

// scalar checks the value type and runs the dispatch cell.
func (e *Encoder) scalar(pm *pmap.Map, in *schema.Instruction, v value.Value) error {
	if want := in.Type.ValueKind(); v.IsValid() && v.Kind() != want {
		return e.fatal(errors.TypeMismatch(errors.PhaseEncode, in.Path(), v.Kind().String(), want.String()))
	}
	cell := encodeCell(in)
	if cell == nil {
		return unsupported(&e.session, in)
	}
	return cell(e, pm, in, v)
}

func (e *Encoder) sequence(in *schema.Instruction, pm *pmap.Map, a message.Accessor) error {
	sa, ok := a.Sequence(in)
	length := value.Value{}
	if ok {
		length = value.Uint32(uint32(sa.Len()))
	}
	if err := e.scalar(pm, in.LengthField(), length); err != nil {
		return err
	}
	if !ok {
		return nil
	}
	for i := 0; i < sa.Len(); i++ {
		entry := sa.Entry(i)
		err := e.nested(in.Segment.Bits(), in.Segment.NeedsPmap(), func(epm *pmap.Map) error {
			return e.segment(in.Segment, epm, entry)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) dynamicRef(in *schema.Instruction, a message.Accessor) error {
	m, ok := a.TemplateRef(in)
	if !ok {
		return e.missing(in, errors.CodeMissingOnEncode)
	}
	t, ok := e.reg.Template(m.TemplateID())
	if !ok {
		return e.fatal(errors.UnknownTemplate(errors.PhaseEncode, m.TemplateID()))
	}
	return e.nested(1+t.Bits(), true, func(rpm *pmap.Map) error {
		if err := e.templateID(rpm, t, false); err != nil {
			return err
		}
		return e.segment(&t.Segment, rpm, m)
	})
}
