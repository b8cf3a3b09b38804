package codec

import (
	stderrors "errors"
	"io"

	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/message"
	"github.com/wippyai/fastcodec/pmap"
	"github.com/wippyai/fastcodec/schema"
	"github.com/wippyai/fastcodec/value"
	"github.com/wippyai/fastcodec/wire"
)

// Decoder reads FAST messages from a byte source. It owns the dictionary
// of one stream and is not safe for concurrent use; the registry it was
// created from may be shared.
type Decoder struct {
	session
	r *wire.Reader
}

// NewDecoder creates a decoder over src. The registry must be finalized.
func NewDecoder(reg *schema.Registry, src wire.ByteSource, opts Options) *Decoder {
	d := &Decoder{
		session: newSession(reg, errors.PhaseDecode, opts),
		r:       wire.NewReader(src),
	}
	d.r.IgnoreOverflow = opts.IgnoreOverflow
	return d
}

// Position returns the number of bytes consumed.
func (d *Decoder) Position() int { return d.r.Position() }

// Decode reads one message: presence map, template id, then the template
// body. It returns io.EOF when the source ends cleanly before a message.
func (d *Decoder) Decode(mb message.MessageBuilder) error {
	start := d.r.Position()
	d.r.BeginMessage()

	pm := getPmap(0)
	defer putPmap(pm)
	if err := pm.Read(d.r); err != nil {
		if stderrors.Is(err, wire.ErrEndOfData) && d.r.Position() == start {
			return io.EOF
		}
		return d.fatal(errors.UnexpectedEnd([]string{"pmap"}))
	}

	t, err := d.templateID(pm, true)
	if err != nil {
		return err
	}
	debugf("decode message template=%d pmap=%s at=%d", t.ID, pm, start)
	return d.body(t, pm, mb)
}

// DecodeTemplate reads a message whose template the caller already
// resolved: a presence map followed by the body, no template id.
func (d *Decoder) DecodeTemplate(t *schema.Template, mb message.MessageBuilder) error {
	d.r.BeginMessage()
	if t.Reset {
		d.dict.Reset()
	}
	pm := getPmap(t.Bits())
	defer putPmap(pm)
	if err := pm.Read(d.r); err != nil {
		return d.fatal(errors.UnexpectedEnd([]string{t.Name}))
	}
	return d.body(t, pm, mb)
}

// templateID reads the template id through the header copy operator. A
// resetting template clears the dictionary, keeping only its own id.
func (d *Decoder) templateID(pm *pmap.Map, top bool) (*schema.Template, error) {
	hdr := d.reg.Header()
	v, err := d.scalar(pm, hdr)
	if err != nil {
		return nil, err
	}
	id := uint32(v.Uint())
	t, ok := d.reg.Template(id)
	if !ok {
		return nil, d.fatal(errors.UnknownTemplate(errors.PhaseDecode, id))
	}
	if top && t.Reset {
		d.dict.Reset()
		d.dict.Set(hdr.Slot(), v)
	}
	return t, nil
}

func (d *Decoder) body(t *schema.Template, pm *pmap.Map, mb message.MessageBuilder) error {
	b, err := mb.StartMessage(t)
	if err != nil {
		return d.rejected([]string{t.Name}, err)
	}
	if err := d.segment(&t.Segment, pm, b); err != nil {
		return err
	}
	if err := mb.EndMessage(b); err != nil {
		return d.rejected([]string{t.Name}, err)
	}
	return nil
}

func (d *Decoder) rejected(path []string, err error) error {
	var fe *errors.Error
	if stderrors.As(err, &fe) {
		return err
	}
	return d.fatal(errors.New(errors.PhaseDecode, errors.CodeBuilderRejected).
		Field(path...).
		Cause(err).
		Detail("builder rejected the field").
		Build())
}

func (d *Decoder) segment(seg *schema.Segment, pm *pmap.Map, b message.Builder) error {
	for _, in := range seg.Instructions {
		if err := d.instruction(in, pm, b); err != nil {
			return err
		}
	}
	return nil
}

// nestedPmap reads the presence map of a group or sequence entry, or
// returns an empty one when the segment carries none.
func (d *Decoder) nestedPmap(seg *schema.Segment, path []string) (*pmap.Map, error) {
	pm := getPmap(seg.Bits())
	if !seg.NeedsPmap() {
		return pm, nil
	}
	if err := pm.Read(d.r); err != nil {
		putPmap(pm)
		return nil, d.fatal(errors.UnexpectedEnd(path))
	}
	return pm, nil
}

func (d *Decoder) instruction(in *schema.Instruction, pm *pmap.Map, b message.Builder) error {
	d.r.BeginField(in.Name)

	switch in.Type {
	case schema.TypeGroup:
		if !in.Mandatory && !pm.Next() {
			return nil
		}
		return d.group(in, b)

	case schema.TypeSequence:
		return d.sequence(in, pm, b)

	case schema.TypeTemplateRef:
		if t := in.Target(); t != nil {
			return d.segment(&t.Segment, pm, b)
		}
		return d.dynamicRef(in, b)

	case schema.TypeFiller:
		return nil
	}

	var (
		v   value.Value
		err error
	)
	if in.IsSplitDecimal() {
		v, err = d.decodeSplitDecimal(pm, in)
	} else {
		v, err = d.scalar(pm, in)
	}
	if err != nil || !v.IsValid() {
		return err
	}
	if err := b.AddValue(in, v); err != nil {
		return d.rejected(in.Path(), err)
	}
	return nil
}

// scalar runs the dispatch cell of a value-producing instruction.
func (d *Decoder) scalar(pm *pmap.Map, in *schema.Instruction) (value.Value, error) {
	cell := decodeCell(in)
	if cell == nil {
		return value.Value{}, unsupported(&d.session, in)
	}
	return cell(d, pm, in)
}

func (d *Decoder) group(in *schema.Instruction, b message.Builder) error {
	gpm, err := d.nestedPmap(in.Segment, in.Path())
	if err != nil {
		return err
	}
	defer putPmap(gpm)

	gb, err := b.StartGroup(in)
	if err != nil {
		return d.rejected(in.Path(), err)
	}
	if err := d.segment(in.Segment, gpm, gb); err != nil {
		return err
	}
	if err := b.EndGroup(in, gb); err != nil {
		return d.rejected(in.Path(), err)
	}
	return nil
}

func (d *Decoder) sequence(in *schema.Instruction, pm *pmap.Map, b message.Builder) error {
	length := in.LengthField()
	lv, err := d.scalar(pm, length)
	if err != nil || !lv.IsValid() {
		return err
	}
	n := int(lv.Uint())

	sb, err := b.StartSequence(in, n)
	if err != nil {
		return d.rejected(in.Path(), err)
	}
	for i := 0; i < n; i++ {
		if err := d.entry(in, i, sb); err != nil {
			return err
		}
	}
	if err := b.EndSequence(in, sb); err != nil {
		return d.rejected(in.Path(), err)
	}
	return nil
}

func (d *Decoder) entry(in *schema.Instruction, i int, sb message.SequenceBuilder) error {
	epm, err := d.nestedPmap(in.Segment, in.Path())
	if err != nil {
		return err
	}
	defer putPmap(epm)

	eb, err := sb.StartEntry(i)
	if err != nil {
		return d.rejected(in.Path(), err)
	}
	if err := d.segment(in.Segment, epm, eb); err != nil {
		return err
	}
	if err := sb.EndEntry(i, eb); err != nil {
		return d.rejected(in.Path(), err)
	}
	return nil
}

// dynamicRef reads a nested presence map and template id, then the
// referenced template's body into a scope of its own.
func (d *Decoder) dynamicRef(in *schema.Instruction, b message.Builder) error {
	rpm := getPmap(0)
	defer putPmap(rpm)
	if err := rpm.Read(d.r); err != nil {
		return d.fatal(errors.UnexpectedEnd(in.Path()))
	}
	t, err := d.templateID(rpm, false)
	if err != nil {
		return err
	}

	rb, err := b.StartTemplateRef(in, t)
	if err != nil {
		return d.rejected(in.Path(), err)
	}
	if err := d.segment(&t.Segment, rpm, rb); err != nil {
		return err
	}
	if err := b.EndTemplateRef(in, rb); err != nil {
		return d.rejected(in.Path(), err)
	}
	return nil
}
