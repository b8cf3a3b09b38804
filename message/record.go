package message

import (
	"github.com/wippyai/fastcodec/schema"
	"github.com/wippyai/fastcodec/value"
)

// FieldKind says what a Field holds.
type FieldKind uint8

const (
	FieldValue FieldKind = iota
	FieldGroup
	FieldSequence
	FieldTemplateRef
)

// Field is one named entry of a Record.
type Field struct {
	Name    string
	Kind    FieldKind
	Value   value.Value
	Group   *Record
	Entries []*Record
}

// Record is a generic message: an ordered set of named fields. It
// implements Builder for decoding and Message for encoding. Fields are
// matched by instruction name.
type Record struct {
	TemplateName string
	ID           uint32

	fields []Field
	index  map[string]int
}

// NewRecord creates an empty record for the given template.
func NewRecord(id uint32, name string) *Record {
	return &Record{TemplateName: name, ID: id}
}

// TemplateID implements Message.
func (r *Record) TemplateID() uint32 { return r.ID }

// Fields returns the fields in insertion order.
func (r *Record) Fields() []Field { return r.fields }

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

// Get returns the named field.
func (r *Record) Get(name string) (Field, bool) {
	if i, ok := r.index[name]; ok {
		return r.fields[i], true
	}
	return Field{}, false
}

func (r *Record) put(f Field) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[f.Name]; ok {
		r.fields[i] = f
		return
	}
	r.index[f.Name] = len(r.fields)
	r.fields = append(r.fields, f)
}

// Set stores a scalar value and returns r.
func (r *Record) Set(name string, v value.Value) *Record {
	r.put(Field{Name: name, Kind: FieldValue, Value: v})
	return r
}

// SetGroup stores a nested group and returns r.
func (r *Record) SetGroup(name string, g *Record) *Record {
	r.put(Field{Name: name, Kind: FieldGroup, Group: g})
	return r
}

// SetSequence stores sequence entries and returns r.
func (r *Record) SetSequence(name string, entries ...*Record) *Record {
	if entries == nil {
		entries = []*Record{}
	}
	r.put(Field{Name: name, Kind: FieldSequence, Entries: entries})
	return r
}

// SetTemplateRef stores a dynamically referenced message and returns r.
func (r *Record) SetTemplateRef(name string, m *Record) *Record {
	r.put(Field{Name: name, Kind: FieldTemplateRef, Group: m})
	return r
}

// Builder side.

func (r *Record) AddValue(in *schema.Instruction, v value.Value) error {
	r.Set(in.Name, v)
	return nil
}

func (r *Record) StartGroup(in *schema.Instruction) (Builder, error) {
	return &Record{TemplateName: in.Name}, nil
}

func (r *Record) EndGroup(in *schema.Instruction, group Builder) error {
	r.SetGroup(in.Name, group.(*Record))
	return nil
}

func (r *Record) StartSequence(in *schema.Instruction, length int) (SequenceBuilder, error) {
	return &recordSequence{entries: make([]*Record, 0, min(length, 256))}, nil
}

func (r *Record) EndSequence(in *schema.Instruction, seq SequenceBuilder) error {
	r.SetSequence(in.Name, seq.(*recordSequence).entries...)
	return nil
}

func (r *Record) StartTemplateRef(in *schema.Instruction, t *schema.Template) (Builder, error) {
	return NewRecord(t.ID, t.Name), nil
}

func (r *Record) EndTemplateRef(in *schema.Instruction, ref Builder) error {
	r.SetTemplateRef(in.Name, ref.(*Record))
	return nil
}

type recordSequence struct {
	entries []*Record
}

func (s *recordSequence) StartEntry(int) (Builder, error) {
	return &Record{}, nil
}

func (s *recordSequence) EndEntry(_ int, entry Builder) error {
	s.entries = append(s.entries, entry.(*Record))
	return nil
}

// Accessor side.

func (r *Record) Value(in *schema.Instruction) (value.Value, bool) {
	f, ok := r.Get(in.Name)
	if !ok || f.Kind != FieldValue || !f.Value.IsValid() {
		return value.Value{}, false
	}
	return f.Value, true
}

func (r *Record) Group(in *schema.Instruction) (Accessor, bool) {
	f, ok := r.Get(in.Name)
	if !ok || f.Kind != FieldGroup || f.Group == nil {
		return nil, false
	}
	return f.Group, true
}

func (r *Record) Sequence(in *schema.Instruction) (SequenceAccessor, bool) {
	f, ok := r.Get(in.Name)
	if !ok || f.Kind != FieldSequence {
		return nil, false
	}
	return recordEntries(f.Entries), true
}

func (r *Record) TemplateRef(in *schema.Instruction) (Message, bool) {
	f, ok := r.Get(in.Name)
	if !ok || f.Kind != FieldTemplateRef || f.Group == nil {
		return nil, false
	}
	return f.Group, true
}

type recordEntries []*Record

func (e recordEntries) Len() int { return len(e) }
func (e recordEntries) Entry(index int) Accessor { return e[index] }

// Collector is a MessageBuilder that produces Records.
type Collector struct {
	// OnMessage, when set, receives each completed record instead of it
	// being appended to Records.
	OnMessage func(*Record) error
	Records   []*Record
}

func (c *Collector) StartMessage(t *schema.Template) (Builder, error) {
	return NewRecord(t.ID, t.Name), nil
}

func (c *Collector) EndMessage(b Builder) error {
	rec := b.(*Record)
	if c.OnMessage != nil {
		return c.OnMessage(rec)
	}
	c.Records = append(c.Records, rec)
	return nil
}

// Last returns the most recently collected record.
func (c *Collector) Last() *Record {
	if len(c.Records) == 0 {
		return nil
	}
	return c.Records[len(c.Records)-1]
}
