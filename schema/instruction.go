package schema

import (
	"strings"

	"github.com/wippyai/fastcodec/dictionary"
	"github.com/wippyai/fastcodec/value"
)

// Identity names a field. It is immutable once the registry is finalized.
type Identity struct {
	Name      string
	Namespace string
	ID        uint32
	Mandatory bool
}

// QualifiedName returns the name prefixed by its namespace, if any.
func (id Identity) QualifiedName() string {
	if id.Namespace == "" {
		return id.Name
	}
	return id.Namespace + "|" + id.Name
}

// Operator is the field operator with its optional literal and dictionary
// overrides.
type Operator struct {
	Kind OpKind

	// Initial is the literal text of the constant, default or initial
	// value. It is parsed against the field type during Finalize.
	Initial    string
	HasInitial bool

	// Scope and Key override the dictionary entry the operator uses.
	Scope string
	Key   string

	// PmapIndex, when nonzero, is the 1-based presence map bit a producer
	// assigns this field. Finalize checks it against the computed position.
	PmapIndex int
}

// Op returns an operator of kind k without literal.
func Op(k OpKind) Operator {
	return Operator{Kind: k}
}

// WithInitial returns a copy of o carrying literal s.
func (o Operator) WithInitial(s string) Operator {
	o.Initial = s
	o.HasInitial = true
	return o
}

// InScope returns a copy of o using the named dictionary scope.
func (o Operator) InScope(scope string) Operator {
	o.Scope = scope
	return o
}

// WithKey returns a copy of o using an explicit dictionary key.
func (o Operator) WithKey(key string) Operator {
	o.Key = key
	return o
}

// Instruction is one field of a segment. Instructions belong to exactly one
// segment and must not be shared between templates.
type Instruction struct {
	Identity
	Type Type
	Op   Operator

	// Exponent and Mantissa are set on a decimal whose parts carry their
	// own operators. Exponent is an int32 instruction, Mantissa an int64.
	Exponent *Instruction
	Mantissa *Instruction

	// Segment is the body of a group or sequence.
	Segment *Segment

	// Ref is the referenced template name. Empty means a dynamic reference
	// whose template id is carried on the wire.
	Ref string

	// Set by Finalize.
	bits    int
	slot    dictionary.Slot
	literal value.Value
	path    []string
	target  *Template
	length  *Instruction
}

// Bits returns the number of presence map bits the instruction consumes in
// its enclosing segment's map.
func (in *Instruction) Bits() int { return in.bits }

// Slot returns the dictionary slot, or dictionary.NoSlot.
func (in *Instruction) Slot() dictionary.Slot { return in.slot }

// Literal returns the parsed constant, default or initial value.
func (in *Instruction) Literal() (value.Value, bool) {
	return in.literal, in.literal.IsValid()
}

// Path returns the field path from the template root.
func (in *Instruction) Path() []string { return in.path }

// PathString returns Path joined by dots.
func (in *Instruction) PathString() string { return strings.Join(in.path, ".") }

// Target returns the template a static reference resolves to.
func (in *Instruction) Target() *Template { return in.target }

// LengthField returns the length instruction of a sequence: the explicit
// one from its segment or the implicit uInt32 nop length.
func (in *Instruction) LengthField() *Instruction { return in.length }

// IsSplitDecimal reports whether a decimal carries separate exponent and
// mantissa operators.
func (in *Instruction) IsSplitDecimal() bool {
	return in.Type == TypeDecimal && in.Exponent != nil
}

// Optional marks the field optional and returns it.
func (in *Instruction) Optional() *Instruction {
	in.Mandatory = false
	if in.Exponent != nil {
		in.Exponent.Mandatory = false
	}
	return in
}

// WithID sets the numeric field id and returns the instruction.
func (in *Instruction) WithID(id uint32) *Instruction {
	in.ID = id
	return in
}

// Segment is an ordered list of instructions in wire order.
type Segment struct {
	Instructions []*Instruction

	// Length overrides the implicit length of a sequence.
	Length *Instruction

	// Scope overrides the dictionary scope for descendants.
	Scope string

	// TypeRef is the application type name.
	TypeRef string

	bits int
}

// Bits returns the number of bits the segment's own presence map needs.
func (s *Segment) Bits() int { return s.bits }

// NeedsPmap reports whether the segment carries its own presence map on
// the wire. Groups and sequence entries omit it when no field needs a bit.
func (s *Segment) NeedsPmap() bool { return s.bits > 0 }

// Template is a named, numbered segment selectable as a message root.
type Template struct {
	Segment
	Name      string
	Namespace string
	ID        uint32

	// Reset clears the dictionary before every message using the template.
	Reset bool

	state uint8
}

// NewField creates a mandatory scalar field.
func NewField(name string, t Type, op Operator) *Instruction {
	return &Instruction{
		Identity: Identity{Name: name, Mandatory: true},
		Type:     t,
		Op:       op,
	}
}

// NewSplitDecimal creates a mandatory decimal whose exponent and mantissa
// use separate operators.
func NewSplitDecimal(name string, exponent, mantissa Operator) *Instruction {
	return &Instruction{
		Identity: Identity{Name: name, Mandatory: true},
		Type:     TypeDecimal,
		Exponent: &Instruction{Identity: Identity{Name: name, Mandatory: true}, Type: TypeInt32, Op: exponent},
		Mantissa: &Instruction{Identity: Identity{Name: name, Mandatory: true}, Type: TypeInt64, Op: mantissa},
	}
}

// NewGroup creates a mandatory group.
func NewGroup(name string, fields ...*Instruction) *Instruction {
	return &Instruction{
		Identity: Identity{Name: name, Mandatory: true},
		Type:     TypeGroup,
		Segment:  &Segment{Instructions: fields},
	}
}

// NewSequence creates a mandatory sequence with an implicit length.
func NewSequence(name string, fields ...*Instruction) *Instruction {
	return &Instruction{
		Identity: Identity{Name: name, Mandatory: true},
		Type:     TypeSequence,
		Segment:  &Segment{Instructions: fields},
	}
}

// NewTemplateRef creates a reference to the named template. An empty name
// creates a dynamic reference.
func NewTemplateRef(name string) *Instruction {
	field := name
	if field == "" {
		field = "templateRef"
	}
	return &Instruction{
		Identity: Identity{Name: field, Mandatory: true},
		Type:     TypeTemplateRef,
		Ref:      name,
	}
}

// NewTemplate creates a template.
func NewTemplate(id uint32, name string, fields ...*Instruction) *Template {
	return &Template{
		Segment: Segment{Instructions: fields},
		Name:    name,
		ID:      id,
	}
}
