package schema

import (
	"fmt"
	"sort"

	"github.com/wippyai/fastcodec/dictionary"
	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/value"
)

// Dictionary scope names with special meaning. Any other name is a
// user-defined dictionary shared by every field that names it.
const (
	ScopeGlobal   = dictionary.Global
	ScopeTemplate = "template"
	ScopeType     = "type"
)

const templateIDKey = "\x00templateID"

// Registry holds a set of templates. Templates are added, then Finalize
// validates them and precomputes presence map bit counts and dictionary
// slots. A finalized registry is immutable and safe for concurrent use.
type Registry struct {
	templates []*Template
	byID      map[uint32]*Template
	byName    map[string]*Template
	layout    *dictionary.Layout
	header    *Instruction
	finalized bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends templates. It fails once the registry is finalized.
func (r *Registry) Add(templates ...*Template) error {
	if r.finalized {
		return fmt.Errorf("registry already finalized")
	}
	r.templates = append(r.templates, templates...)
	return nil
}

// Finalized reports whether Finalize succeeded.
func (r *Registry) Finalized() bool { return r.finalized }

// Template returns the template with the given id.
func (r *Registry) Template(id uint32) (*Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Lookup returns the template with the given name.
func (r *Registry) Lookup(name string) (*Template, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Templates returns all templates ordered by id.
func (r *Registry) Templates() []*Template {
	out := make([]*Template, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DictionarySize returns the number of dictionary slots a session needs.
func (r *Registry) DictionarySize() int {
	if r.layout == nil {
		return 0
	}
	return r.layout.Len()
}

// Layout returns the slot assignment, for diagnostics.
func (r *Registry) Layout() *dictionary.Layout { return r.layout }

// Header returns the synthetic instruction that carries a message's
// template id: a mandatory uInt32 copy on a reserved global entry.
func (r *Registry) Header() *Instruction { return r.header }

// Finalize validates every template, resolves static references, computes
// presence map bit counts and assigns dictionary slots. All problems are
// collected into one *errors.SchemaError.
func (r *Registry) Finalize() error {
	f := &finalizer{
		reg:    r,
		layout: dictionary.NewLayout(),
		kinds:  make(map[dictionary.Slot]value.Kind),
		byID:   make(map[uint32]*Template, len(r.templates)),
		byName: make(map[string]*Template, len(r.templates)),
	}

	r.header = &Instruction{
		Identity: Identity{Name: "templateID", Mandatory: true},
		Type:     TypeUint32,
		Op:       Op(OpCopy),
		bits:     1,
		path:     []string{"templateID"},
	}
	r.header.slot = f.layout.Slot(dictionary.Key{Scope: ScopeGlobal, Name: templateIDKey})
	f.kinds[r.header.slot] = value.KindUint32

	for _, t := range r.templates {
		if prev, dup := f.byID[t.ID]; dup {
			f.problems.Add(errors.CodeDuplicateTemplate, t.Name, "", "id %d already used by %s", t.ID, prev.Name)
			continue
		}
		if _, dup := f.byName[t.Name]; dup && t.Name != "" {
			f.problems.Add(errors.CodeDuplicateTemplate, t.Name, "", "name already registered")
			continue
		}
		f.byID[t.ID] = t
		if t.Name != "" {
			f.byName[t.Name] = t
		}
		t.state = stateUnvisited
	}

	for _, t := range r.templates {
		if f.byID[t.ID] != t {
			continue
		}
		scope := t.Scope
		if scope == "" {
			scope = ScopeGlobal
		}
		f.template = t
		f.segment(&t.Segment, scope, t.TypeRef, []string{t.Name})
	}

	for _, t := range r.templates {
		if f.byID[t.ID] == t {
			f.templateBits(t)
		}
	}

	if err := f.problems.Err(); err != nil {
		return err
	}
	r.byID = f.byID
	r.byName = f.byName
	r.layout = f.layout
	r.finalized = true
	return nil
}

const (
	stateUnvisited uint8 = iota
	stateVisiting
	stateDone
)

type finalizer struct {
	reg      *Registry
	layout   *dictionary.Layout
	kinds    map[dictionary.Slot]value.Kind
	byID     map[uint32]*Template
	byName   map[string]*Template
	template *Template
	problems errors.SchemaError
}

func (f *finalizer) add(code errors.Code, in *Instruction, detail string, args ...any) {
	f.problems.Add(code, f.template.Name, in.PathString(), detail, args...)
}

func (f *finalizer) segment(seg *Segment, scope, typeRef string, path []string) {
	if seg.Scope != "" {
		scope = seg.Scope
	}
	if seg.TypeRef != "" {
		typeRef = seg.TypeRef
	}
	for _, in := range seg.Instructions {
		in.path = append(append([]string(nil), path...), in.Name)
		f.instruction(in, scope, typeRef)
	}
}

func (f *finalizer) instruction(in *Instruction, scope, typeRef string) {
	in.slot = dictionary.NoSlot
	in.literal = value.Value{}
	in.target = nil
	in.length = nil

	if !ValidOperator(in.Type, in.Op.Kind) {
		f.add(errors.CodeUnsupportedOperator, in, "operator %s is not defined for %s", in.Op.Kind, in.Type)
		return
	}

	switch in.Type {
	case TypeGroup:
		if in.Segment == nil {
			f.add(errors.CodeInvalidInstruction, in, "group without body")
			return
		}
		f.segment(in.Segment, scope, typeRef, in.path)

	case TypeSequence:
		if in.Segment == nil {
			f.add(errors.CodeInvalidInstruction, in, "sequence without body")
			return
		}
		length := in.Segment.Length
		if length == nil {
			length = &Instruction{
				Identity: Identity{Name: in.Name + "Length"},
				Type:     TypeUint32,
			}
		}
		length.Mandatory = in.Mandatory
		length.path = append(append([]string(nil), in.path...), length.Name)
		if length.Type != TypeUint32 {
			f.add(errors.CodeInvalidInstruction, in, "sequence length must be uInt32, got %s", length.Type)
			return
		}
		in.length = length
		f.scalar(length, scope, typeRef)
		f.segment(in.Segment, scope, typeRef, in.path)

	case TypeTemplateRef:
		if in.Ref == "" {
			return
		}
		t, ok := f.byName[in.Ref]
		if !ok {
			f.add(errors.CodeUnknownTemplateRef, in, "template %q is not registered", in.Ref)
			return
		}
		in.target = t

	case TypeFiller:

	case TypeDecimal:
		if in.Exponent == nil && in.Mantissa == nil {
			f.scalar(in, scope, typeRef)
			return
		}
		if in.Exponent == nil || in.Mantissa == nil || in.Exponent.Type != TypeInt32 || in.Mantissa.Type != TypeInt64 {
			f.add(errors.CodeInvalidInstruction, in, "split decimal needs an int32 exponent and an int64 mantissa")
			return
		}
		in.Exponent.Mandatory = in.Mandatory
		in.Mantissa.Mandatory = true
		in.Exponent.path = in.path
		in.Mantissa.path = in.path
		f.scalarKeyed(in.Exponent, scope, typeRef, in.QualifiedName()+"/exponent")
		f.scalarKeyed(in.Mantissa, scope, typeRef, in.QualifiedName()+"/mantissa")
		if lit, ok := in.Exponent.Literal(); ok {
			if e := lit.Int(); e < value.MinExponent || e > value.MaxExponent {
				f.add(errors.CodeMalformedInitialValue, in, "exponent %d out of range", e)
			}
		}

	default:
		f.scalar(in, scope, typeRef)
	}
}

func (f *finalizer) scalar(in *Instruction, scope, typeRef string) {
	f.scalarKeyed(in, scope, typeRef, in.QualifiedName())
}

// scalarKeyed validates the operator of a value-producing instruction,
// parses its literal and assigns its dictionary slot.
func (f *finalizer) scalarKeyed(in *Instruction, scope, typeRef, key string) {
	in.slot = dictionary.NoSlot
	in.literal = value.Value{}

	op := in.Op
	if !ValidOperator(in.Type, op.Kind) {
		f.add(errors.CodeUnsupportedOperator, in, "operator %s is not defined for %s", op.Kind, in.Type)
		return
	}

	if op.HasInitial {
		lit, err := ParseLiteral(in.Type, op.Initial)
		if err != nil {
			f.add(errors.CodeMalformedInitialValue, in, "%q is not a valid %s: %v", op.Initial, in.Type, err)
			return
		}
		in.literal = lit
	} else if op.Kind == OpConstant {
		f.add(errors.CodeMissingInitialValue, in, "constant operator needs a value")
		return
	}

	if !op.Kind.UsesDictionary() {
		return
	}

	if op.Scope != "" {
		scope = op.Scope
	}
	if op.Key != "" {
		key = op.Key
	}
	switch scope {
	case ScopeTemplate:
		scope = "template:" + f.template.Name
	case ScopeType:
		if typeRef == "" {
			typeRef = f.template.Name
		}
		scope = "type:" + typeRef
	}

	slot := f.layout.Slot(dictionary.Key{Scope: scope, Name: key})
	kind := in.Type.ValueKind()
	if prev, ok := f.kinds[slot]; ok && prev != kind {
		f.add(errors.CodeConflictingDictionary, in, "entry %s:%s holds %s, field is %s", scope, key, prev, kind)
		return
	}
	f.kinds[slot] = kind
	in.slot = slot
}

// templateBits returns the presence map bits of a template's body and
// computes the bit counts of every instruction beneath it.
func (f *finalizer) templateBits(t *Template) int {
	switch t.state {
	case stateDone:
		return t.bits
	case stateVisiting:
		f.problems.Add(errors.CodeInvalidInstruction, t.Name, "", "static template reference cycle")
		return 0
	}
	t.state = stateVisiting
	prev := f.template
	f.template = t
	f.segmentBits(&t.Segment)
	f.template = prev
	t.state = stateDone
	return t.bits
}

func (f *finalizer) segmentBits(seg *Segment) {
	n := 0
	for _, in := range seg.Instructions {
		b := f.instructionBits(in)
		if idx := in.Op.PmapIndex; idx != 0 && (b != 1 || idx != n+1) {
			f.add(errors.CodeInvalidPmapIndex, in, "declared bit %d, computed %d (uses %d bits)", idx, n+1, b)
		}
		n += b
	}
	seg.bits = n
}

func (f *finalizer) instructionBits(in *Instruction) int {
	switch in.Type {
	case TypeGroup:
		if in.Segment != nil {
			f.segmentBits(in.Segment)
		}
		if in.Mandatory {
			in.bits = 0
		} else {
			in.bits = 1
		}
	case TypeSequence:
		in.bits = 0
		if in.Segment != nil {
			f.segmentBits(in.Segment)
		}
		if in.length != nil {
			in.bits = opBits(in.length)
			in.length.bits = in.bits
		}
	case TypeTemplateRef:
		in.bits = 0
		if in.target != nil {
			in.bits = f.templateBits(in.target)
		}
	case TypeFiller:
		in.bits = 0
	case TypeDecimal:
		if in.IsSplitDecimal() && in.Mantissa != nil {
			in.Exponent.bits = opBits(in.Exponent)
			in.Mantissa.bits = opBits(in.Mantissa)
			in.bits = in.Exponent.bits + in.Mantissa.bits
		} else {
			in.bits = opBits(in)
		}
	default:
		in.bits = opBits(in)
	}
	return in.bits
}

// opBits is the presence map usage of a scalar operator.
func opBits(in *Instruction) int {
	switch in.Op.Kind {
	case OpNop, OpDelta:
		return 0
	case OpConstant:
		if in.Mandatory {
			return 0
		}
		return 1
	default:
		return 1
	}
}
