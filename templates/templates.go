// Package templates loads FAST template definitions from YAML documents
// into a schema.Registry.
//
// A document lists templates; each field names its type, presence and
// operator:
//
//	templates:
//	  - name: Quote
//	    id: 1
//	    fields:
//	      - {name: Symbol, type: string, operator: copy}
//	      - {name: Px, type: decimal, operator: delta}
//	      - name: Size
//	        type: decimal
//	        optional: true
//	        exponent: {operator: default, value: "0"}
//	        mantissa: {operator: delta}
//	      - name: Legs
//	        type: sequence
//	        length: {name: NoLegs, operator: copy}
//	        fields:
//	          - {name: LegSymbol, type: string, operator: copy}
//	      - {type: templateRef, ref: Header}
//
// Several templates may be spread over multiple YAML documents in one
// stream.
package templates

import (
	stderrors "errors"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/schema"
)

type document struct {
	Templates []templateDef `yaml:"templates"`
}

type templateDef struct {
	Name       string     `yaml:"name"`
	Namespace  string     `yaml:"namespace"`
	ID         uint32     `yaml:"id"`
	Reset      bool       `yaml:"reset"`
	Dictionary string     `yaml:"dictionary"`
	TypeRef    string     `yaml:"typeRef"`
	Fields     []fieldDef `yaml:"fields"`
}

type operatorDef struct {
	Operator   string  `yaml:"operator"`
	Value      *string `yaml:"value"`
	Dictionary string  `yaml:"dictionary"`
	Key        string  `yaml:"key"`
	PmapIndex  int     `yaml:"pmapIndex"`
}

type fieldDef struct {
	Name      string      `yaml:"name"`
	Namespace string      `yaml:"namespace"`
	ID        uint32      `yaml:"id"`
	Type      string      `yaml:"type"`
	Optional  bool        `yaml:"optional"`
	Op        operatorDef `yaml:",inline"`

	Exponent *operatorDef `yaml:"exponent"`
	Mantissa *operatorDef `yaml:"mantissa"`

	Length  *fieldDef  `yaml:"length"`
	Fields  []fieldDef `yaml:"fields"`
	Scope   string     `yaml:"segmentDictionary"`
	TypeRef string     `yaml:"typeRef"`

	Ref string `yaml:"ref"`
}

// Parse decodes every YAML document read from r into templates. Definition
// problems are collected into one *errors.SchemaError.
func Parse(r io.Reader) ([]*schema.Template, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var (
		out      []*schema.Template
		problems errors.SchemaError
	)
	for {
		var doc document
		if err := dec.Decode(&doc); err != nil {
			if stderrors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrap(errors.PhaseSchema, errors.CodeInvalidInstruction, err, "parsing template document")
		}
		for i := range doc.Templates {
			if t := buildTemplate(&doc.Templates[i], &problems); t != nil {
				out = append(out, t)
			}
		}
	}
	if err := problems.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Load parses the templates in r and returns a finalized registry.
func Load(r io.Reader) (*schema.Registry, error) {
	tpls, err := Parse(r)
	if err != nil {
		return nil, err
	}
	reg := schema.NewRegistry()
	if err := reg.Add(tpls...); err != nil {
		return nil, err
	}
	if err := reg.Finalize(); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadFile loads a template file.
func LoadFile(path string) (*schema.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSchema, errors.CodeInvalidInstruction, err, "opening "+path)
	}
	defer f.Close()
	return Load(f)
}

type builder struct {
	template string
	problems *errors.SchemaError
}

func buildTemplate(def *templateDef, problems *errors.SchemaError) *schema.Template {
	name := def.Name
	if name == "" {
		name = "template " + strconv.FormatUint(uint64(def.ID), 10)
	}
	b := &builder{template: name, problems: problems}
	fields := b.fields(def.Fields)

	t := schema.NewTemplate(def.ID, def.Name, fields...)
	t.Namespace = def.Namespace
	t.Reset = def.Reset
	t.Scope = def.Dictionary
	t.TypeRef = def.TypeRef
	return t
}

func (b *builder) fields(defs []fieldDef) []*schema.Instruction {
	out := make([]*schema.Instruction, 0, len(defs))
	for i := range defs {
		if in := b.field(&defs[i]); in != nil {
			out = append(out, in)
		}
	}
	return out
}

func (b *builder) field(def *fieldDef) *schema.Instruction {
	typ, ok := schema.ParseType(def.Type)
	if !ok {
		b.problems.Add(errors.CodeInvalidInstruction, b.template, def.Name, "unknown field type %q", def.Type)
		return nil
	}

	var in *schema.Instruction
	switch typ {
	case schema.TypeGroup, schema.TypeSequence:
		seg := &schema.Segment{
			Instructions: b.fields(def.Fields),
			Scope:        def.Scope,
			TypeRef:      def.TypeRef,
		}
		if typ == schema.TypeGroup {
			in = schema.NewGroup(def.Name)
		} else {
			in = schema.NewSequence(def.Name)
			if def.Length != nil {
				seg.Length = b.field(lengthDef(def.Length))
			}
		}
		in.Segment = seg

	case schema.TypeTemplateRef:
		in = schema.NewTemplateRef(def.Ref)
		if def.Name != "" {
			in.Name = def.Name
		}

	case schema.TypeDecimal:
		if def.Exponent != nil || def.Mantissa != nil {
			exp, mant := def.Exponent, def.Mantissa
			if exp == nil {
				exp = &operatorDef{}
			}
			if mant == nil {
				mant = &operatorDef{}
			}
			expOp, ok1 := b.operator(def.Name, exp)
			mantOp, ok2 := b.operator(def.Name, mant)
			if !ok1 || !ok2 {
				return nil
			}
			in = schema.NewSplitDecimal(def.Name, expOp, mantOp)
			break
		}
		fallthrough

	default:
		op, ok := b.operator(def.Name, &def.Op)
		if !ok {
			return nil
		}
		in = schema.NewField(def.Name, typ, op)
	}

	in.Namespace = def.Namespace
	in.ID = def.ID
	if def.Optional {
		in.Optional()
	}
	return in
}

// lengthDef fills in the type of an explicit sequence length.
func lengthDef(def *fieldDef) *fieldDef {
	if def.Type != "" {
		return def
	}
	c := *def
	c.Type = "uInt32"
	return &c
}

func (b *builder) operator(field string, def *operatorDef) (schema.Operator, bool) {
	kind, ok := schema.ParseOpKind(def.Operator)
	if !ok {
		b.problems.Add(errors.CodeUnsupportedOperator, b.template, field, "unknown operator %q", def.Operator)
		return schema.Operator{}, false
	}
	op := schema.Op(kind).InScope(def.Dictionary).WithKey(def.Key)
	if def.Value != nil {
		op = op.WithInitial(*def.Value)
	}
	op.PmapIndex = def.PmapIndex
	return op, true
}
