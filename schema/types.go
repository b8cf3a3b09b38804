package schema

import (
	"github.com/wippyai/fastcodec/value"
	"github.com/wippyai/fastcodec/wire"
)

// Type is the field type tag of an instruction.
type Type uint8

const (
	TypeInt32 Type = iota
	TypeUint32
	TypeInt64
	TypeUint64
	TypeDecimal
	TypeASCII
	TypeUTF8
	TypeBytes
	TypeGroup
	TypeSequence
	TypeTemplateRef
	TypeFiller
)

var typeNames = [...]string{
	TypeInt32:       "int32",
	TypeUint32:      "uInt32",
	TypeInt64:       "int64",
	TypeUint64:      "uInt64",
	TypeDecimal:     "decimal",
	TypeASCII:       "string",
	TypeUTF8:        "unicode",
	TypeBytes:       "byteVector",
	TypeGroup:       "group",
	TypeSequence:    "sequence",
	TypeTemplateRef: "templateRef",
	TypeFiller:      "filler",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// ParseType resolves a type name. Besides the canonical names it accepts
// the lower-case and "ascii"/"utf8"/"bytes" spellings.
func ParseType(s string) (Type, bool) {
	switch s {
	case "int32":
		return TypeInt32, true
	case "uInt32", "uint32":
		return TypeUint32, true
	case "int64":
		return TypeInt64, true
	case "uInt64", "uint64":
		return TypeUint64, true
	case "decimal":
		return TypeDecimal, true
	case "string", "ascii":
		return TypeASCII, true
	case "unicode", "utf8":
		return TypeUTF8, true
	case "byteVector", "bytes":
		return TypeBytes, true
	case "group":
		return TypeGroup, true
	case "sequence":
		return TypeSequence, true
	case "templateRef":
		return TypeTemplateRef, true
	case "filler":
		return TypeFiller, true
	}
	return 0, false
}

// IsInteger reports whether t is one of the four integer types.
func (t Type) IsInteger() bool {
	return t <= TypeUint64
}

// IsSigned reports whether t is a signed integer type.
func (t Type) IsSigned() bool {
	return t == TypeInt32 || t == TypeInt64
}

// IsString reports whether t is carried as a byte string.
func (t Type) IsString() bool {
	return t == TypeASCII || t == TypeUTF8 || t == TypeBytes
}

// IsScalar reports whether t produces a single value.
func (t Type) IsScalar() bool {
	return t <= TypeBytes
}

// Width returns the wire width of an integer type.
func (t Type) Width() wire.Width {
	if t == TypeInt64 || t == TypeUint64 {
		return wire.Width64
	}
	return wire.Width32
}

// ValueKind returns the value kind produced by a scalar type.
func (t Type) ValueKind() value.Kind {
	switch t {
	case TypeInt32:
		return value.KindInt32
	case TypeUint32:
		return value.KindUint32
	case TypeInt64:
		return value.KindInt64
	case TypeUint64:
		return value.KindUint64
	case TypeDecimal:
		return value.KindDecimal
	case TypeASCII:
		return value.KindASCII
	case TypeUTF8:
		return value.KindUTF8
	case TypeBytes:
		return value.KindBytes
	}
	return value.KindInvalid
}

// OpKind is the field operator.
type OpKind uint8

const (
	OpNop OpKind = iota
	OpConstant
	OpDefault
	OpCopy
	OpDelta
	OpIncrement
	OpTail

	OpCount
)

var opNames = [...]string{
	OpNop:       "nop",
	OpConstant:  "constant",
	OpDefault:   "default",
	OpCopy:      "copy",
	OpDelta:     "delta",
	OpIncrement: "increment",
	OpTail:      "tail",
}

func (k OpKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}
	return "unknown"
}

// ParseOpKind resolves an operator name. An empty name is nop.
func ParseOpKind(s string) (OpKind, bool) {
	if s == "" || s == "none" {
		return OpNop, true
	}
	for k, name := range opNames {
		if name == s {
			return OpKind(k), true
		}
	}
	return 0, false
}

// UsesDictionary reports whether the operator keeps a previous value.
func (k OpKind) UsesDictionary() bool {
	switch k {
	case OpCopy, OpDelta, OpIncrement, OpTail:
		return true
	}
	return false
}

// validOps lists the operators each type accepts. Decimal here is a whole
// decimal; split decimals validate their parts as integers.
var validOps = [...][]OpKind{
	TypeInt32:       {OpNop, OpConstant, OpDefault, OpCopy, OpDelta, OpIncrement},
	TypeUint32:      {OpNop, OpConstant, OpDefault, OpCopy, OpDelta, OpIncrement},
	TypeInt64:       {OpNop, OpConstant, OpDefault, OpCopy, OpDelta, OpIncrement},
	TypeUint64:      {OpNop, OpConstant, OpDefault, OpCopy, OpDelta, OpIncrement},
	TypeDecimal:     {OpNop, OpConstant, OpDefault, OpCopy, OpDelta},
	TypeASCII:       {OpNop, OpConstant, OpDefault, OpCopy, OpDelta, OpTail},
	TypeUTF8:        {OpNop, OpConstant, OpDefault, OpCopy, OpDelta, OpTail},
	TypeBytes:       {OpNop, OpConstant, OpDefault, OpCopy, OpDelta, OpTail},
	TypeGroup:       {OpNop},
	TypeSequence:    {OpNop},
	TypeTemplateRef: {OpNop},
	TypeFiller:      {OpNop},
}

// ValidOperator reports whether operator k is defined for type t.
func ValidOperator(t Type, k OpKind) bool {
	if int(t) >= len(validOps) {
		return false
	}
	for _, ok := range validOps[t] {
		if ok == k {
			return true
		}
	}
	return false
}
