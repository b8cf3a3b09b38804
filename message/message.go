// Package message defines the interfaces the codec uses to hand decoded
// fields to the application and to pull values for encoding, plus Record,
// a generic in-memory message that implements both sides.
package message

import (
	"github.com/wippyai/fastcodec/schema"
	"github.com/wippyai/fastcodec/value"
)

// MessageBuilder receives decoded messages.
type MessageBuilder interface {
	// StartMessage opens the root scope for a message of template t.
	StartMessage(t *schema.Template) (Builder, error)
	// EndMessage closes the root scope returned by StartMessage.
	EndMessage(b Builder) error
}

// Builder receives the fields of one scope: a message, a group, a sequence
// entry or a dynamically referenced template. Fields of statically
// referenced templates are added to the enclosing scope.
type Builder interface {
	AddValue(in *schema.Instruction, v value.Value) error

	StartGroup(in *schema.Instruction) (Builder, error)
	EndGroup(in *schema.Instruction, group Builder) error

	StartSequence(in *schema.Instruction, length int) (SequenceBuilder, error)
	EndSequence(in *schema.Instruction, seq SequenceBuilder) error

	StartTemplateRef(in *schema.Instruction, t *schema.Template) (Builder, error)
	EndTemplateRef(in *schema.Instruction, ref Builder) error
}

// SequenceBuilder receives the entries of one sequence.
type SequenceBuilder interface {
	StartEntry(index int) (Builder, error)
	EndEntry(index int, entry Builder) error
}

// Accessor supplies the fields of one scope for encoding. Absent optional
// fields report false.
type Accessor interface {
	Value(in *schema.Instruction) (value.Value, bool)
	Group(in *schema.Instruction) (Accessor, bool)
	Sequence(in *schema.Instruction) (SequenceAccessor, bool)
	TemplateRef(in *schema.Instruction) (Message, bool)
}

// SequenceAccessor supplies the entries of one sequence.
type SequenceAccessor interface {
	Len() int
	Entry(index int) Accessor
}

// Message is an Accessor that knows which template encodes it.
type Message interface {
	Accessor
	TemplateID() uint32
}
