package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseSchema Phase = "schema" // template finalize
	PhaseDecode Phase = "decode" // wire to message
	PhaseEncode Phase = "encode" // message to wire
	PhaseConfig Phase = "config" // configuration loading
)

// Code is the stable short identifier of a fault
type Code string

// Runtime codes.
const (
	CodeOverflow                Code = "overflow"
	CodeExponentRange           Code = "exponent-out-of-range"
	CodeMissingMandatoryDefault Code = "missing-mandatory-default"
	CodeMissingMandatoryCopy    Code = "missing-mandatory-copy"
	CodeMissingMandatoryIncr    Code = "missing-mandatory-increment"
	CodeMissingMandatoryTail    Code = "missing-mandatory-tail"
	CodeMandatoryNull           Code = "mandatory-null"
	CodeDeltaLength             Code = "delta-length-exceeds-previous"
	CodeUnsupportedOperator     Code = "unsupported-operator-for-type"
	CodeMissingOnEncode         Code = "missing-mandatory-on-encode"
	CodeUnexpectedEnd           Code = "unexpected-end-of-data"
	CodeConstantMismatch        Code = "constant-mismatch"
	CodeUnknownTemplate         Code = "unknown-template"
	CodeInvalidASCII            Code = "invalid-ascii"
	CodeTailShorter             Code = "tail-value-shorter"
	CodeTypeMismatch            Code = "type-mismatch"
	CodeBuilderRejected         Code = "builder-rejected"
	CodeSinkFailure             Code = "sink-failure"
)

// Schema codes.
const (
	CodeConflictingDictionary Code = "conflicting-dictionary"
	CodeMalformedInitialValue Code = "malformed-initial-value"
	CodeMissingInitialValue   Code = "missing-initial-value"
	CodeUnknownTemplateRef    Code = "unknown-template-ref"
	CodeDuplicateTemplate     Code = "duplicate-template"
	CodeInvalidPmapIndex      Code = "invalid-pmap-index"
	CodeInvalidInstruction    Code = "invalid-instruction"
)

// CodeInvalidConfig marks a configuration file or environment problem.
const CodeInvalidConfig Code = "invalid-config"

// Severity tells the caller whether processing may continue
type Severity uint8

const (
	// Recoverable faults carry a best-effort substitute value.
	Recoverable Severity = iota
	// Fatal faults abort the current message.
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "recoverable"
}

// Error is the structured runtime error used by the codec
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Code     Code
	Detail   string
	Path     []string
	Severity Severity
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Code))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Field returns the dotted field path
func (e *Error) Field() string {
	return strings.Join(e.Path, ".")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Code == t.Code
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder. Errors are fatal unless marked otherwise.
func New(phase Phase, code Code) *Builder {
	return &Builder{
		err: Error{
			Phase:    phase,
			Code:     code,
			Severity: Fatal,
		},
	}
}

// Field sets the field path
func (b *Builder) Field(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Recoverable marks the error as recoverable
func (b *Builder) Recoverable() *Builder {
	b.err.Severity = Recoverable
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Overflow creates a recoverable integer overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:    phase,
		Code:     CodeOverflow,
		Path:     path,
		Detail:   fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:    value,
		Severity: Recoverable,
	}
}

// ExponentRange creates a recoverable decimal exponent range error
func ExponentRange(phase Phase, path []string, exponent int64) *Error {
	return &Error{
		Phase:    phase,
		Code:     CodeExponentRange,
		Path:     path,
		Detail:   fmt.Sprintf("decimal exponent %d outside [-63, 63]", exponent),
		Value:    exponent,
		Severity: Recoverable,
	}
}

// UnexpectedEnd creates a fatal end-of-data error
func UnexpectedEnd(path []string) *Error {
	return &Error{
		Phase:    PhaseDecode,
		Code:     CodeUnexpectedEnd,
		Path:     path,
		Detail:   "end of data inside a field",
		Severity: Fatal,
	}
}

// MandatoryMissing creates a fatal error for a mandatory field without a
// derivable value
func MandatoryMissing(phase Phase, code Code, path []string) *Error {
	return &Error{
		Phase:    phase,
		Code:     code,
		Path:     path,
		Detail:   "mandatory field has no value",
		Severity: Fatal,
	}
}

// MandatoryNull creates a fatal error for a mandatory field whose previous
// value is null
func MandatoryNull(phase Phase, path []string) *Error {
	return &Error{
		Phase:    phase,
		Code:     CodeMandatoryNull,
		Path:     path,
		Detail:   "previous value of mandatory field is null",
		Severity: Fatal,
	}
}

// DeltaLength creates a recoverable subtraction length error
func DeltaLength(phase Phase, path []string, length, previous int) *Error {
	return &Error{
		Phase:    phase,
		Code:     CodeDeltaLength,
		Path:     path,
		Detail:   fmt.Sprintf("subtraction length %d exceeds previous length %d", length, previous),
		Value:    length,
		Severity: Recoverable,
	}
}

// ConstantMismatch creates a recoverable constant mismatch error
func ConstantMismatch(path []string, got, want any) *Error {
	return &Error{
		Phase:    PhaseEncode,
		Code:     CodeConstantMismatch,
		Path:     path,
		Detail:   fmt.Sprintf("value %v differs from constant %v", got, want),
		Value:    got,
		Severity: Recoverable,
	}
}

// UnknownTemplate creates a fatal unknown template id error
func UnknownTemplate(phase Phase, id uint32) *Error {
	return &Error{
		Phase:    phase,
		Code:     CodeUnknownTemplate,
		Detail:   fmt.Sprintf("template %d not registered", id),
		Value:    id,
		Severity: Fatal,
	}
}

// TypeMismatch creates a fatal application value type error
func TypeMismatch(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:    phase,
		Code:     CodeTypeMismatch,
		Path:     path,
		Detail:   fmt.Sprintf("got %s, want %s", got, want),
		Severity: Fatal,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, code Code, cause error, detail string) *Error {
	return &Error{
		Phase:    phase,
		Code:     code,
		Detail:   detail,
		Cause:    cause,
		Severity: Fatal,
	}
}

// Problem is a single schema definition fault
type Problem struct {
	Code     Code
	Template string
	Field    string
	Detail   string
}

func (p Problem) String() string {
	var b strings.Builder
	b.WriteString(string(p.Code))
	if p.Template != "" {
		b.WriteString(" in ")
		b.WriteString(p.Template)
		if p.Field != "" {
			b.WriteByte('.')
			b.WriteString(p.Field)
		}
	}
	if p.Detail != "" {
		b.WriteString(": ")
		b.WriteString(p.Detail)
	}
	return b.String()
}

// SchemaError is returned when templates cannot be finalized. It is always
// fatal to schema loading and never produced while decoding or encoding.
type SchemaError struct {
	Problems []Problem
}

// Add appends a problem
func (e *SchemaError) Add(code Code, template, field, detail string, args ...any) {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	e.Problems = append(e.Problems, Problem{
		Code:     code,
		Template: template,
		Field:    field,
		Detail:   detail,
	})
}

// Err returns e if any problem was recorded, nil otherwise
func (e *SchemaError) Err() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Has reports whether a problem with the given code was recorded
func (e *SchemaError) Has(code Code) bool {
	for _, p := range e.Problems {
		if p.Code == code {
			return true
		}
	}
	return false
}

func (e *SchemaError) Error() string {
	if len(e.Problems) == 0 {
		return "[schema] no problems recorded"
	}
	if len(e.Problems) == 1 {
		return "[schema] " + e.Problems[0].String()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[schema] %d problems:", len(e.Problems)))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.String())
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *SchemaError) Is(target error) bool {
	_, ok := target.(*SchemaError)
	return ok
}
