// Package errors provides structured error types for the FAST codec.
//
// Runtime faults are *Error values categorized by Phase (where the error
// occurred), Code (a stable short identifier) and Severity (whether decoding
// or encoding may continue). Schema faults found while finalizing templates
// are collected into a single *SchemaError.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.CodeOverflow).
//		Field("MDEntries", "MDEntryPx").
//		Value(raw).
//		Detail("value does not fit in int32").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Overflow(errors.PhaseDecode, path, raw, "int32")
//	err := errors.UnexpectedEnd(path)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
