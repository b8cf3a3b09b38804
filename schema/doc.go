// Package schema is the in-memory model of FAST templates.
//
// A Template is a numbered Segment, a Segment is an ordered list of
// Instructions, and every scalar Instruction carries an Operator that
// decides how its value is compressed against the dictionary.
//
// Templates are collected in a Registry. Registry.Finalize runs once after
// the model is assembled and:
//
//   - rejects operators that are not defined for the field type
//   - parses constant, default and initial literals
//   - resolves static template references and detects cycles
//   - counts presence map bits per instruction and per segment
//   - assigns every (scope, key) dictionary entry a dense slot number
//
// After Finalize the model is read-only and may be shared by any number of
// decoders and encoders.
package schema
