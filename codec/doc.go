// Package codec encodes and decodes FAST messages against a finalized
// schema.Registry.
//
// A Decoder and an Encoder each own the dictionary of one stream. The two
// sides stay in lockstep as long as they process the same messages in the
// same order with the same registry:
//
//	reg := schema.NewRegistry()
//	reg.Add(templates...)
//	if err := reg.Finalize(); err != nil { ... }
//
//	enc := codec.NewEncoder(reg, sink, codec.Options{})
//	enc.Encode(record)
//
//	dec := codec.NewDecoder(reg, src, codec.Options{})
//	var out message.Collector
//	for {
//		if err := dec.Decode(&out); err == io.EOF {
//			break
//		}
//	}
//
// Field operators are dispatched through a table indexed by value family
// and operator kind. Faults are reported as *errors.Error through the
// Reporter in Options: recoverable faults keep a substitute value and let
// the message continue unless the reporter escalates them, fatal faults
// abort the message. After a fatal fault the dictionary state is
// unspecified and the stream should be reset.
package codec
