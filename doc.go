// Package fastcodec is a Go implementation of the FAST (FIX Adapted for
// STreaming) field-operator codec used by market data feeds.
//
// Messages are described by templates. Each template field carries a type
// and a field operator, and the operators keep state in a dictionary that
// is shared by the encoder and decoder of a stream. Fields whose value can
// be inferred from that state cost no bytes on the wire beyond a presence
// map bit.
//
// # Packages
//
//	fastcodec/
//	├── codec/       Encoder and Decoder, operator dispatch, fault reporting
//	├── schema/      Templates, instructions and registry finalization
//	├── templates/   YAML template definitions
//	├── message/     Builder and accessor interfaces, Record, JSON output
//	├── value/       Typed field values and scaled decimals
//	├── wire/        Stop-bit integers, strings and byte vectors
//	├── pmap/        Presence maps
//	├── dictionary/  Operator state keyed by scope
//	├── stream/      Byte sources and sinks, byte echo
//	├── config/      TOML configuration and logger setup
//	├── telemetry/   Prometheus counters for codec activity
//	└── errors/      Structured errors with phase and code
//
// # Quick Start
//
// Load templates, then encode and decode over any byte source and sink:
//
//	reg, err := templates.LoadFile("market.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var sink stream.BufferSink
//	enc := codec.NewEncoder(reg, &sink, codec.Options{})
//	rec := message.NewRecord(2, "Quote").
//	    Set("Symbol", value.ASCII("EURUSD"))
//	if err := enc.Encode(rec); err != nil {
//	    log.Fatal(err)
//	}
//
//	dec := codec.NewDecoder(reg, stream.NewBufferSource(sink.Bytes()), codec.Options{})
//	var out message.Collector
//	if err := dec.Decode(&out); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// A finalized Registry is read-only and safe for concurrent use. Encoder
// and Decoder own the dictionary of a single stream and must be used by one
// goroutine at a time.
//
// # Faults
//
// Faults are *errors.Error values with a phase and a code. Recoverable
// faults, such as integer overflow, are passed to the Reporter configured
// in codec.Options, which decides whether processing continues. Fatal
// faults abort the current message.
package fastcodec
