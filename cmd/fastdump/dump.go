package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/fastcodec/codec"
	"github.com/wippyai/fastcodec/message"
	"github.com/wippyai/fastcodec/schema"
	"github.com/wippyai/fastcodec/stream"
	"github.com/wippyai/fastcodec/telemetry"
	"github.com/wippyai/fastcodec/wire"
)

// entry is one decoded message with its position in the input.
type entry struct {
	index  int
	offset int
	size   int
	record *message.Record
	raw    []byte // set when the input is held in memory
}

type stats struct {
	messages int
	bytes    int
	verified int
}

// dumper decodes a stream and hands every message to emit. When verify is
// set the input must be held in memory; every record is re-encoded and
// compared with the bytes it was decoded from.
type dumper struct {
	reg    *schema.Registry
	opts   codec.Options
	log    *zap.Logger
	verify bool
	emit   func(entry) error
}

func (d *dumper) run(src wire.ByteSource, data []byte) (stats, error) {
	var st stats

	decOpts := d.opts
	decOpts.Reporter = telemetry.NewReporter(codec.NewLogReporter(d.log, d.opts.Strict), telemetry.Decode)
	dec := codec.NewDecoder(d.reg, src, decOpts)

	var (
		sink stream.BufferSink
		enc  *codec.Encoder
	)
	if d.verify {
		encOpts := d.opts
		encOpts.Reporter = telemetry.NewReporter(codec.NewLogReporter(d.log, d.opts.Strict), telemetry.Encode)
		enc = codec.NewEncoder(d.reg, &sink, encOpts)
	}

	var current entry
	out := &message.Collector{OnMessage: func(rec *message.Record) error {
		current.record = rec
		return nil
	}}
	builder := &telemetry.CountingBuilder{Next: out}

	for {
		start := dec.Position()
		current = entry{index: st.messages, offset: start}

		err := dec.Decode(builder)
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			return st, fmt.Errorf("message %d at offset %d: %w", st.messages, start, err)
		}
		current.size = dec.Position() - start
		if data != nil {
			current.raw = data[start:dec.Position()]
		}
		st.messages++
		st.bytes += current.size

		if enc != nil {
			began := time.Now()
			if err := d.check(enc, &sink, current); err != nil {
				return st, err
			}
			st.verified++
			telemetry.RecordMessage(telemetry.Encode, current.record.TemplateName, current.size, time.Since(began))
		}
		if err := d.emit(current); err != nil {
			return st, err
		}
	}
}

func (d *dumper) check(enc *codec.Encoder, sink *stream.BufferSink, e entry) error {
	sink.Reset()
	if err := enc.Encode(e.record); err != nil {
		return fmt.Errorf("re-encode message %d: %w", e.index, err)
	}
	if !bytes.Equal(sink.Bytes(), e.raw) {
		d.log.Error("re-encoded message differs",
			zap.Int("message", e.index),
			zap.Int("offset", e.offset),
			zap.String("decoded", hex.EncodeToString(e.raw)),
			zap.String("encoded", hex.EncodeToString(sink.Bytes())),
		)
		return fmt.Errorf("message %d: re-encoded bytes differ", e.index)
	}
	return nil
}
