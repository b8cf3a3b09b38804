package stream

import (
	"encoding/hex"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/fastcodec/wire"
)

// EchoMode selects how an EchoSource renders consumed bytes.
type EchoMode uint8

const (
	EchoNone EchoMode = iota
	EchoHex
	EchoRaw
)

// ParseEchoMode resolves "none", "hex" or "raw".
func ParseEchoMode(s string) (EchoMode, error) {
	switch s {
	case "", "none":
		return EchoNone, nil
	case "hex":
		return EchoHex, nil
	case "raw":
		return EchoRaw, nil
	}
	return EchoNone, fmt.Errorf("unknown echo mode %q", s)
}

// EchoSource wraps a source and mirrors every consumed byte to a writer,
// marking message and, optionally, field boundaries. When a logger is set
// each completed message is also logged at debug level as one hex string.
// It deliberately hides the wrapped source's contiguous fast path so that
// no byte bypasses the echo.
type EchoSource struct {
	src    wire.ByteSource
	out    io.Writer
	mode   EchoMode
	fields bool
	log    *zap.Logger

	messages int
	offset   int
	pending  []byte
}

// EchoOption configures an EchoSource.
type EchoOption func(*EchoSource)

// WithFieldMarks prints field names before their bytes.
func WithFieldMarks() EchoOption {
	return func(s *EchoSource) { s.fields = true }
}

// WithEchoLogger logs each message's bytes to l.
func WithEchoLogger(l *zap.Logger) EchoOption {
	return func(s *EchoSource) { s.log = l }
}

// NewEchoSource wraps src. out may be nil when only logging is wanted.
func NewEchoSource(src wire.ByteSource, out io.Writer, mode EchoMode, opts ...EchoOption) *EchoSource {
	s := &EchoSource{src: src, out: out, mode: mode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EchoSource) NextByte() (byte, bool) {
	b, ok := s.src.NextByte()
	if !ok {
		return 0, false
	}
	s.offset++
	if s.log != nil {
		s.pending = append(s.pending, b)
	}
	if s.out != nil {
		switch s.mode {
		case EchoHex:
			fmt.Fprintf(s.out, "%02x ", b)
		case EchoRaw:
			_, _ = s.out.Write([]byte{b})
		}
	}
	return b, true
}

func (s *EchoSource) BeginMessage() {
	s.flushLog()
	s.messages++
	if s.out != nil && s.mode == EchoHex {
		fmt.Fprintf(s.out, "\n# message %d @%d\n", s.messages, s.offset)
	}
}

func (s *EchoSource) BeginField(name string) {
	if s.fields && s.out != nil && s.mode == EchoHex {
		fmt.Fprintf(s.out, "\n  %s: ", name)
	}
}

// Close logs the bytes of the last message.
func (s *EchoSource) Close() error {
	s.flushLog()
	if s.out != nil && s.mode == EchoHex {
		_, err := io.WriteString(s.out, "\n")
		return err
	}
	return nil
}

func (s *EchoSource) flushLog() {
	if s.log == nil || len(s.pending) == 0 {
		return
	}
	s.log.Debug("message bytes",
		zap.Int("message", s.messages),
		zap.Int("length", len(s.pending)),
		zap.String("hex", hex.EncodeToString(s.pending)),
	)
	s.pending = s.pending[:0]
}
