// Package stream provides byte sources and sinks for the codec: in-memory
// buffers with a zero-copy fast path, io.Reader and io.Writer adapters, and
// an echo source that mirrors consumed bytes for diagnostics.
package stream

import (
	"bufio"
	"bytes"
	"io"
)

// BufferSource reads from an in-memory buffer. It offers contiguous runs
// to the decoder without copying.
type BufferSource struct {
	data []byte
	pos  int
}

// NewBufferSource creates a source over data. The slice is not copied.
func NewBufferSource(data []byte) *BufferSource {
	return &BufferSource{data: data}
}

func (s *BufferSource) NextByte() (byte, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	b := s.data[s.pos]
	s.pos++
	return b, true
}

func (s *BufferSource) Contiguous(n int) ([]byte, bool) {
	if n < 0 || s.pos+n > len(s.data) {
		return nil, false
	}
	return s.data[s.pos : s.pos+n], true
}

func (s *BufferSource) Skip(n int) {
	s.pos = min(s.pos+n, len(s.data))
}

// Remaining returns the number of unread bytes.
func (s *BufferSource) Remaining() int { return len(s.data) - s.pos }

// Offset returns the number of bytes read.
func (s *BufferSource) Offset() int { return s.pos }

// ReaderSource adapts an io.Reader. A read error ends the stream; Err
// returns it unless it was io.EOF.
type ReaderSource struct {
	r   *bufio.Reader
	err error
}

// NewReaderSource creates a buffered source over r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: bufio.NewReaderSize(r, 64<<10)}
}

func (s *ReaderSource) NextByte() (byte, bool) {
	if s.err != nil {
		return 0, false
	}
	b, err := s.r.ReadByte()
	if err != nil {
		s.err = err
		return 0, false
	}
	return b, true
}

// Err returns the error that ended the stream, or nil at a clean end.
func (s *ReaderSource) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// BufferSink collects encoded bytes in memory.
type BufferSink struct {
	buf bytes.Buffer
}

func (s *BufferSink) PutByte(b byte) error { return s.buf.WriteByte(b) }

func (s *BufferSink) Write(p []byte) (int, error) { return s.buf.Write(p) }

// Bytes returns the collected bytes.
func (s *BufferSink) Bytes() []byte { return s.buf.Bytes() }

// Len returns the number of collected bytes.
func (s *BufferSink) Len() int { return s.buf.Len() }

// Reset discards the collected bytes.
func (s *BufferSink) Reset() { s.buf.Reset() }

// WriterSink adapts an io.Writer. Call Flush after the last message.
type WriterSink struct {
	w *bufio.Writer
}

// NewWriterSink creates a buffered sink over w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: bufio.NewWriter(w)}
}

func (s *WriterSink) PutByte(b byte) error { return s.w.WriteByte(b) }

func (s *WriterSink) Write(p []byte) (int, error) { return s.w.Write(p) }

// Flush writes buffered bytes to the underlying writer.
func (s *WriterSink) Flush() error { return s.w.Flush() }
