package wire

// Writer accumulates encoded bytes for one message segment.
type Writer struct {
	buf []byte
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset discards the contents but keeps the capacity.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteTo copies the contents to sink.
func (w *Writer) WriteTo(sink ByteSink) error {
	if bw, ok := sink.(interface{ Write([]byte) (int, error) }); ok {
		_, err := bw.Write(w.buf)
		return err
	}
	for _, b := range w.buf {
		if err := sink.PutByte(b); err != nil {
			return err
		}
	}
	return nil
}
