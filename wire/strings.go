package wire

// ASCII strings are stop-bit delimited. A leading 0x00 data byte is an
// escape, resolved in this order:
//
//	nullable:  80 = null, 00 80 = "", 00 00 80 = "\x00"
//	mandatory: 80 = "",   00 80 = "\x00"
//
// UTF8 strings and byte vectors are an unsigned length followed by the raw
// bytes; a nullable length of zero means null.

// ReadASCII reads an ASCII string. present is false for null.
func (r *Reader) ReadASCII(nullable bool) (s []byte, present bool, err error) {
	raw, err := r.readStopBitRun()
	if err != nil {
		return nil, false, err
	}
	raw[len(raw)-1] &^= stopBit

	if nullable {
		if len(raw) == 1 && raw[0] == 0 {
			return nil, false, nil
		}
		if raw[0] == 0 {
			raw = raw[1:]
		}
	}
	if len(raw) == 1 && raw[0] == 0 {
		return []byte{}, true, nil
	}
	if raw[0] == 0 {
		raw = raw[1:]
	}
	return raw, true, nil
}

// WriteASCII writes an ASCII string. The escape byte is emitted only when
// the payload would otherwise collide with the null or empty encodings.
func (w *Writer) WriteASCII(s []byte, nullable bool) error {
	for _, c := range s {
		if c >= stopBit {
			return ErrInvalidASCII
		}
	}
	if nullable && (len(s) == 0 || s[0] == 0) {
		w.Byte(0)
	}
	if len(s) == 0 {
		w.Byte(stopBit)
		return nil
	}
	if s[0] == 0 {
		w.Byte(0)
	}
	w.buf = append(w.buf, s[:len(s)-1]...)
	w.Byte(s[len(s)-1] | stopBit)
	return nil
}

// ReadByteVector reads a length-prefixed byte vector. A length above
// MaxByteVectorLength is ErrTooLong whatever IgnoreOverflow says: without
// the length the payload cannot be skipped, so it is never recoverable.
func (r *Reader) ReadByteVector(nullable bool) ([]byte, bool, error) {
	acc, lost, err := r.readWide(false)
	if err != nil {
		return nil, false, err
	}
	if nullable {
		if acc.IsZero() {
			return nil, false, nil
		}
		acc = acc.Sub(wideOne)
	}
	if lost || !acc.FitsUnsigned(64) || acc.Lo > MaxByteVectorLength {
		return nil, false, r.wrapError(ErrTooLong)
	}
	data, err := r.ReadBytes(int(acc.Lo))
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// WriteByteVector writes a length-prefixed byte vector.
func (w *Writer) WriteByteVector(b []byte, nullable bool) error {
	if len(b) > MaxByteVectorLength {
		return ErrTooLong
	}
	w.WriteUnsigned(uint64(len(b)), nullable)
	w.WriteBytes(b)
	return nil
}
