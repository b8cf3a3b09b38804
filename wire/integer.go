package wire

// Stop-bit integer encoding: 7 data bits per byte, most significant group
// first, high bit set on the final byte only.

// readWide accumulates one stop-bit integer. lost is set when significant
// bits were shifted out of the 128-bit accumulator.
func (r *Reader) readWide(signed bool) (acc Wide, lost bool, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return Wide{}, false, err
	}
	if signed && b&signBit != 0 {
		acc = Wide{Hi: -1, Lo: ^uint64(0)}
	}
	acc = acc.shl7(b)
	for b&stopBit == 0 {
		b, err = r.ReadByte()
		if err != nil {
			return Wide{}, false, err
		}
		if signed && !acc.FitsSigned(121) || !signed && !acc.FitsUnsigned(121) {
			lost = true
		}
		acc = acc.shl7(b)
	}
	return acc, lost, nil
}

func widthMask(width Width) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<width - 1
}

// ReadUnsigned reads an unsigned integer of the given width. present is
// false when a nullable field carries null. On overflow the truncated value
// is returned together with ErrOverflow.
func (r *Reader) ReadUnsigned(width Width, nullable bool) (v uint64, present bool, err error) {
	acc, lost, err := r.readWide(false)
	if err != nil {
		return 0, false, err
	}
	if nullable {
		if acc.IsZero() {
			return 0, false, nil
		}
		acc = acc.Sub(wideOne)
	}
	v = acc.Lo & widthMask(width)
	if lost || !acc.FitsUnsigned(uint(width)) {
		return v, true, r.overflow()
	}
	return v, true, nil
}

// ReadSigned reads a signed integer of the given width. The first byte's
// bit 6 is the sign. Nullable encodings shift non-negative values up by one.
func (r *Reader) ReadSigned(width Width, nullable bool) (v int64, present bool, err error) {
	acc, present, err := r.readSignedWide(nullable)
	if err != nil || !present {
		return 0, present, err
	}
	v = signExtend(acc.Lo, width)
	if acc.lost || !acc.Wide.FitsSigned(uint(width)) {
		return v, true, r.overflow()
	}
	return v, true, nil
}

// ReadDelta reads a signed delta for a field of the given width. Deltas
// may legitimately need one bit more than the field itself, so the range
// check allows width+1 bits.
func (r *Reader) ReadDelta(width Width, nullable bool) (d Wide, present bool, err error) {
	acc, present, err := r.readSignedWide(nullable)
	if err != nil || !present {
		return Wide{}, present, err
	}
	if acc.lost || !acc.Wide.FitsSigned(uint(width)+1) {
		return acc.Wide, true, r.overflow()
	}
	return acc.Wide, true, nil
}

type signedRead struct {
	Wide
	lost bool
}

func (r *Reader) readSignedWide(nullable bool) (signedRead, bool, error) {
	acc, lost, err := r.readWide(true)
	if err != nil {
		return signedRead{}, false, err
	}
	if nullable {
		if acc.IsZero() {
			return signedRead{}, false, nil
		}
		if !acc.IsNegative() {
			acc = acc.Sub(wideOne)
		}
	}
	return signedRead{Wide: acc, lost: lost}, true, nil
}

func signExtend(v uint64, width Width) int64 {
	shift := 64 - uint(width)
	return int64(v<<shift) >> shift
}

// WriteUnsigned writes an unsigned integer. Nullable fields shift the value
// up by one so that zero can mean null.
func (w *Writer) WriteUnsigned(v uint64, nullable bool) {
	x := WideFromUint(v)
	if nullable {
		x = x.Add(wideOne)
	}
	w.writeWide(x, false)
}

// WriteSigned writes a signed integer. Nullable fields shift non-negative
// values up by one.
func (w *Writer) WriteSigned(v int64, nullable bool) {
	x := WideFromInt(v)
	if nullable && v >= 0 {
		x = x.Add(wideOne)
	}
	w.writeWide(x, true)
}

// WriteDelta writes a signed delta produced by Wide arithmetic.
func (w *Writer) WriteDelta(d Wide, nullable bool) {
	if nullable && !d.IsNegative() {
		d = d.Add(wideOne)
	}
	w.writeWide(d, true)
}

// WriteNull writes the null escape shared by every nullable encoding.
func (w *Writer) WriteNull() {
	w.Byte(stopBit)
}

// writeWide splits v into 7-bit groups, least significant first, stopping
// once the remaining groups carry no information. For signed values the
// leading group must also carry the correct sign in bit 6.
func (w *Writer) writeWide(v Wide, signed bool) {
	var groups [19]byte
	n := 0
	for {
		g := byte(v.Lo & dataBits)
		v = v.sar(7)
		groups[n] = g
		n++
		if signed {
			if v.IsZero() && g&signBit == 0 || v.Hi == -1 && v.Lo == ^uint64(0) && g&signBit != 0 {
				break
			}
		} else if v.IsZero() {
			break
		}
	}
	for i := n - 1; i > 0; i-- {
		w.buf = append(w.buf, groups[i])
	}
	w.buf = append(w.buf, groups[0]|stopBit)
}
