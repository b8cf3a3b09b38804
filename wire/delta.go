package wire

// CommonPrefix returns the length of the longest common prefix of a and b.
func CommonPrefix(a, b []byte) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// CommonSuffix returns the length of the longest common suffix of a and b.
func CommonSuffix(a, b []byte) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}

// StringDelta computes the subtraction length and difference that turn prev
// into cur. A non-negative length trims the back of prev and appends diff; a
// negative length -(n+1) trims n bytes from the front and prepends diff, so
// that front and back removal of zero bytes stay distinct.
func StringDelta(prev, cur []byte) (sub int32, diff []byte) {
	prefix := CommonPrefix(prev, cur)
	suffix := CommonSuffix(prev, cur)
	if prefix >= suffix {
		return int32(len(prev) - prefix), cur[prefix:]
	}
	n := len(prev) - suffix
	return -int32(n) - 1, cur[:len(cur)-suffix]
}

// ApplyStringDelta applies a subtraction length and difference to prev.
// When the length exceeds len(prev) it is clamped and clamped is true.
func ApplyStringDelta(prev []byte, sub int32, diff []byte) (out []byte, clamped bool) {
	front := sub < 0
	n := int(sub)
	if front {
		n = -n - 1
	}
	if n > len(prev) {
		n = len(prev)
		clamped = true
	}

	out = make([]byte, 0, len(prev)-n+len(diff))
	if front {
		out = append(out, diff...)
		out = append(out, prev[n:]...)
	} else {
		out = append(out, prev[:len(prev)-n]...)
		out = append(out, diff...)
	}
	return out, clamped
}

// Tail returns the suffix of cur that, applied to prev with ApplyTail,
// reproduces cur. ok is false when cur is shorter than prev, which a tail
// cannot express.
func Tail(prev, cur []byte) (tail []byte, ok bool) {
	switch {
	case len(cur) < len(prev):
		return nil, false
	case len(cur) == len(prev):
		return cur[CommonPrefix(prev, cur):], true
	default:
		return cur, true
	}
}

// ApplyTail replaces the end of prev with tail. A tail longer than prev
// replaces it entirely.
func ApplyTail(prev, tail []byte) []byte {
	keep := max(len(prev)-len(tail), 0)
	out := make([]byte, 0, keep+len(tail))
	out = append(out, prev[:keep]...)
	return append(out, tail...)
}
