package schema

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/fastcodec/value"
)

// ParseLiteral parses the text of a constant, default or initial value for
// a scalar type. Byte vector literals are hexadecimal; whitespace between
// digit pairs is ignored.
func ParseLiteral(t Type, s string) (value.Value, error) {
	switch t {
	case TypeInt32:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int32(int32(v)), nil
	case TypeUint32:
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return value.Value{}, err
		}
		return value.Uint32(uint32(v)), nil
	case TypeInt64:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int64(v), nil
	case TypeUint64:
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Uint64(v), nil
	case TypeDecimal:
		d, err := value.ParseDecimal(s)
		if err != nil {
			return value.Value{}, err
		}
		if d.Exponent < value.MinExponent || d.Exponent > value.MaxExponent {
			return value.Value{}, fmt.Errorf("exponent %d out of range", d.Exponent)
		}
		return value.FromDecimal(d), nil
	case TypeASCII:
		for i := 0; i < len(s); i++ {
			if s[i] >= 0x80 {
				return value.Value{}, fmt.Errorf("non-ASCII byte %#x at %d", s[i], i)
			}
		}
		return value.ASCII(s), nil
	case TypeUTF8:
		if !utf8.ValidString(s) {
			return value.Value{}, fmt.Errorf("invalid UTF-8")
		}
		return value.UTF8(s), nil
	case TypeBytes:
		b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
		if err != nil {
			return value.Value{}, err
		}
		return value.FromBytes(value.KindBytes, b), nil
	}
	return value.Value{}, fmt.Errorf("type %s has no literal form", t)
}
