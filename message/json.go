package message

import (
	"encoding/hex"

	"github.com/goccy/go-json"

	"github.com/wippyai/fastcodec/value"
)

// MarshalJSON renders the record as an object whose keys keep field order.
// The root object carries the template under "$template".
func (r *Record) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 64+32*len(r.fields))
	buf = append(buf, '{')
	first := true
	if r.TemplateName != "" {
		buf = append(buf, `"$template":`...)
		b, err := json.Marshal(r.TemplateName)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
		first = false
	}

	for _, f := range r.fields {
		if !first {
			buf = append(buf, ',')
		}
		first = false

		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')

		var b []byte
		switch f.Kind {
		case FieldValue:
			b, err = marshalValue(f.Value)
		case FieldSequence:
			b, err = json.Marshal(f.Entries)
		default:
			b, err = json.Marshal(f.Group)
		}
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return append(buf, '}'), nil
}

func marshalValue(v value.Value) ([]byte, error) {
	switch v.Kind() {
	case value.KindInt32, value.KindInt64:
		return json.Marshal(v.Int())
	case value.KindUint32, value.KindUint64:
		return json.Marshal(v.Uint())
	case value.KindDecimal:
		return json.Marshal(json.Number(v.Decimal().String()))
	case value.KindASCII, value.KindUTF8:
		return json.Marshal(v.Text())
	case value.KindBytes:
		return json.Marshal(hex.EncodeToString(v.Data()))
	}
	return []byte("null"), nil
}
