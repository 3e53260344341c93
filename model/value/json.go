package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// MarshalJSON encodes the value preserving mapping key order
func (v Value) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := v.encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.n.String())
	case KindString:
		if err := writeQuoted(buf, v.s); err != nil {
			return err
		}
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.seq.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, key := range v.m.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeQuoted(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := v.m.values[i].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeQuoted(buf *bytes.Buffer, text string) error {
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(text); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) //drop encoder newline
	return nil
}

// UnmarshalJSON decodes JSON keeping object key order and exact numbers
func (v *Value) UnmarshalJSON(data []byte) error {
	ret, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = ret
	return nil
}

// ParseJSON decodes a single JSON document
func ParseJSON(data []byte) (Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	ret, err := decodeValue(decoder)
	if err != nil {
		return Null(), err
	}
	if _, err = decoder.Token(); err != io.EOF {
		return Null(), fmt.Errorf("invalid json: unexpected trailing data")
	}
	return ret, nil
}

func decodeValue(decoder *json.Decoder) (Value, error) {
	token, err := decoder.Token()
	if err != nil {
		return Null(), err
	}
	switch actual := token.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(actual), nil
	case json.Number:
		d, err := decimal.NewFromString(actual.String())
		if err != nil {
			return Null(), fmt.Errorf("invalid number %v: %w", actual, err)
		}
		return Number(d), nil
	case string:
		return String(actual), nil
	case json.Delim:
		switch actual {
		case '[':
			ret := Sequence()
			for decoder.More() {
				item, err := decodeValue(decoder)
				if err != nil {
					return Null(), err
				}
				ret.Append(item)
			}
			_, err = decoder.Token()
			return ret, err
		case '{':
			ret := NewMap()
			for decoder.More() {
				keyToken, err := decoder.Token()
				if err != nil {
					return Null(), err
				}
				key, ok := keyToken.(string)
				if !ok {
					return Null(), fmt.Errorf("invalid json: expected object key, but had %v", keyToken)
				}
				item, err := decodeValue(decoder)
				if err != nil {
					return Null(), err
				}
				ret.Put(key, item)
			}
			_, err = decoder.Token()
			return ret, err
		}
	}
	return Null(), fmt.Errorf("invalid json: unexpected token %v", token)
}
