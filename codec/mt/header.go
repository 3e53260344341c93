package mt

import (
	"fmt"

	"github.com/viant/reframe/model/value"
)

// header describes a fixed width header layout
type header []struct {
	name     string
	size     int
	optional bool
}

var (
	basicHeader = header{
		{name: "application_id", size: 1},
		{name: "service_id", size: 2},
		{name: "logical_terminal", size: 12},
		{name: "session_number", size: 4},
		{name: "sequence_number", size: 6},
	}
	inputHeader = header{
		{name: "direction", size: 1},
		{name: "message_type", size: 3},
		{name: "receiver", size: 12},
		{name: "priority", size: 1, optional: true},
		{name: "delivery_monitoring", size: 1, optional: true},
		{name: "obsolescence_period", size: 3, optional: true},
	}
	outputHeader = header{
		{name: "direction", size: 1},
		{name: "message_type", size: 3},
		{name: "input_time", size: 4},
		{name: "mir_date", size: 6},
		{name: "mir_logical_terminal", size: 12},
		{name: "mir_session_number", size: 4},
		{name: "mir_sequence_number", size: 6},
		{name: "output_date", size: 6},
		{name: "output_time", size: 4},
		{name: "priority", size: 1, optional: true},
	}
)

func (h header) decode(text string) (value.Value, error) {
	ret := value.NewMap()
	offset := 0
	for _, field := range h {
		if offset+field.size > len(text) {
			if field.optional && offset == len(text) {
				break
			}
			return value.Null(), fmt.Errorf("invalid header length %d: %v truncated", len(text), field.name)
		}
		ret.Put(field.name, value.String(text[offset:offset+field.size]))
		offset += field.size
	}
	if offset != len(text) {
		return value.Null(), fmt.Errorf("invalid header length %d: unexpected trailing %q", len(text), text[offset:])
	}
	return ret, nil
}

func (h header) encode(fields value.Value) (string, error) {
	if fields.Kind() == value.KindString {
		return fields.Str(), nil
	}
	var ret []byte
	for _, field := range h {
		text := fields.Field(field.name).String()
		if text == "" && field.optional {
			break
		}
		if len(text) != field.size {
			return "", fmt.Errorf("invalid %v: expected %d characters, but had %q", field.name, field.size, text)
		}
		ret = append(ret, text...)
	}
	return string(ret), nil
}

func decodeApplicationHeader(text string) (value.Value, error) {
	if text == "" {
		return value.Null(), fmt.Errorf("empty application header")
	}
	switch text[0] {
	case 'I':
		return inputHeader.decode(text)
	case 'O':
		return outputHeader.decode(text)
	}
	return value.Null(), fmt.Errorf("unsupported application header direction %q", text[0])
}

func encodeApplicationHeader(fields value.Value) (string, error) {
	if fields.Field("direction").String() == "O" {
		return outputHeader.encode(fields)
	}
	return inputHeader.encode(fields)
}
