package mt

import (
	"strings"

	"github.com/viant/reframe/model/value"
)

// Field is a single block 4 field
type Field struct {
	Tag    string
	Number string
	Option string
	Lines  []string
}

// NewField creates a field from its tag and first line
func NewField(tag, first string) *Field {
	ret := &Field{Tag: tag, Number: tag, Lines: []string{first}}
	if n := len(tag); n > 2 && isLetter(tag[n-1]) {
		ret.Number = tag[:n-1]
		ret.Option = tag[n-1:]
	}
	return ret
}

// Text returns field value with lines joined by a newline
func (f *Field) Text() string {
	return strings.Join(f.Lines, "\n")
}

// Value returns field representation
func (f *Field) Value() value.Value {
	ret := value.NewMap()
	ret.Put("tag", value.String(f.Tag))
	ret.Put("number", value.String(f.Number))
	ret.Put("option", value.String(f.Option))
	ret.Put("value", value.String(f.Text()))
	lines := make([]value.Value, len(f.Lines))
	for i, line := range f.Lines {
		lines[i] = value.String(line)
	}
	ret.Put("lines", value.Sequence(lines...))
	return ret
}

// fieldOf reads a field back from its representation
func fieldOf(v value.Value) (*Field, bool) {
	tag := v.Field("tag").String()
	if tag == "" {
		number := v.Field("number").String()
		if number == "" {
			return nil, false
		}
		tag = number + v.Field("option").String()
	}
	ret := NewField(tag, "")
	text := v.Field("value")
	switch {
	case !text.IsNull() && !text.IsContainer():
		ret.Lines = splitLines(text.String())
	case v.Field("lines").Kind() == value.KindSequence && v.Field("lines").Len() > 0:
		ret.Lines = nil
		for _, line := range v.Field("lines").Items() {
			ret.Lines = append(ret.Lines, line.String())
		}
	default:
		return nil, false
	}
	return ret, true
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
