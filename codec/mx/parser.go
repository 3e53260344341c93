package mx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

const (
	attrPrefix = "@"
	textKey    = "#text"
	xmlSpace   = "http://www.w3.org/XML/1998/namespace"
)

type frame struct {
	name     string
	path     string
	attrs    *value.Mapping
	children value.Value
	text     strings.Builder
	prefixes map[string]string // namespace URI to in-scope prefix
}

// qualify renders an attribute name with the prefix it was written with
func (f *frame) qualify(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	if prefix, ok := f.prefixes[name.Space]; ok {
		return prefix + ":" + name.Local
	}
	if name.Space == xmlSpace {
		return "xml:" + name.Local
	}
	// undeclared prefixes are left untranslated by the decoder
	return name.Space + ":" + name.Local
}

func (f *frame) value() value.Value {
	text := strings.TrimSpace(f.text.String())
	if f.attrs.Len() == 0 && f.children.Len() == 0 {
		return value.String(text)
	}
	ret := value.NewMap()
	f.attrs.Range(func(key string, v value.Value) bool {
		ret.Put(key, v)
		return true
	})
	f.children.Mapping().Range(func(key string, v value.Value) bool {
		ret.Put(key, v)
		return true
	})
	if text != "" {
		ret.Put(textKey, value.String(text))
	}
	return ret
}

// parse decodes the token stream into an element tree
func parse(data []byte) (value.Value, value.Value, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	namespaces := value.NewMap()
	var (
		stack []*frame
		root  value.Value
	)
	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return value.Null(), value.Null(), parseError(decoder, err)
		}
		switch actual := token.(type) {
		case xml.StartElement:
			if len(stack) == 0 && !root.IsNull() {
				return value.Null(), value.Null(), types.NewError(types.KindParse, "line %d: multiple root elements", line(decoder))
			}
			f := &frame{name: actual.Name.Local, path: actual.Name.Local, attrs: value.NewMapping(), children: value.NewMap()}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				f.path = parent.path + "/" + f.name
				f.prefixes = parent.prefixes
			}
			declared := false
			for _, attr := range actual.Attr {
				switch {
				case attr.Name.Space == "" && attr.Name.Local == "xmlns":
					namespaces.Put(f.path, value.String(attr.Value))
				case attr.Name.Space == "xmlns":
					namespaces.Put(f.path+"#"+attr.Name.Local, value.String(attr.Value))
					if !declared {
						f.prefixes = inherit(f.prefixes)
						declared = true
					}
					f.prefixes[attr.Value] = attr.Name.Local
				}
			}
			for _, attr := range actual.Attr {
				if (attr.Name.Space == "" && attr.Name.Local == "xmlns") || attr.Name.Space == "xmlns" {
					continue
				}
				f.attrs.Put(attrPrefix+f.qualify(attr.Name), value.String(attr.Value))
			}
			stack = append(stack, f)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(actual)
			} else if strings.TrimSpace(string(actual)) != "" {
				return value.Null(), value.Null(), types.NewError(types.KindParse, "line %d: text outside root element", line(decoder))
			}
		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				root = value.NewMap()
				root.Put(f.name, f.value())
				continue
			}
			putRepeated(stack[len(stack)-1].children, f.name, f.value())
		}
	}
	if len(stack) > 0 {
		return value.Null(), value.Null(), types.NewError(types.KindParse, "line %d: unterminated element %v", line(decoder), stack[len(stack)-1].name)
	}
	if root.IsNull() {
		return value.Null(), value.Null(), types.NewError(types.KindParse, "invalid document: no root element")
	}
	return root, namespaces, nil
}

func inherit(prefixes map[string]string) map[string]string {
	ret := make(map[string]string, len(prefixes)+1)
	for uri, prefix := range prefixes {
		ret[uri] = prefix
	}
	return ret
}

func putRepeated(m value.Value, key string, item value.Value) {
	prev, ok := m.Mapping().Get(key)
	switch {
	case !ok:
		m.Put(key, item)
	case prev.Kind() == value.KindSequence:
		prev.Append(item)
	default:
		m.Put(key, value.Sequence(prev, item))
	}
}

func parseError(decoder *xml.Decoder, err error) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return types.WrapError(types.KindParse, err, "line %d", syntaxErr.Line)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return types.WrapError(types.KindParse, err, "line %d: unterminated markup", line(decoder))
	}
	return types.WrapError(types.KindParse, err, "line %d", line(decoder))
}

func line(decoder *xml.Decoder) int {
	ret, _ := decoder.InputPos()
	return ret
}
