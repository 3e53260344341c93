package mx

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/viant/reframe/codec"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

type writer struct {
	encoder *xml.Encoder
	options *codec.Options
}

func serialize(root value.Value, options *codec.Options) ([]byte, error) {
	if root.Kind() != value.KindMapping || root.Len() != 1 {
		return nil, types.NewError(types.KindSerialization, "invalid mx document: expected single root element")
	}
	buf := &bytes.Buffer{}
	buf.WriteString(header)
	w := &writer{encoder: xml.NewEncoder(buf), options: options}
	w.encoder.Indent("", "  ")
	name := root.Mapping().Keys()[0]
	if err := w.writeElement(name, name, root.Field(name)); err != nil {
		return nil, err
	}
	if err := w.encoder.Flush(); err != nil {
		return nil, types.WrapError(types.KindSerialization, err, "failed to flush %v", name)
	}
	return buf.Bytes(), nil
}

func (w *writer) writeElement(name, path string, v value.Value) error {
	if v.Kind() == value.KindSequence {
		for _, item := range v.Items() {
			if item.Kind() == value.KindSequence {
				return types.NewError(types.KindSerialization, "element %v: nested sequence", path)
			}
			if err := w.writeElement(name, path, item); err != nil {
				return err
			}
		}
		return nil
	}
	if strings.HasPrefix(name, attrPrefix) || name == textKey || name == "" {
		return types.NewError(types.KindSerialization, "invalid element name %q at %v", name, path)
	}
	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: w.namespaceAttrs(path)}
	if v.Kind() != value.KindMapping {
		return w.writeLeaf(start, v)
	}
	var children []string
	text := ""
	v.Mapping().Range(func(key string, item value.Value) bool {
		switch {
		case strings.HasPrefix(key, attrPrefix):
			// qualified names such as xsi:schemaLocation are written as parsed
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: key[1:]}, Value: item.String()})
		case key == textKey:
			text = item.String()
		default:
			children = append(children, key)
		}
		return true
	})
	ordered, err := w.order(name, path, children)
	if err != nil {
		return err
	}
	if err = w.encoder.EncodeToken(start); err != nil {
		return types.WrapError(types.KindSerialization, err, "element %v", path)
	}
	if text != "" {
		if err = w.encoder.EncodeToken(xml.CharData(text)); err != nil {
			return types.WrapError(types.KindSerialization, err, "element %v", path)
		}
	}
	for _, child := range ordered {
		if err = w.writeElement(child, path+"/"+child, v.Field(child)); err != nil {
			return err
		}
	}
	if err = w.encoder.EncodeToken(start.End()); err != nil {
		return types.WrapError(types.KindSerialization, err, "element %v", path)
	}
	return nil
}

func (w *writer) writeLeaf(start xml.StartElement, v value.Value) error {
	if err := w.encoder.EncodeToken(start); err != nil {
		return types.WrapError(types.KindSerialization, err, "element %v", start.Name.Local)
	}
	if text := v.String(); text != "" {
		if err := w.encoder.EncodeToken(xml.CharData(text)); err != nil {
			return types.WrapError(types.KindSerialization, err, "element %v", start.Name.Local)
		}
	}
	if err := w.encoder.EncodeToken(start.End()); err != nil {
		return types.WrapError(types.KindSerialization, err, "element %v", start.Name.Local)
	}
	return nil
}

// order arranges child names by the ordering table, unlisted children keep document order
func (w *writer) order(name, path string, children []string) ([]string, error) {
	if len(children) == 0 {
		return nil, nil
	}
	sequence, ok := w.options.Ordering.Lookup(name)
	if !ok {
		if w.options.Strict {
			return nil, types.NewError(types.KindSerialization, "element %v: no ordering defined for %v", path, name)
		}
		return children, nil
	}
	present := make(map[string]bool, len(children))
	for _, child := range children {
		present[child] = true
	}
	ret := make([]string, 0, len(children))
	for _, child := range sequence {
		if present[child] {
			ret = append(ret, child)
			delete(present, child)
		}
	}
	for _, child := range children {
		if present[child] {
			ret = append(ret, child)
		}
	}
	return ret, nil
}

func (w *writer) namespaceAttrs(path string) []xml.Attr {
	namespaces := w.options.Namespaces
	if namespaces.Kind() != value.KindMapping {
		return nil
	}
	var ret []xml.Attr
	namespaces.Mapping().Range(func(key string, uri value.Value) bool {
		switch {
		case key == path:
			ret = append(ret, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: uri.String()})
		case strings.HasPrefix(key, path+"#"):
			ret = append(ret, xml.Attr{Name: xml.Name{Local: "xmlns:" + key[len(path)+1:]}, Value: uri.String()})
		}
		return true
	})
	return ret
}
