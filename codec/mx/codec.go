// Package mx implements the hierarchical tagged document codec. Elements map to
// ordered mappings: attributes are stored under `@name`, text under `#text`, and
// an element with neither attributes nor children collapses to its text.
// Repeated sibling elements become a sequence under one key.
package mx

import (
	"strings"

	"github.com/viant/reframe/codec"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/value"
)

// Codec is the MX codec
type Codec struct{}

// Format returns mx
func (c *Codec) Format() model.Format { return model.FormatMX }

// Parse parses MX markup into a document
func (c *Codec) Parse(data []byte) (*codec.Document, error) {
	root, namespaces, err := parse(data)
	if err != nil {
		return nil, err
	}
	doc := &codec.Document{Root: root, Namespaces: namespaces}
	doc.Family = c.Family(doc)
	return doc, nil
}

// Family returns the message definition family, e.g. pacs.008, taken from the
// business header or the document namespace.
func (c *Codec) Family(doc *codec.Document) string {
	if identifier := findHeaderIdentifier(doc.Root, 3); identifier != "" {
		return familyOf(identifier)
	}
	if doc.Namespaces.Kind() != value.KindMapping {
		return ""
	}
	ret := ""
	doc.Namespaces.Mapping().Range(func(path string, uri value.Value) bool {
		if path == "Document" || strings.HasSuffix(path, "/Document") {
			ret = familyOf(uri.String())
			return false
		}
		return true
	})
	return ret
}

func findHeaderIdentifier(node value.Value, depth int) string {
	if depth < 0 || node.Kind() != value.KindMapping {
		return ""
	}
	if header := node.Field("AppHdr"); header.Kind() == value.KindMapping {
		if id := header.Field("MsgDefIdr").String(); id != "" {
			return id
		}
	}
	ret := ""
	node.Mapping().Range(func(key string, child value.Value) bool {
		if strings.HasPrefix(key, attrPrefix) || key == textKey {
			return true
		}
		ret = findHeaderIdentifier(child, depth-1)
		return ret == ""
	})
	return ret
}

// familyOf reduces `urn:iso:std:iso:20022:tech:xsd:pacs.008.001.08` or `pacs.008.001.08` to `pacs.008`
func familyOf(identifier string) string {
	if idx := strings.LastIndex(identifier, ":"); idx != -1 {
		identifier = identifier[idx+1:]
	}
	parts := strings.Split(strings.TrimSpace(identifier), ".")
	if len(parts) < 2 {
		return identifier
	}
	return parts[0] + "." + parts[1]
}

// Serialize renders a document as MX markup
func (c *Codec) Serialize(root value.Value, options ...codec.Option) ([]byte, error) {
	return serialize(root, codec.NewOptions(options...))
}

// New creates MX codec
func New() *Codec {
	return &Codec{}
}
