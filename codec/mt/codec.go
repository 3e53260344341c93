// Package mt implements the block structured text codec. A message is a run of
// `{n:...}` blocks: fixed width headers in blocks 1 and 2, `{tag:value}` pairs in
// blocks 3 and 5 and the `:TAG:value` field text of block 4.
package mt

import (
	"github.com/viant/parsly"
	"github.com/viant/reframe/codec"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/value"
)

// Codec is the MT codec
type Codec struct{}

// Format returns mt
func (c *Codec) Format() model.Format { return model.FormatMT }

// Parse parses MT text into a document
func (c *Codec) Parse(data []byte) (*codec.Document, error) {
	p := &parser{cursor: parsly.NewCursor("mt", data, 0)}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	doc := &codec.Document{Root: root, Namespaces: value.NewMap()}
	doc.Family = c.Family(doc)
	return doc, nil
}

// Family returns MT plus the application header message type
func (c *Codec) Family(doc *codec.Document) string {
	messageType := value.Get(doc.Root, "block2.message_type").String()
	if messageType == "" {
		return ""
	}
	return "MT" + messageType
}

// Serialize renders a document as MT text
func (c *Codec) Serialize(root value.Value, _ ...codec.Option) ([]byte, error) {
	w := &writer{}
	if err := w.write(root); err != nil {
		return nil, err
	}
	return []byte(w.builder.String()), nil
}

// New creates MT codec
func New() *Codec {
	return &Codec{}
}
