// Package codec defines the contract shared by the wire format codecs. Each codec
// turns raw text into a structured document and renders a document back into
// text; the mt and mx sub-packages provide the implementations.
package codec

import (
	"fmt"

	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/value"
)

// Document is a parsed message
type Document struct {
	// Root is the structured message
	Root value.Value
	// Family identifies the message type, e.g. MT103 or pacs.008
	Family string
	// Namespaces maps element path to namespace URI (mx only)
	Namespaces value.Value
}

// Codec parses and renders one wire format
type Codec interface {
	Format() model.Format
	Parse(data []byte) (*Document, error)
	Family(doc *Document) string
	Serialize(root value.Value, options ...Option) ([]byte, error)
}

// Options controls serialization
type Options struct {
	Strict     bool
	Ordering   Ordering
	Namespaces value.Value
}

// Option customises serialization
type Option func(o *Options)

// NewOptions applies options
func NewOptions(options ...Option) *Options {
	ret := &Options{}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// WithStrict enables strict serialization
func WithStrict(strict bool) Option {
	return func(o *Options) { o.Strict = strict }
}

// WithOrdering sets element ordering table
func WithOrdering(ordering Ordering) Option {
	return func(o *Options) { o.Ordering = ordering }
}

// WithNamespaces sets namespace declarations
func WithNamespaces(namespaces value.Value) Option {
	return func(o *Options) { o.Namespaces = namespaces }
}

// Ordering maps element name to ordered child element names
type Ordering map[string][]string

// Lookup returns child order for element
func (o Ordering) Lookup(element string) ([]string, bool) {
	if o == nil {
		return nil, false
	}
	ret, ok := o[element]
	return ret, ok
}

// DecodeOrdering builds an ordering table from its decoded document
func DecodeOrdering(doc value.Value) (Ordering, error) {
	if doc.IsNull() {
		return nil, nil
	}
	if doc.Kind() != value.KindMapping {
		return nil, fmt.Errorf("invalid ordering table: expected mapping, but had %v", doc.Kind())
	}
	ret := Ordering{}
	var err error
	doc.Mapping().Range(func(key string, v value.Value) bool {
		if v.Kind() != value.KindSequence {
			err = fmt.Errorf("invalid ordering for %v: expected sequence, but had %v", key, v.Kind())
			return false
		}
		for _, item := range v.Items() {
			ret[key] = append(ret[key], item.String())
		}
		return true
	})
	return ret, err
}

// Set holds codecs by format
type Set map[model.Format]Codec

// NewSet creates a codec set
func NewSet(codecs ...Codec) Set {
	ret := Set{}
	for _, c := range codecs {
		ret[c.Format()] = c
	}
	return ret
}

// Lookup returns codec for format
func (s Set) Lookup(format model.Format) (Codec, error) {
	if ret, ok := s[format]; ok {
		return ret, nil
	}
	return nil, fmt.Errorf("unsupported format: %v", format)
}
