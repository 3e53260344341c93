// Package value defines the generic structured value tree used for every payload,
// intermediate artifact and output handled by the engine.
//
// A Value is one of Null, Bool, Number, String, Sequence or Mapping. Containers are
// reference types: copying a Value shares its Sequence or Mapping, use Clone for a
// deep copy. Mapping preserves insertion order and numbers are exact decimals.
package value

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

type sequence struct {
	items []Value
}

// Value represents a node of the structured value tree. The zero value is Null.
type Value struct {
	kind Kind
	b    bool
	n    decimal.Decimal
	s    string
	seq  *sequence
	m    *Mapping
}

// Null returns the null value
func Null() Value { return Value{} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value
func Number(d decimal.Decimal) Value { return Value{kind: KindNumber, n: d} }

// Int returns a numeric value for an integer
func Int(i int64) Value { return Number(decimal.NewFromInt(i)) }

// Float returns a numeric value for a float
func Float(f float64) Value { return Number(decimal.NewFromFloat(f)) }

// String returns a string value
func String(s string) Value { return Value{kind: KindString, s: s} }

// Sequence returns a sequence value holding the supplied items
func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, seq: &sequence{items: items}}
}

// Map wraps a mapping into a value; nil creates an empty mapping
func Map(m *Mapping) Value {
	if m == nil {
		m = NewMapping()
	}
	return Value{kind: KindMapping, m: m}
}

// NewMap returns an empty mapping value
func NewMap() Value { return Map(nil) }

// Kind returns value kind
func (v Value) Kind() Kind { return v.kind }

// IsNull returns true for Null
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsContainer returns true for Sequence and Mapping
func (v Value) IsContainer() bool { return v.kind == KindSequence || v.kind == KindMapping }

// Bool returns the boolean payload, false for other kinds
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Decimal returns the numeric payload, zero for other kinds
func (v Value) Decimal() decimal.Decimal {
	if v.kind != KindNumber {
		return decimal.Zero
	}
	return v.n
}

// Str returns the string payload, empty for other kinds
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.s
}

// Items returns sequence items; the slice is shared with the value
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.seq.items
}

// Mapping returns the mapping payload or nil
func (v Value) Mapping() *Mapping {
	if v.kind != KindMapping {
		return nil
	}
	return v.m
}

// Len returns the number of items of a container or the byte length of a string
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq.items)
	case KindMapping:
		return v.m.Len()
	case KindString:
		return len(v.s)
	}
	return 0
}

// Index returns the i-th sequence item or Null
func (v Value) Index(i int) Value {
	if v.kind != KindSequence || i < 0 || i >= len(v.seq.items) {
		return Null()
	}
	return v.seq.items[i]
}

// Field returns the mapping entry for key or Null
func (v Value) Field(key string) Value {
	if v.kind != KindMapping {
		return Null()
	}
	ret, _ := v.m.Get(key)
	return ret
}

// Append adds items to a sequence value, it is a no-op for other kinds
func (v Value) Append(items ...Value) {
	if v.kind != KindSequence {
		return
	}
	v.seq.items = append(v.seq.items, items...)
}

// setIndex stores item at index i, padding the sequence with Null
func (v Value) setIndex(i int, item Value) {
	for len(v.seq.items) <= i {
		v.seq.items = append(v.seq.items, Null())
	}
	v.seq.items[i] = item
}

// Put sets a mapping entry, it is a no-op for other kinds
func (v Value) Put(key string, item Value) {
	if v.kind != KindMapping {
		return
	}
	v.m.Put(key, item)
}
