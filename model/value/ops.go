package value

import (
	"strings"

	"github.com/shopspring/decimal"
)

// String stringifies the value: Null renders as an empty string, numbers as
// canonical decimals and containers as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return v.n.String()
	case KindString:
		return v.s
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}

// Truthy reports JSONLogic truthiness: Null, false, 0, "" and an empty sequence are false.
func Truthy(v Value) bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return !v.n.IsZero()
	case KindString:
		return v.s != ""
	case KindSequence:
		return len(v.seq.items) > 0
	case KindMapping:
		return true
	}
	return false
}

// AsNumber coerces a value to a decimal; strings must parse entirely as a number.
func AsNumber(v Value) (decimal.Decimal, bool) {
	switch v.kind {
	case KindNumber:
		return v.n, true
	case KindBool:
		if v.b {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	case KindString:
		text := strings.TrimSpace(v.s)
		if text == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(text)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// Compare orders two values numerically when both coerce to numbers, otherwise
// lexically by their string forms.
func Compare(a, b Value) int {
	if x, ok := AsNumber(a); ok {
		if y, ok := AsNumber(b); ok {
			return x.Cmp(y)
		}
	}
	return strings.Compare(a.String(), b.String())
}

// Equal reports deep structural equality; kinds must match.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n.Equal(b.n)
	case KindString:
		return a.s == b.s
	case KindSequence:
		if len(a.seq.items) != len(b.seq.items) {
			return false
		}
		for i := range a.seq.items {
			if !Equal(a.seq.items[i], b.seq.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if a.m.Len() != b.m.Len() {
			return false
		}
		for i, key := range a.m.keys {
			other, ok := b.m.Get(key)
			if !ok || !Equal(a.m.values[i], other) {
				return false
			}
		}
		return true
	}
	return false
}

// Equivalent is the loose equality used by comparison operators: containers compare
// structurally, Null equals only Null, scalars compare numerically when both coerce,
// lexically otherwise.
func Equivalent(a, b Value) bool {
	if a.IsContainer() || b.IsContainer() {
		return Equal(a, b)
	}
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	return Compare(a, b) == 0
}

// Clone returns a deep copy of the value
func Clone(v Value) Value {
	switch v.kind {
	case KindSequence:
		items := make([]Value, len(v.seq.items))
		for i, item := range v.seq.items {
			items[i] = Clone(item)
		}
		return Sequence(items...)
	case KindMapping:
		m := &Mapping{
			keys:   append([]string(nil), v.m.keys...),
			values: make([]Value, len(v.m.values)),
			index:  make(map[string]int, len(v.m.keys)),
		}
		for i, key := range v.m.keys {
			m.values[i] = Clone(v.m.values[i])
			m.index[key] = i
		}
		return Map(m)
	}
	return v
}
