package value

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/viant/toolbox"
)

var (
	maxInt = decimal.NewFromInt(math.MaxInt64)
	minInt = decimal.NewFromInt(math.MinInt64)
)

// FromInterface converts plain Go data (as produced by yaml/json decoders or
// structology) into a Value. Go maps have no order, their keys are sorted.
func FromInterface(src interface{}) Value {
	switch actual := src.(type) {
	case nil:
		return Null()
	case Value:
		return actual
	case *Value:
		if actual == nil {
			return Null()
		}
		return *actual
	case bool:
		return Bool(actual)
	case string:
		return String(actual)
	case []byte:
		return String(string(actual))
	case int:
		return Int(int64(actual))
	case int8:
		return Int(int64(actual))
	case int16:
		return Int(int64(actual))
	case int32:
		return Int(int64(actual))
	case int64:
		return Int(actual)
	case uint:
		return Number(decimal.NewFromUint64(uint64(actual)))
	case uint8:
		return Int(int64(actual))
	case uint16:
		return Int(int64(actual))
	case uint32:
		return Int(int64(actual))
	case uint64:
		return Number(decimal.NewFromUint64(actual))
	case float32:
		return Number(decimal.NewFromFloat32(actual))
	case float64:
		return Float(actual)
	case decimal.Decimal:
		return Number(actual)
	case json.Number:
		if d, err := decimal.NewFromString(actual.String()); err == nil {
			return Number(d)
		}
		return String(actual.String())
	case []interface{}:
		items := make([]Value, len(actual))
		for i, item := range actual {
			items[i] = FromInterface(item)
		}
		return Sequence(items...)
	case map[string]interface{}:
		return fromStringMap(actual)
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(actual))
		for k, item := range actual {
			converted[toolbox.AsString(k)] = item
		}
		return fromStringMap(converted)
	}
	rValue := reflect.ValueOf(src)
	switch rValue.Kind() {
	case reflect.Ptr:
		if rValue.IsNil() {
			return Null()
		}
		return FromInterface(rValue.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]Value, rValue.Len())
		for i := range items {
			items[i] = FromInterface(rValue.Index(i).Interface())
		}
		return Sequence(items...)
	case reflect.Map:
		converted := make(map[string]interface{}, rValue.Len())
		iter := rValue.MapRange()
		for iter.Next() {
			converted[toolbox.AsString(iter.Key().Interface())] = iter.Value().Interface()
		}
		return fromStringMap(converted)
	}
	return String(toolbox.AsString(src))
}

func fromStringMap(src map[string]interface{}) Value {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ret := NewMap()
	for _, k := range keys {
		ret.Put(k, FromInterface(src[k]))
	}
	return ret
}

// Interface converts the value to plain Go data: nil, bool, int64 or json.Number, string,
// []interface{} or map[string]interface{}. Key order is lost, non integer numbers keep
// their exact text as json.Number.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.n.IsInteger() && v.n.Cmp(maxInt) <= 0 && v.n.Cmp(minInt) >= 0 {
			return v.n.IntPart()
		}
		return json.Number(v.n.String())
	case KindString:
		return v.s
	case KindSequence:
		ret := make([]interface{}, len(v.seq.items))
		for i, item := range v.seq.items {
			ret[i] = item.Interface()
		}
		return ret
	case KindMapping:
		ret := make(map[string]interface{}, v.m.Len())
		for i, key := range v.m.keys {
			ret[key] = v.m.values[i].Interface()
		}
		return ret
	}
	return nil
}
