package value

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseJSON(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		expect      string
		hasError    bool
	}{
		{description: "ordered keys", input: `{"b":1,"a":{"z":true,"y":null}}`, expect: `{"b":1,"a":{"z":true,"y":null}}`},
		{description: "exact decimal", input: `[0.1, 12345678901234567890.25]`, expect: `[0.1,12345678901234567890.25]`},
		{description: "escaped string", input: `"a\"b\n"`, expect: `"a\"b\n"`},
		{description: "trailing data", input: `{} {}`, hasError: true},
		{description: "malformed", input: `{"a":`, hasError: true},
	}
	for _, testCase := range testCases {
		actual, err := ParseJSON([]byte(testCase.input))
		if testCase.hasError {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
		data, err := actual.MarshalJSON()
		assert.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, string(data), testCase.description)
	}
}

func TestTruthy(t *testing.T) {
	var testCases = []struct {
		description string
		value       Value
		expect      bool
	}{
		{description: "null", value: Null(), expect: false},
		{description: "false", value: Bool(false), expect: false},
		{description: "zero", value: Int(0), expect: false},
		{description: "number", value: Float(0.5), expect: true},
		{description: "empty string", value: String(""), expect: false},
		{description: "string zero", value: String("0"), expect: true},
		{description: "empty sequence", value: Sequence(), expect: false},
		{description: "sequence", value: Sequence(Null()), expect: true},
		{description: "empty mapping", value: NewMap(), expect: true},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, Truthy(testCase.value), testCase.description)
	}
}

func TestEquivalent(t *testing.T) {
	assert.True(t, Equivalent(Int(1), String("1")))
	assert.True(t, Equivalent(String("1.50"), Float(1.5)))
	assert.False(t, Equivalent(Null(), Int(0)))
	assert.True(t, Equivalent(Null(), Null()))
	assert.False(t, Equivalent(Sequence(Int(1)), Int(1)))
	assert.False(t, Equal(Int(1), String("1")))
	assert.True(t, Compare(String("10"), Int(9)) > 0)
	assert.True(t, Compare(String("abc"), String("abd")) < 0)
}

func TestClone(t *testing.T) {
	original, _ := ParseJSON([]byte(`{"a":[1,{"b":2}]}`))
	cloned := Clone(original)
	Get(cloned, "a").Append(Int(3))
	cloned, _ = Set(cloned, "a.1.b", Int(5))
	assert.Equal(t, 2, Get(original, "a").Len())
	assert.Equal(t, "2", Get(original, "a.1.b").String())
	assert.True(t, Equal(Get(cloned, "a.1.b"), Int(5)))
}

func TestFromInterface(t *testing.T) {
	actual := FromInterface(map[string]interface{}{
		"b":    []interface{}{1, "x", nil},
		"a":    map[interface{}]interface{}{"k": 2.5},
		"flag": true,
	})
	data, err := actual.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `{"a":{"k":2.5},"b":[1,"x",null],"flag":true}`, string(data))

	assert.EqualValues(t, map[string]interface{}{
		"a":    map[string]interface{}{"k": json.Number("2.5")},
		"b":    []interface{}{int64(1), "x", nil},
		"flag": true,
	}, actual.Interface())
	assert.True(t, Equal(Number(decimal.RequireFromString("7")), FromInterface(uint8(7))))
}

func TestMapping(t *testing.T) {
	m := NewMapping()
	m.Put("x", Int(1))
	m.Put("y", Int(2))
	m.Put("z", Int(3))
	m.Delete("y")
	assert.Equal(t, []string{"x", "z"}, m.Keys())
	v, ok := m.Get("z")
	assert.True(t, ok)
	assert.Equal(t, "3", v.String())
	assert.False(t, m.Has("y"))
}
