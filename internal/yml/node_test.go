package yml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNode_Value(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		expect      string
	}{
		{
			description: "order preserved",
			input:       "z: 1\na: text\nm:\n  - true\n  - ~\n  - 1.50\n",
			expect:      `{"z":1,"a":"text","m":[true,null,1.5]}`,
		},
		{
			description: "quoted numeric stays string",
			input:       "tag: \"20\"\n",
			expect:      `{"tag":"20"}`,
		},
		{
			description: "merge key",
			input:       "base: &b\n  x: 1\nchild:\n  <<: *b\n  y: 2\n",
			expect:      `{"base":{"x":1},"child":{"x":1,"y":2}}`,
		},
	}
	for _, testCase := range testCases {
		node, err := Decode([]byte(testCase.input))
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		actual, err := node.ToValue()
		assert.NoError(t, err, testCase.description)
		data, _ := actual.MarshalJSON()
		assert.Equal(t, testCase.expect, string(data), testCase.description)
	}
}

func TestEncode(t *testing.T) {
	node, err := Decode([]byte("b: 1\na:\n  - x\n"))
	assert.NoError(t, err)
	v, err := node.ToValue()
	assert.NoError(t, err)
	data, err := Encode(v)
	assert.NoError(t, err)
	assert.Equal(t, "b: 1\na:\n    - x\n", string(data))
	assert.NotNil(t, node.Lookup("a"))
	assert.Nil(t, node.Lookup("c"))
}
