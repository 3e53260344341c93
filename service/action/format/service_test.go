package format

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/reframe/codec"
	"github.com/viant/reframe/codec/mt"
	"github.com/viant/reframe/codec/mx"
	"github.com/viant/reframe/extension"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/runtime/execution"
)

const message = "{1:F01BANKBEBBAXXX0000000000}{2:I103BANKDEFFXXXXN}{4:\r\n:20:REF-0001\r\n:32A:230915EUR1250,75\r\n-}"

func testEnv() *extension.Environment {
	return &extension.Environment{
		Codecs:   codec.NewSet(mt.New(), mx.New()),
		Ordering: codec.Ordering{"Document": {"Ref", "Amt"}},
	}
}

func run(t *testing.T, name string, input interface{}, ec *execution.Context) error {
	method, err := New().Method(name)
	require.NoError(t, err)
	return method(context.Background(), input, ec)
}

func TestService_Parse(t *testing.T) {
	var testCases = []struct {
		description string
		method      string
		direction   model.Direction
		payload     string
		expectPath  string
		expect      string
		expectKind  types.Kind
	}{
		{description: "source format mt", method: "parse-source", direction: model.DirectionMTToMX, payload: message, expectPath: `document.block4.tags["20"]`, expect: "REF-0001"},
		{description: "explicit mx", method: "parse-mx", direction: model.DirectionMTToMX, payload: `<Document><Ref>R1</Ref></Document>`, expectPath: "document.Document.Ref", expect: "R1"},
		{description: "target format mx", method: "parse-target", direction: model.DirectionMTToMX, payload: `<Document><Ref>R2</Ref></Document>`, expectPath: "document.Document.Ref", expect: "R2"},
		{description: "malformed", method: "parse-mt", payload: "{9:x}", expectKind: types.KindParse},
		{description: "unknown direction", method: "parse-source", payload: message, expectKind: types.KindConfig},
	}
	for _, testCase := range testCases {
		ec := execution.NewContext("r1", execution.WithDirection(testCase.direction))
		require.NoError(t, ec.SetPayload(value.String(testCase.payload)))
		input := &ParseInput{}
		require.NoError(t, input.Init(testEnv()))
		err := run(t, testCase.method, input, ec)
		if testCase.expectKind != "" {
			assert.Equal(t, testCase.expectKind, types.KindOf(err), testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, ec.Get(testCase.expectPath).String(), testCase.description)
	}
}

func TestService_ParseNamespaces(t *testing.T) {
	ec := execution.NewContext("r1", execution.WithDirection(model.DirectionMXToMT))
	require.NoError(t, ec.Set("scratch.text", value.String(`<Document xmlns="urn:x"><Ref>R1</Ref></Document>`)))
	input := &ParseInput{Source: "scratch.text", Target: "scratch.parsed"}
	require.NoError(t, input.Init(testEnv()))
	require.NoError(t, run(t, "parse-source", input, ec))
	assert.Equal(t, "R1", ec.Get("scratch.parsed.Document.Ref").String())
	assert.Equal(t, "urn:x", ec.Get("metadata.namespaces.Document").String())

	input = &ParseInput{Source: "scratch.missing"}
	require.NoError(t, input.Init(testEnv()))
	assert.True(t, errors.Is(run(t, "parse-source", input, ec), types.ErrParse))
}

func TestService_Serialize(t *testing.T) {
	ec := execution.NewContext("r1", execution.WithDirection(model.DirectionMTToMX))
	doc, err := value.ParseJSON([]byte(`{"Document":{"Amt":"10","Ref":"R1"}}`))
	require.NoError(t, err)
	require.NoError(t, ec.Set("document", doc))
	require.NoError(t, ec.Set("metadata.namespaces", value.FromInterface(map[string]interface{}{"Document": "urn:x"})))

	input := &SerializeInput{}
	require.NoError(t, input.Init(testEnv()))
	require.NoError(t, run(t, "serialize", input, ec))
	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<Document xmlns=\"urn:x\">\n  <Ref>R1</Ref>\n  <Amt>10</Amt>\n</Document>", ec.Get(execution.OutputPath).String())

	strict := &SerializeInput{Strict: true, Target: "scratch.strict"}
	require.NoError(t, strict.Init(&extension.Environment{Codecs: codec.NewSet(mt.New(), mx.New())}))
	err = run(t, "serialize-mx", strict, ec)
	assert.True(t, errors.Is(err, types.ErrSerialization))

	mtInput := &SerializeInput{}
	require.NoError(t, mtInput.Init(testEnv()))
	err = run(t, "serialize-mt", mtInput, ec)
	assert.True(t, errors.Is(err, types.ErrSerialization))

	assert.Error(t, (&SerializeInput{Target: "payload"}).Init(testEnv()))
}
