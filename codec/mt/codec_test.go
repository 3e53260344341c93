package mt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/reframe/codec"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

const mt103 = "{1:F01BANKBEBBAXXX0000000000}{2:I103BANKDEFFXXXXN}{3:{108:MUR123}{121:e9b7c3d4-1111-4a2b-9c1d-2e3f4a5b6c7d}}{4:\r\n" +
	":20:REF-0001\r\n" +
	":23B:CRED\r\n" +
	":32A:230915EUR1250,75\r\n" +
	":50K:/BE68539007547034\r\n" +
	"JOHN DOE\r\n" +
	"1 MAIN STREET\r\n" +
	":59:/DE89370400440532013000\r\n" +
	"JANE ROE\r\n" +
	":71A:SHA\r\n" +
	":71F:EUR1,00\r\n" +
	":71F:EUR2,00\r\n" +
	"-}{5:{CHK:ABCDEF123456}{TNG:}}"

func TestCodec_Parse(t *testing.T) {
	doc, err := New().Parse([]byte(mt103))
	if !assert.NoError(t, err) {
		return
	}
	root := doc.Root
	assert.Equal(t, "MT103", doc.Family)

	var testCases = []struct {
		description string
		path        string
		expect      string
	}{
		{description: "basic header terminal", path: "block1.logical_terminal", expect: "BANKBEBBAXXX"},
		{description: "basic header sequence", path: "block1.sequence_number", expect: "000000"},
		{description: "application header receiver", path: "block2.receiver", expect: "BANKDEFFXXXX"},
		{description: "application header priority", path: "block2.priority", expect: "N"},
		{description: "user header", path: `block3["108"]`, expect: "MUR123"},
		{description: "reference tag", path: `block4.tags["20"]`, expect: "REF-0001"},
		{description: "amount tag", path: `block4.tags["32A"]`, expect: "230915EUR1250,75"},
		{description: "multi line", path: `block4.tags["50K"]`, expect: "/BE68539007547034\nJOHN DOE\n1 MAIN STREET"},
		{description: "repeated tag", path: `block4.tags["71F"].1`, expect: "EUR2,00"},
		{description: "field number", path: "block4.fields.2.number", expect: "32"},
		{description: "field option", path: "block4.fields.2.option", expect: "A"},
		{description: "field lines", path: "block4.fields.3.lines.1", expect: "JOHN DOE"},
		{description: "field without option", path: "block4.fields.0.option", expect: ""},
		{description: "trailer", path: "block5.CHK", expect: "ABCDEF123456"},
		{description: "empty trailer", path: "block5.TNG", expect: ""},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, value.Get(root, testCase.path).String(), testCase.description)
	}
	assert.Equal(t, 8, value.Get(root, "block4.fields").Len())
}

func TestCodec_RoundTrip(t *testing.T) {
	mtCodec := New()
	doc, err := mtCodec.Parse([]byte(mt103))
	assert.NoError(t, err)
	data, err := mtCodec.Serialize(doc.Root)
	assert.NoError(t, err)
	assert.Equal(t, mt103, string(data))
}

func TestCodec_ParseLF(t *testing.T) {
	input := strings.ReplaceAll(mt103, "\r\n", "\n")
	doc, err := New().Parse([]byte(input))
	assert.NoError(t, err)
	assert.Equal(t, "JOHN DOE", value.Get(doc.Root, `block4.fields.3.lines.1`).String())
}

func TestCodec_ParseOutputHeader(t *testing.T) {
	input := "{1:F01BANKDEFFAXXX1234123456}{2:O1031200230915BANKBEBBAXXX22221234562309151201N}{4:\r\n:20:X\r\n-}"
	doc, err := New().Parse([]byte(input))
	assert.NoError(t, err)
	assert.Equal(t, "O", value.Get(doc.Root, "block2.direction").String())
	assert.Equal(t, "BANKBEBBAXXX", value.Get(doc.Root, "block2.mir_logical_terminal").String())
	data, err := New().Serialize(doc.Root)
	assert.NoError(t, err)
	assert.Equal(t, input, string(data))
}

func TestCodec_ParseErrors(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		contains    string
	}{
		{description: "not mt", input: "hello", contains: "invalid message structure"},
		{description: "empty", input: "  ", contains: "no blocks"},
		{description: "short basic header", input: "{1:F01BANK}", contains: "block 1"},
		{description: "bad application header", input: "{1:F01BANKBEBBAXXX0000000000}{2:X103}", contains: "block 2"},
		{description: "missing terminator", input: "{1:F01BANKBEBBAXXX0000000000}{4:\r\n:20:REF\r\n}", contains: "block 4"},
		{description: "text before first tag", input: "{4:\r\nfoo\r\n:20:REF\r\n-}", contains: "block 4"},
		{description: "duplicate block", input: "{4:\r\n:20:A\r\n-}{4:\r\n:20:B\r\n-}", contains: "duplicate"},
		{description: "unterminated tag block", input: "{3:{108:MUR", contains: "block 3"},
	}
	for _, testCase := range testCases {
		_, err := New().Parse([]byte(testCase.input))
		if !assert.Error(t, err, testCase.description) {
			continue
		}
		assert.True(t, errors.Is(err, types.ErrParse), testCase.description)
		assert.Contains(t, err.Error(), testCase.contains, testCase.description)
	}
}

func TestCodec_SerializeFromTags(t *testing.T) {
	root, err := value.ParseJSON([]byte(`{"block1":{"application_id":"F","service_id":"01","logical_terminal":"BANKBEBBAXXX","session_number":"0000","sequence_number":"000000"},"block2":{"direction":"I","message_type":"202","receiver":"BANKDEFFXXXX"},"block4":{"tags":{"20":"REF","21":"REL","32A":"230915EUR10,","58A":"BANKDEFF\nX"}}}`))
	assert.NoError(t, err)
	data, err := New().Serialize(root)
	assert.NoError(t, err)
	assert.Equal(t, "{1:F01BANKBEBBAXXX0000000000}{2:I202BANKDEFFXXXX}{4:\r\n:20:REF\r\n:21:REL\r\n:32A:230915EUR10,\r\n:58A:BANKDEFF\r\nX\r\n-}", string(data))
	assert.Equal(t, "MT202", New().Family(&codec.Document{Root: root}))
}

func TestCodec_SerializeErrors(t *testing.T) {
	var testCases = []struct {
		description string
		doc         string
	}{
		{description: "not mapping", doc: `"text"`},
		{description: "no blocks", doc: `{}`},
		{description: "field without tag", doc: `{"block4":{"fields":[{"value":"x"}]}}`},
		{description: "field without value", doc: `{"block4":{"fields":[{"tag":"20"}]}}`},
		{description: "tag without value", doc: `{"block4":{"tags":{"20":null}}}`},
		{description: "bad header", doc: `{"block1":{"application_id":"F"}}`},
	}
	for _, testCase := range testCases {
		root, _ := value.ParseJSON([]byte(testCase.doc))
		_, err := New().Serialize(root)
		assert.True(t, errors.Is(err, types.ErrSerialization), "%v: %v", testCase.description, err)
	}
}
