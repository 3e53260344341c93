package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

func mustJSON(t *testing.T, text string) value.Value {
	ret, err := value.ParseJSON([]byte(text))
	if err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return ret
}

func TestProgrammaticWorkflowCreation(t *testing.T) {
	workflow := NewWorkflow("mt103-to-pacs008").WithPriority(10).
		WithCondition(mustJSON(t, `{"==":[{"var":"metadata.variant"},"stp"]}`))
	workflow.NewTask("map").WithFunction("map", mustJSON(t, `{"mappings":[{"path":"scratch.ref","logic":{"var":"document.block4.tags.20"}}]}`))
	workflow.NewTask("publish").WithFunction("publish", value.Null())

	assert.Empty(t, workflow.Validate())
	assert.NoError(t, workflow.Compile())
	assert.Equal(t, 10, workflow.EffectivePriority(50))

	selected, err := workflow.Selected(mustJSON(t, `{"metadata":{"variant":"stp"}}`))
	assert.NoError(t, err)
	assert.True(t, selected)

	selected, err = workflow.Selected(mustJSON(t, `{"metadata":{"variant":"cov"}}`))
	assert.NoError(t, err)
	assert.False(t, selected)
}

func TestWorkflow_Validate(t *testing.T) {
	var testCases = []struct {
		description string
		doc         string
		issues      int
	}{
		{description: "valid", doc: `{"id":"w","tasks":[{"id":"t","function":{"name":"publish"}}]}`},
		{description: "no tasks", doc: `{"id":"w","tasks":[]}`, issues: 1},
		{description: "duplicate ids", doc: `{"id":"w","tasks":[{"id":"t","function":"map"},{"id":"t","function":"map"}]}`, issues: 1},
		{description: "missing function", doc: `{"id":"w","tasks":[{"id":"t"}]}`, issues: 1},
		{description: "missing id", doc: `{"tasks":[{"id":"t","function":"map"}]}`, issues: 1},
	}
	for _, testCase := range testCases {
		workflow, err := DecodeWorkflow(mustJSON(t, testCase.doc))
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.Len(t, workflow.Validate(), testCase.issues, testCase.description)
	}
}

func TestDecodeWorkflow(t *testing.T) {
	workflow, err := DecodeWorkflow(mustJSON(t, `{"id":"w","priority":5,"condition":{"!!":[1]},"tasks":[{"id":"t","function":{"name":"serialize","input":{"format":"mx"}}}]}`))
	assert.NoError(t, err)
	assert.Equal(t, 5, *workflow.Priority)
	assert.Equal(t, "serialize", workflow.Tasks[0].Function.Name)
	assert.Equal(t, "mx", workflow.Tasks[0].Function.Input.Field("format").Str())

	workflow, err = DecodeWorkflow(mustJSON(t, `{"id":"w","tasks":[{"id":"t","function":"publish"}]}`))
	assert.NoError(t, err)
	assert.Nil(t, workflow.Priority)
	assert.Equal(t, 7, workflow.EffectivePriority(7))

	_, err = DecodeWorkflow(mustJSON(t, `{"id":"w","priority":"high"}`))
	assert.Error(t, err)

	workflow, _ = DecodeWorkflow(mustJSON(t, `{"id":"w","condition":{"nope":1},"tasks":[]}`))
	err = workflow.Compile()
	assert.True(t, errors.Is(err, types.ErrConfig))
}

func TestPackage_CheckEngine(t *testing.T) {
	var testCases = []struct {
		description string
		doc         string
		hasError    bool
	}{
		{description: "compatible", doc: `{"id":"p","engine_version":"1.4.0","required_plugins":["mt","jsonlogic"]}`},
		{description: "caret", doc: `{"id":"p","engine_version":"^1.0"}`},
		{description: "major mismatch", doc: `{"id":"p","engine_version":"2.0.0"}`, hasError: true},
		{description: "unknown plugin", doc: `{"id":"p","required_plugins":["swift-gpi"]}`, hasError: true},
	}
	for _, testCase := range testCases {
		pkg, err := DecodePackage(mustJSON(t, testCase.doc))
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		err = pkg.CheckEngine("1.2.0", []string{"mt", "mx", "jsonlogic"})
		assert.Equal(t, testCase.hasError, err != nil, testCase.description)
	}
}

func TestDecodePackage(t *testing.T) {
	pkg, err := DecodePackage(mustJSON(t, `{"id":"cbpr","workflows":{"transform":{"path":"transform/index.json"},"validate":"validate/index.json"},"scenarios":{"path":"scenarios.json"}}`))
	assert.NoError(t, err)
	assert.Equal(t, "transform/index.json", pkg.Workflows[KindTransform].Path)
	assert.Equal(t, "validate/index.json", pkg.Workflows[KindValidate].Path)
	assert.Nil(t, pkg.Workflows[KindGenerate])
	assert.Equal(t, "scenarios.json", pkg.Scenarios.Path)
	assert.Nil(t, pkg.Ordering)

	_, err = DecodePackage(mustJSON(t, `{"name":"x"}`))
	assert.Error(t, err)

	pkg, err = DecodePackage(mustJSON(t, `{"id":"cbpr","resources":{"currencies":"validate/currencies.yaml","bics":{"path":"bic.txt","format":"yaml"}}}`))
	assert.NoError(t, err)
	assert.Equal(t, "validate/currencies.yaml", pkg.Resources["currencies"].Path)
	assert.Equal(t, "yaml", pkg.Resources["bics"].Format)
	_, err = DecodePackage(mustJSON(t, `{"id":"cbpr","resources":{"currencies":{"format":"yaml"}}}`))
	assert.Error(t, err)
	_, err = DecodePackage(mustJSON(t, `{"id":"cbpr","resources":["currencies.yaml"]}`))
	assert.Error(t, err)
}

func TestDecodeIndex(t *testing.T) {
	entries, err := DecodeIndex(mustJSON(t, `[{"path":"a.yaml","direction":"mt-to-mx","message_type":"MT103","priority":20},{"path":"b.yaml","direction":"mx-to-mt","message_type":"pacs.008"}]`))
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 20, entries[0].Priority)
	assert.Equal(t, DirectionMXToMT, entries[1].Direction)

	_, err = DecodeIndex(mustJSON(t, `[{"path":"a.yaml","direction":"sideways","message_type":"MT103"}]`))
	assert.Error(t, err)
}

func TestDecodeVariantTables(t *testing.T) {
	var testCases = []struct {
		description string
		doc         string
		expectErr   bool
	}{
		{description: "mt to mx", doc: `[{"direction":"mt-to-mx","message_type":"MT103","default":"core"}]`},
		{description: "both directions", doc: `[{"message_type":"pacs.008","rules":[{"condition":true,"variant":"stp"}]}]`},
		{description: "misspelled direction", doc: `[{"direction":"mt-to-mxx","message_type":"MT103","default":"core"}]`, expectErr: true},
		{description: "auto direction", doc: `[{"direction":"auto","message_type":"MT103","default":"core"}]`, expectErr: true},
		{description: "missing message type", doc: `[{"direction":"mt-to-mx"}]`, expectErr: true},
	}
	for _, testCase := range testCases {
		tables, err := DecodeVariantTables(mustJSON(t, testCase.doc))
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
		assert.Len(t, tables, 1, testCase.description)
	}
}

func TestDetectFormat(t *testing.T) {
	format, ok := DetectFormat([]byte("\n  {1:F01BANK}"))
	assert.True(t, ok)
	assert.Equal(t, FormatMT, format)
	format, ok = DetectFormat([]byte("<?xml version=\"1.0\"?>"))
	assert.True(t, ok)
	assert.Equal(t, FormatMX, format)
	_, ok = DetectFormat([]byte("hello"))
	assert.False(t, ok)
	assert.Equal(t, FormatMX, DirectionMTToMX.Target())
	assert.Equal(t, DirectionMXToMT, From(FormatMX))
}
