package executor

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
	"github.com/viant/reframe/policy"
	"github.com/viant/reframe/runtime/execution"
	"github.com/viant/reframe/service/action/format"
	"github.com/viant/reframe/service/action/transform"
	"github.com/viant/reframe/service/action/validator"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	functions, err := extension.NewFunctions(transform.New(), format.New(), validator.New())
	require.NoError(t, err)
	return New(functions, opts...)
}

func decodeWorkflow(t *testing.T, json string) *model.Workflow {
	doc, err := value.ParseJSON([]byte(json))
	require.NoError(t, err)
	ret, err := model.DecodeWorkflow(doc)
	require.NoError(t, err)
	return ret
}

func env() *extension.Environment {
	return &extension.Environment{Codecs: codec.NewSet(mt.New(), mx.New())}
}

func TestService_Compile(t *testing.T) {
	var testCases = []struct {
		description string
		task        string
		expectKind  types.Kind
	}{
		{description: "map", task: `{"id":"t","function":{"name":"map","input":{"mappings":[{"path":"document.x","logic":{"var":"payload"}}]}}}`},
		{description: "qualified name", task: `{"id":"t","function":"transform.publish"}`},
		{description: "unknown function", task: `{"id":"t","function":"translate"}`, expectKind: types.KindMapping},
		{description: "missing function", task: `{"id":"t"}`, expectKind: types.KindMapping},
		{description: "payload write", task: `{"id":"t","function":{"name":"map","input":{"mappings":[{"path":"payload.x","logic":1}]}}}`, expectKind: types.KindMapping},
		{description: "malformed rule", task: `{"id":"t","function":{"name":"map","input":{"mappings":[{"path":"document.x","logic":{"if":[true,1]}}]}}}`, expectKind: types.KindMapping},
		{description: "duplicate assertion", task: `{"id":"t","function":{"name":"validate","input":{"assertions":[{"id":"a","logic":true},{"id":"a","logic":true}]}}}`, expectKind: types.KindMapping},
		{description: "bad serialize format", task: `{"id":"t","function":{"name":"serialize","input":{"format":"csv"}}}`, expectKind: types.KindMapping},
	}
	srv := newTestService(t)
	for _, testCase := range testCases {
		workflow := decodeWorkflow(t, `{"id":"w","tasks":[`+testCase.task+`]}`)
		task, err := srv.Compile(workflow, workflow.Tasks[0], env())
		if testCase.expectKind != "" {
			require.Error(t, err, testCase.description)
			assert.Equal(t, testCase.expectKind, types.KindOf(err), testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, "w", task.WorkflowID, testCase.description)
	}
}

func TestService_Execute(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	srv := newTestService(t, WithListener(LogListener(zap.New(core))))
	workflow := decodeWorkflow(t, `{"id":"w","tasks":[
		{"id":"map","function":{"name":"map","input":{"mappings":[
			{"path":"document.amount","logic":{"+":[{"var":"scratch.base"},"0.10"]}},
			{"path":"document.label","logic":{"cat":["EUR ",{"var":"document.amount"}]}},
			{"path":"scratch.literal","logic":{"preserve":{"z":1,"a":2}}}
		]}}},
		{"id":"check","function":{"name":"validate","input":{"phase":"post","assertions":[
			{"id":"has-amount","logic":{"!!":[{"var":"document.amount"}]}},
			{"id":"has-ref","logic":{"!!":[{"var":"document.ref"}]},"message":"reference missing"},
			{"id":"has-bic","logic":{"!!":[{"var":"document.bic"}]}}
		]}}}
	]}`)
	ec := execution.NewContext("r1")
	require.NoError(t, ec.Set("scratch.base", value.String("1.20")))

	mapTask, err := srv.Compile(workflow, workflow.Tasks[0], env())
	require.NoError(t, err)
	require.NoError(t, srv.Execute(context.Background(), mapTask, ec))
	assert.Equal(t, "1.3", ec.Get("document.amount").String())
	assert.Equal(t, "EUR 1.3", ec.Get("document.label").String())
	assert.Equal(t, []string{"z", "a"}, ec.Get("scratch.literal").Mapping().Keys())

	checkTask, err := srv.Compile(workflow, workflow.Tasks[1], env())
	require.NoError(t, err)
	err = srv.Execute(context.Background(), checkTask, ec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrValidation))
	diagnostics := types.DiagnosticsOf(err)
	require.Len(t, diagnostics, 2)
	assert.Equal(t, "has-ref", diagnostics[0].Code)
	assert.Equal(t, "reference missing", diagnostics[0].Message)
	assert.Equal(t, "has-bic", diagnostics[1].Code)
	assert.Equal(t, "w", diagnostics[1].Workflow)
	assert.Equal(t, "check", diagnostics[1].Task)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "task executed", entries[0].Message)
	assert.Equal(t, "task failed", entries[1].Message)
}

func TestService_ExecuteStrictPaths(t *testing.T) {
	srv := newTestService(t)
	workflow := decodeWorkflow(t, `{"id":"w","tasks":[
		{"id":"map","function":{"name":"map","input":{"mappings":[{"path":"document.x","logic":{"var":"document.absent"}}]}}}
	]}`)
	task, err := srv.Compile(workflow, workflow.Tasks[0], env())
	require.NoError(t, err)

	ec := execution.NewContext("r1")
	require.NoError(t, srv.Execute(context.Background(), task, ec))
	assert.True(t, ec.Get("document.x").IsNull())

	ctx := policy.WithPolicy(context.Background(), &policy.Policy{MissingPath: "strict"})
	err = srv.Execute(ctx, task, execution.NewContext("r2"))
	assert.True(t, errors.Is(err, types.ErrMapping))
	assert.Contains(t, err.Error(), "document.absent")
}

func TestService_ExecuteNotCompiled(t *testing.T) {
	srv := newTestService(t)
	assert.Equal(t, ErrNotCompiled, srv.Execute(context.Background(), &Task{}, execution.NewContext("r")))
}
