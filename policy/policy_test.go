package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/reframe/model/expr"
)

func TestPolicy_IsAllowed(t *testing.T) {
	var testCases = []struct {
		description string
		policy      *Policy
		workflow    string
		expect      bool
	}{
		{description: "nil policy", workflow: "w1", expect: true},
		{description: "deny mode", policy: &Policy{Mode: ModeDeny}, workflow: "w1", expect: false},
		{description: "blocked", policy: &Policy{BlockList: []string{"W1"}}, workflow: "w1", expect: false},
		{description: "allowed", policy: &Policy{AllowList: []string{"w1"}}, workflow: "w1", expect: true},
		{description: "not in allow list", policy: &Policy{AllowList: []string{"w2"}}, workflow: "w1", expect: false},
		{description: "block wins", policy: &Policy{AllowList: []string{"w1"}, BlockList: []string{"w1"}}, workflow: "w1", expect: false},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, testCase.policy.IsAllowed(testCase.workflow), testCase.description)
	}
}

func TestPolicy_Context(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	p := FromConfig(&Config{BlockList: []string{"w"}, MissingPath: "strict"})
	ctx := WithPolicy(context.Background(), p)
	assert.Same(t, p, FromContext(ctx))
	assert.Len(t, p.EvalOptions(), 1)
	assert.Equal(t, expr.MissingStrict, p.MissingPath)
	assert.Equal(t, "strict", ToConfig(p).MissingPath)
	var empty *Policy
	assert.Nil(t, empty.EvalOptions())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, (&Config{Mode: ModeAuto, MissingPath: "lenient"}).Validate())
	assert.Error(t, (&Config{Mode: "ask"}).Validate())
	assert.Error(t, (&Config{MissingPath: "loose"}).Validate())
}
