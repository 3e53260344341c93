package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/policy"
	"github.com/viant/reframe/runtime/execution"
)

func present(path string) interface{} {
	return map[string]interface{}{"!!": []interface{}{map[string]interface{}{"var": path}}}
}

func TestService_Validate(t *testing.T) {
	var testCases = []struct {
		description string
		assertions  []*Assertion
		policy      *policy.Policy
		expectIDs   []string
	}{
		{
			description: "all pass",
			assertions:  []*Assertion{{ID: "ref", Logic: present("document.ref")}},
		},
		{
			description: "fail collect",
			assertions: []*Assertion{
				{ID: "ref", Logic: present("document.ref")},
				{ID: "amount", Logic: present("document.amount")},
				{ID: "bic", Logic: present("document.bic")},
			},
			expectIDs: []string{"amount", "bic"},
		},
		{
			description: "strict missing path fails assertion",
			assertions:  []*Assertion{{ID: "ccy", Logic: map[string]interface{}{"==": []interface{}{map[string]interface{}{"var": "document.ccy"}, "EUR"}}}},
			policy:      &policy.Policy{MissingPath: "strict"},
			expectIDs:   []string{"ccy"},
		},
	}
	for _, testCase := range testCases {
		input := &ValidateInput{Assertions: testCase.assertions}
		require.NoError(t, input.Init(nil), testCase.description)
		assert.Equal(t, PhasePre, input.Phase, testCase.description)
		ec := execution.NewContext("r1")
		require.NoError(t, ec.Set("document.ref", value.String("R1")))
		ctx := policy.WithPolicy(context.Background(), testCase.policy)
		method, err := New().Method("validate")
		require.NoError(t, err)
		err = method(ctx, input, ec)
		if len(testCase.expectIDs) == 0 {
			assert.NoError(t, err, testCase.description)
			continue
		}
		require.Error(t, err, testCase.description)
		assert.True(t, errors.Is(err, types.ErrValidation), testCase.description)
		var actual *types.Error
		require.True(t, errors.As(err, &actual), testCase.description)
		assert.Equal(t, testCase.expectIDs, actual.Codes(), testCase.description)
	}
}

func TestValidateInput_Init(t *testing.T) {
	assert.Error(t, (&ValidateInput{Phase: "mid"}).Init(nil))
	assert.Error(t, (&ValidateInput{Assertions: []*Assertion{{Logic: true}}}).Init(nil))
	err := (&ValidateInput{Assertions: []*Assertion{{ID: "x", Logic: map[string]interface{}{"if": []interface{}{true, 1}}}}}).Init(nil)
	assert.True(t, errors.Is(err, types.ErrConfig))
	assert.True(t, errors.Is(err, types.ErrMapping))
}
