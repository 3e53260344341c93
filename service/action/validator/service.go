package validator

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/reframe/extension"
	"github.com/viant/reframe/model/expr"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/policy"
	"github.com/viant/reframe/runtime/execution"
)

// Name of the function group as used by workflows.
const Name = "validator"

// Validation phases
const (
	PhasePre  = "pre"
	PhasePost = "post"
)

// Service implements the validate function
type Service struct{}

// Assertion is a named boolean rule
type Assertion struct {
	ID      string      `json:"id,omitempty"`
	Logic   interface{} `json:"logic,omitempty"`
	Message string      `json:"message,omitempty"`

	expr *expr.Expression
}

// ValidateInput lists assertions evaluated fail-collect
type ValidateInput struct {
	Phase      string       `json:"phase,omitempty"`
	Assertions []*Assertion `json:"assertions,omitempty"`
}

// Init compiles assertions; ids are required and unique within a task
func (i *ValidateInput) Init(env *extension.Environment) error {
	switch i.Phase {
	case "":
		i.Phase = PhasePre
	case PhasePre, PhasePost:
	default:
		return types.NewError(types.KindConfig, "unsupported validation phase: %v", i.Phase)
	}
	seen := map[string]bool{}
	for k, assertion := range i.Assertions {
		if assertion == nil || assertion.ID == "" {
			return types.NewError(types.KindConfig, "assertions[%d]: id was empty", k)
		}
		if seen[assertion.ID] {
			return types.NewError(types.KindConfig, "assertions[%d]: duplicate id %v", k, assertion.ID)
		}
		seen[assertion.ID] = true
		var err error
		logic := env.Raw(fmt.Sprintf("assertions[%d].logic", k))
		if logic.IsNull() {
			logic = value.FromInterface(assertion.Logic)
		}
		if assertion.expr, err = expr.Compile(logic); err != nil {
			return types.WrapError(types.KindMapping, err, "assertion %v", assertion.ID)
		}
	}
	return nil
}

// New creates a validator function group
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return Name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "validate",
			Description: "Evaluates every assertion and fails with the ids of all false ones.",
			Input:       reflect.TypeOf(&ValidateInput{}),
			Output:      reflect.TypeOf(&execution.Context{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "validate":
		return s.validate, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) validate(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ValidateInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	ec, ok := out.(*execution.Context)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	options := policy.FromContext(ctx).EvalOptions()
	var failed []*types.Diagnostic
	for _, assertion := range input.Assertions {
		passed, err := assertion.expr.Test(ec.Scope(), options...)
		if passed && err == nil {
			continue
		}
		message := assertion.Message
		if message == "" {
			message = "assertion failed"
		}
		if err != nil {
			message += ": " + err.Error()
		}
		failed = append(failed, &types.Diagnostic{Kind: types.KindValidation, Code: assertion.ID, Message: message})
	}
	if len(failed) == 0 {
		return nil
	}
	ids := make([]string, 0, len(failed))
	for _, d := range failed {
		ids = append(ids, d.Code)
	}
	ret := types.NewError(types.KindValidation, "%vcondition failed: %v", input.Phase, strings.Join(ids, ", "))
	ret.Diagnostics = failed
	return ret
}
