package transform

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
const Name = "transform"

// Service implements the map and publish functions
type Service struct{}

// Mapping writes the result of a rule to a context path
type Mapping struct {
	Path  string      `json:"path,omitempty"`
	Logic interface{} `json:"logic,omitempty"`

	target value.Path
	expr   *expr.Expression
}

// MapInput is an ordered list of mappings
type MapInput struct {
	Mappings []*Mapping `json:"mappings,omitempty"`
}

// Init compiles mapping rules and checks target paths
func (i *MapInput) Init(env *extension.Environment) error {
	for k, mapping := range i.Mappings {
		if mapping == nil {
			return types.NewError(types.KindConfig, "mappings[%d] was empty", k)
		}
		target, err := execution.ParseTarget(mapping.Path)
		if err != nil {
			return err
		}
		mapping.target = target
		logic := env.Raw(fmt.Sprintf("mappings[%d].logic", k))
		if logic.IsNull() {
			logic = value.FromInterface(mapping.Logic)
		}
		if mapping.expr, err = expr.Compile(logic); err != nil {
			return types.WrapError(types.KindMapping, err, "mappings[%d] %v", k, mapping.Path)
		}
	}
	return nil
}

// PublishInput has no settings
type PublishInput struct{}

// New creates a transform function group
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
			Name:        "map",
			Description: "Evaluates rules in order and writes each result to its context path.",
			Input:       reflect.TypeOf(&MapInput{}),
			Output:      reflect.TypeOf(&execution.Context{}),
		},
		{
			Name:        "publish",
			Description: "Freezes the document and rendered output as the request result.",
			Input:       reflect.TypeOf(&PublishInput{}),
			Output:      reflect.TypeOf(&execution.Context{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "map":
		return s.mapping, nil
	case "publish":
		return s.publish, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// mapping evaluates every rule against the current context; later rules see earlier writes
func (s *Service) mapping(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*MapInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	ec, ok := out.(*execution.Context)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	options := policy.FromContext(ctx).EvalOptions()
	for _, mapping := range input.Mappings {
		result, err := mapping.expr.Evaluate(ec.Scope(), options...)
		if err != nil {
			return err
		}
		ec.SetPath(mapping.target, result)
	}
	return nil
}

func (s *Service) publish(_ context.Context, in, out interface{}) error {
	if _, ok := in.(*PublishInput); !ok {
		return types.NewInvalidInputError(in)
	}
	ec, ok := out.(*execution.Context)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	ec.Publish()
	return nil
}
