// Package debug provides diagnostic functions for rule authors: log writes
// evaluated context values to the engine logger, nop does nothing.
package debug

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/reframe/extension"
	"github.com/viant/reframe/internal/logging"
	"github.com/viant/reframe/model/expr"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/policy"
	"github.com/viant/reframe/runtime/execution"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Name of the function group as used by workflows.
const Name = "debug"

// Service implements log and nop
type Service struct {
	logger *zap.Logger
}

// LogInput names a message and the fields evaluated against the request context
type LogInput struct {
	Message string                 `json:"message,omitempty"`
	Level   string                 `json:"level,omitempty"`
	Fields  map[string]interface{} `json:"fields,omitempty"`

	level  zapcore.Level
	names  []string
	fields []*expr.Expression
}

// Init parses the level and compiles field rules in declaration order
func (i *LogInput) Init(env *extension.Environment) error {
	i.level = zapcore.DebugLevel
	if i.Level != "" {
		if err := i.level.UnmarshalText([]byte(i.Level)); err != nil {
			return types.WrapError(types.KindConfig, err, "log level")
		}
	}
	raw := env.Raw("fields")
	if raw.IsNull() && len(i.Fields) > 0 {
		raw = value.FromInterface(i.Fields)
	}
	if raw.IsNull() {
		return nil
	}
	if raw.Kind() != value.KindMapping {
		return types.NewError(types.KindConfig, "fields: expected mapping")
	}
	var err error
	raw.Mapping().Range(func(key string, rule value.Value) bool {
		var compiled *expr.Expression
		if compiled, err = expr.Compile(rule); err != nil {
			err = types.WrapError(types.KindMapping, err, "field %v", key)
			return false
		}
		i.names = append(i.names, key)
		i.fields = append(i.fields, compiled)
		return true
	})
	return err
}

// NopInput is empty
type NopInput struct{}

// New creates a debug function group writing to logger
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Name returns the service name
func (s *Service) Name() string {
	return Name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "log",
			Description: "Logs a message with fields evaluated against the request context.",
			Input:       reflect.TypeOf(&LogInput{}),
			Output:      reflect.TypeOf(&execution.Context{}),
		},
		{
			Name:        "nop",
			Description: "Performs no operation.",
			Input:       reflect.TypeOf(&NopInput{}),
			Output:      reflect.TypeOf(&execution.Context{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "log":
		return s.log, nil
	case "nop":
		return s.nop, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) log(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*LogInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	ec, ok := out.(*execution.Context)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	options := policy.FromContext(ctx).EvalOptions()
	fields := make([]zap.Field, 0, len(input.fields))
	for k, field := range input.fields {
		v, err := field.Evaluate(ec.Scope(), options...)
		if err != nil {
			return types.WrapError(types.KindMapping, err, "field %v", input.names[k])
		}
		fields = append(fields, zap.Any(input.names[k], v.Interface()))
	}
	logger := logging.WithSpan(ctx, s.logger).With(zap.String("request_id", ec.ID))
	if entry := logger.Check(input.level, input.Message); entry != nil {
		entry.Write(fields...)
	}
	return nil
}

func (s *Service) nop(ctx context.Context, in, out interface{}) error {
	if _, ok := out.(*execution.Context); !ok {
		return types.NewInvalidOutputError(out)
	}
	return nil
}
