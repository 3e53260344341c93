package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/viant/reframe/extension"
	"github.com/viant/reframe/internal/logging"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/runtime/execution"
	"github.com/viant/structology/conv"
	"go.uber.org/zap"
)

// Listener is invoked once a task function completes, regardless of whether it
// returned an error.
type Listener func(ctx context.Context, task *Task, ec *execution.Context, err error)

// LogListener logs every executed task at debug level; failures log at warn.
func LogListener(logger *zap.Logger) Listener {
	return func(ctx context.Context, task *Task, ec *execution.Context, err error) {
		if task == nil || logger == nil {
			return
		}
		log := logging.WithSpan(ctx, logger)
		fields := []zap.Field{
			zap.String("request_id", ec.ID),
			zap.String("workflow", task.WorkflowID),
			zap.String("task", task.ID),
			zap.String("function", task.Function.Name),
		}
		if err != nil {
			log.Warn("task failed", append(fields, zap.Error(err))...)
			return
		}
		log.Debug("task executed", fields...)
	}
}

// Option is used to customise the executor instance.
type Option func(*Service)

// WithListener overrides the listener invoked after every executed task. Passing nil disables the
// callback entirely.
func WithListener(l Listener) Option {
	return func(s *Service) {
		s.listener = l
	}
}

// Task is a workflow task bound to its function
type Task struct {
	WorkflowID string
	ID         string
	Function   *extension.Function
	Input      interface{}
	method     types.Executable
}

// Service compiles and runs tasks
type Service struct {
	functions *extension.Functions
	converter *conv.Converter
	listener  Listener
}

// Functions returns the function catalog
func (s *Service) Functions() *extension.Functions {
	return s.functions
}

// Compile resolves and binds a task function; any failure is a load-time MappingError
func (s *Service) Compile(workflow *model.Workflow, task *model.Task, env *extension.Environment) (*Task, error) {
	if task.Function == nil || task.Function.Name == "" {
		return nil, types.WrapError(types.KindMapping, ErrFunctionMissing, "workflow %v task %v", workflow.ID, task.ID)
	}
	fn, err := s.functions.Lookup(task.Function.Name)
	if err != nil {
		return nil, types.WrapError(types.KindMapping, err, "workflow %v task %v", workflow.ID, task.ID)
	}
	method, err := fn.Service.Method(fn.Name)
	if err != nil {
		return nil, types.WrapError(types.KindMapping, err, "workflow %v task %v", workflow.ID, task.ID)
	}
	input, err := s.typedInput(fn, task)
	if err != nil {
		return nil, types.WrapError(types.KindMapping, err, "workflow %v task %v: invalid %v input", workflow.ID, task.ID, fn.Name)
	}
	if initializer, ok := input.(extension.Initializer); ok {
		if err = initializer.Init(env.ForTask(task.Function.Input)); err != nil {
			return nil, types.WrapError(types.KindMapping, err, "workflow %v task %v", workflow.ID, task.ID)
		}
	}
	return &Task{WorkflowID: workflow.ID, ID: task.ID, Function: fn, Input: input, method: method}, nil
}

func (s *Service) typedInput(fn *extension.Function, task *model.Task) (interface{}, error) {
	rType, err := s.functions.InputType(fn)
	if err != nil || rType == nil {
		return nil, err
	}
	instance := newInstancePtr(rType)
	source := task.Function.Input.Interface()
	if source == nil {
		source = map[string]interface{}{}
	}
	if err = s.converter.Convert(source, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// Execute runs a compiled task against the request context
func (s *Service) Execute(ctx context.Context, task *Task, ec *execution.Context) error {
	if task == nil || task.method == nil {
		return ErrNotCompiled
	}
	err := task.method(ctx, task.Input, ec)
	if err != nil {
		err = attribute(err, task)
	}
	if s.listener != nil {
		s.listener(ctx, task, ec, err)
	}
	return err
}

// attribute stamps diagnostics with their workflow and task, wrapping foreign errors
func attribute(err error, task *Task) error {
	if types.KindOf(err) == "" {
		return types.WrapError(types.KindMapping, err, "%v/%v", task.WorkflowID, task.ID)
	}
	for _, d := range types.DiagnosticsOf(err) {
		if d.Workflow == "" {
			d.Workflow = task.WorkflowID
		}
		if d.Task == "" {
			d.Task = task.ID
		}
	}
	return fmt.Errorf("%v/%v: %w", task.WorkflowID, task.ID, err)
}

// New creates a new executor service instance.
func New(functions *extension.Functions, opts ...Option) *Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true

	s := &Service{
		functions: functions,
		converter: conv.NewConverter(options),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// newInstancePtr creates a new instance pointer of the given type
func newInstancePtr(t reflect.Type) interface{} {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}
