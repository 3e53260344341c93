package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/viant/reframe/codec"
	"github.com/viant/reframe/internal/idgen"
	"github.com/viant/reframe/internal/logging"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/policy"
	"github.com/viant/reframe/progress"
	"github.com/viant/reframe/runtime/execution"
	"github.com/viant/reframe/service/dao"
	"github.com/viant/reframe/service/executor"
	"github.com/viant/reframe/service/registry"
	"github.com/viant/reframe/tracing"
	"go.uber.org/zap"
)

const (
	// MessageTypePath holds the detected message family
	MessageTypePath = "metadata.message_type"
	// ParametersPath holds generate request parameters
	ParametersPath = "scratch.parameters"
	progressPath   = "metadata.progress"
)

// Snapshots provides the active registry snapshot
type Snapshots interface {
	Snapshot() *registry.Snapshot
}

// Request describes a single engine call
type Request struct {
	Kind      model.Kind
	Direction model.Direction
	Input     []byte
	// Family names the message type to generate
	Family     string
	Parameters value.Value
	Policy     *policy.Policy
	Timeout    time.Duration
}

// Result is the request outcome; it is returned on failure as well
type Result struct {
	RequestID   string
	Kind        model.Kind
	Direction   model.Direction
	Family      string
	Variant     string
	Output      *execution.Output
	Diagnostics []*types.Diagnostic
	// Workflows lists executed workflow ids in run order
	Workflows []string
	Progress  progress.Progress
	Context   *execution.Context
}

// Orchestrator runs requests
type Orchestrator struct {
	snapshots Snapshots
	executor  *executor.Service
	codecs    codec.Set
	timeout   time.Duration
	logger    *zap.Logger
	archive   dao.Service[string, execution.Record]
	listeners []execution.StateListener
}

// Option customises an orchestrator
type Option func(o *Orchestrator)

// WithTimeout sets default request deadline
func WithTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = timeout }
}

// WithLogger sets logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithArchive stores every finished request record
func WithArchive(archive dao.Service[string, execution.Record]) Option {
	return func(o *Orchestrator) { o.archive = archive }
}

// WithStateListeners registers context write listeners on every request
func WithStateListeners(listeners ...execution.StateListener) Option {
	return func(o *Orchestrator) { o.listeners = append(o.listeners, listeners...) }
}

// Run executes the request against the active snapshot
func (o *Orchestrator) Run(ctx context.Context, request *Request) (*Result, error) {
	snapshot := o.snapshots.Snapshot()
	if snapshot == nil {
		return nil, registry.ErrNotLoaded
	}
	req := *request
	request = &req
	if request.Kind == "" {
		request.Kind = model.KindTransform
	}
	requestID := idgen.New()
	result := &Result{RequestID: requestID, Kind: request.Kind}

	if request.Policy != nil {
		ctx = policy.WithPolicy(ctx, request.Policy)
	}
	timeout := request.Timeout
	if timeout == 0 {
		timeout = o.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	ctx, tracker := progress.WithNewTracker(ctx, requestID, string(request.Kind), nil)
	ctx, span := tracing.StartRequest(ctx, requestID, string(request.Kind), snapshot.Package.ID)
	logger := logging.WithSpan(ctx, o.logger).With(zap.String("request_id", requestID), zap.String("kind", string(request.Kind)))

	ec := execution.NewContext(requestID, execution.WithKind(request.Kind), execution.WithStateListeners(o.listeners...))
	result.Context = ec
	err := o.run(ctx, snapshot, request, ec, result)
	if err != nil && len(ec.Diagnostics()) == 0 {
		if diagnostics := types.DiagnosticsOf(err); len(diagnostics) > 0 {
			ec.AddDiagnostics(diagnostics...)
		} else {
			ec.AddDiagnostics(&types.Diagnostic{Kind: types.KindOf(err), Message: err.Error()})
		}
	}
	result.Direction = ec.Direction
	result.Diagnostics = ec.Diagnostics()
	result.Progress = tracker.Snapshot()
	ec.Metadata().Put("progress", tracker.Value())
	span.Message(result.Family, result.Variant)
	span.Diagnostics(result.Diagnostics)
	span.End(err)

	if o.archive != nil {
		if archiveErr := o.archive.Save(context.WithoutCancel(ctx), ec.Record(err)); archiveErr != nil {
			logger.Warn("failed to archive request", zap.Error(archiveErr))
		}
	}
	if err != nil {
		logger.Info("request failed", zap.String("family", result.Family), zap.Error(err))
		return result, err
	}
	logger.Debug("request completed", zap.String("family", result.Family), zap.Strings("workflows", result.Workflows))
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, snapshot *registry.Snapshot, request *Request, ec *execution.Context, result *Result) error {
	direction, err := o.direction(request)
	if err != nil {
		return err
	}
	ec.SetDirection(direction)
	if err = o.prepare(request, direction, ec, result); err != nil {
		return err
	}
	options := policy.FromContext(ctx).EvalOptions()
	if resolver, ok := snapshot.Variants(direction, result.Family); ok {
		if result.Variant, err = resolver.Detect(ec, options...); err != nil {
			return err
		}
	}
	plans, err := o.selectPlans(ctx, snapshot, model.Key{Kind: request.Kind, Direction: direction, Family: result.Family}, ec)
	if err != nil {
		return err
	}
	for _, plan := range plans {
		result.Workflows = append(result.Workflows, plan.Workflow.ID)
		if err = o.runPlan(ctx, plan, ec); err != nil {
			return err
		}
	}
	if request.Kind == model.KindValidate {
		return nil
	}
	output, ok := ec.Published()
	if !ok {
		return types.NewError(types.KindMapping, "%v %v %v: no workflow published an output", request.Kind, direction, result.Family)
	}
	result.Output = output
	return nil
}

func (o *Orchestrator) direction(request *Request) (model.Direction, error) {
	direction, err := model.ParseDirection(string(request.Direction))
	if err != nil {
		return "", types.WrapError(types.KindConfig, err, "invalid request")
	}
	if direction != model.DirectionAuto {
		return direction, nil
	}
	if request.Kind == model.KindGenerate {
		return "", types.NewError(types.KindConfig, "generate requires an explicit direction")
	}
	format, ok := model.DetectFormat(request.Input)
	if !ok {
		return "", types.NewError(types.KindParse, "unable to detect input format")
	}
	return model.From(format), nil
}

// prepare seeds the context: a parsed payload for transform and validate,
// caller parameters for generate
func (o *Orchestrator) prepare(request *Request, direction model.Direction, ec *execution.Context, result *Result) error {
	if request.Kind == model.KindGenerate {
		if request.Family == "" {
			return types.NewError(types.KindConfig, "generate requires a message family")
		}
		result.Family = request.Family
		parameters := request.Parameters
		if parameters.IsNull() {
			parameters = value.NewMap()
		}
		if err := ec.Set(ParametersPath, parameters); err != nil {
			return err
		}
		return ec.Set(MessageTypePath, value.String(result.Family))
	}
	if err := ec.SetPayload(value.String(string(request.Input))); err != nil {
		return err
	}
	sourceCodec, err := o.codecs.Lookup(direction.Source())
	if err != nil {
		return types.WrapError(types.KindConfig, err, "source codec")
	}
	doc, err := sourceCodec.Parse(request.Input)
	if err != nil {
		if types.KindOf(err) == "" {
			return types.WrapError(types.KindParse, err, "%v", direction.Source())
		}
		return err
	}
	if err = ec.Set(execution.NamespaceDocument, doc.Root); err != nil {
		return err
	}
	if doc.Namespaces.Len() > 0 {
		if err = ec.Set("metadata.namespaces", doc.Namespaces); err != nil {
			return err
		}
	}
	result.Family = doc.Family
	if result.Family == "" {
		result.Family = sourceCodec.Family(doc)
	}
	return ec.Set(MessageTypePath, value.String(result.Family))
}

// selectPlans evaluates every workflow condition once against the prepared
// context, then orders the selection by priority and registration sequence
func (o *Orchestrator) selectPlans(ctx context.Context, snapshot *registry.Snapshot, key model.Key, ec *execution.Context) ([]*registry.Plan, error) {
	p := policy.FromContext(ctx)
	options := p.EvalOptions()
	var ret []*registry.Plan
	skipped := 0
	for _, plan := range snapshot.Workflows(key) {
		if !p.IsAllowed(plan.Workflow.ID) {
			skipped++
			continue
		}
		ok, err := plan.Workflow.Selected(ec.Scope(), options...)
		if err != nil {
			return nil, fmt.Errorf("workflow %v condition: %w", plan.Workflow.ID, err)
		}
		if !ok {
			skipped++
			continue
		}
		ret = append(ret, plan)
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].Priority != ret[j].Priority {
			return ret[i].Priority < ret[j].Priority
		}
		return ret[i].Sequence < ret[j].Sequence
	})
	progress.UpdateCtx(ctx, progress.Delta{Workflows: len(ret), SkippedWorkflows: skipped})
	return ret, nil
}

func (o *Orchestrator) runPlan(ctx context.Context, plan *registry.Plan, ec *execution.Context) (err error) {
	ctx, span := tracing.StartWorkflow(ctx, plan.Workflow.ID)
	defer func() { span.End(err) }()
	progress.UpdateCtx(ctx, progress.Delta{Tasks: len(plan.Tasks)})
	for _, task := range plan.Tasks {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.WrapError(types.KindTimeout, ctxErr, "%v/%v", plan.Workflow.ID, task.ID)
		}
		if err = o.runTask(ctx, task, ec); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) runTask(ctx context.Context, task *executor.Task, ec *execution.Context) (err error) {
	ctx, span := tracing.StartTask(ctx, task.WorkflowID, task.ID, task.Function.Name)
	defer func() { span.End(err) }()
	exec := ec.Start(task.WorkflowID, task.ID, task.Function.Name)
	err = o.executor.Execute(ctx, task, ec)
	ec.Finish(exec, err)
	if err != nil {
		progress.UpdateCtx(ctx, progress.Delta{FailedTasks: 1})
		if diagnostics := types.DiagnosticsOf(err); len(diagnostics) > 0 {
			ec.AddDiagnostics(diagnostics...)
		} else {
			ec.AddDiagnostics(&types.Diagnostic{Kind: types.KindOf(err), Message: err.Error(), Workflow: task.WorkflowID, Task: task.ID})
		}
		return err
	}
	progress.UpdateCtx(ctx, progress.Delta{CompletedTasks: 1})
	return nil
}

// New creates an orchestrator
func New(snapshots Snapshots, executor *executor.Service, codecs codec.Set, options ...Option) *Orchestrator {
	ret := &Orchestrator{snapshots: snapshots, executor: executor, codecs: codecs, logger: zap.NewNop()}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
