package reframe

import (
	"context"
	"fmt"

	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/policy"
	"github.com/viant/reframe/runtime/execution"
	"github.com/viant/reframe/runtime/orchestrator"
	"github.com/viant/reframe/service/dao"
	"github.com/viant/reframe/service/processor"
	"github.com/viant/reframe/service/registry"
	"github.com/viant/reframe/service/scenario"
	"go.uber.org/zap"
)

// Runtime executes requests against the loaded package
type Runtime struct {
	registry     *registry.Registry
	orchestrator *orchestrator.Orchestrator
	scenarios    *scenario.Runner
	policy       *policy.Policy
	archive      dao.Service[string, execution.Record]
	logger       *zap.Logger
	err          error
}

// Load reads, compiles and activates a package; on error the previous package stays active
func (r *Runtime) Load(ctx context.Context, URL string) (*registry.Snapshot, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.registry.Load(ctx, URL)
}

// Reload rebuilds the active package from its URL
func (r *Runtime) Reload(ctx context.Context) (*registry.Snapshot, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.registry.Reload(ctx)
}

// Snapshot returns the active package snapshot or nil
func (r *Runtime) Snapshot() *registry.Snapshot {
	return r.registry.Snapshot()
}

// Run executes a request, the runtime policy applies when the request has none
func (r *Runtime) Run(ctx context.Context, request *orchestrator.Request) (*orchestrator.Result, error) {
	if request.Policy == nil && r.policy != nil {
		withPolicy := *request
		withPolicy.Policy = r.policy
		request = &withPolicy
	}
	return r.orchestrator.Run(ctx, request)
}

// Transform converts input in the given direction, auto detects it when empty
func (r *Runtime) Transform(ctx context.Context, input []byte, direction model.Direction) (*orchestrator.Result, error) {
	return r.Run(ctx, &orchestrator.Request{Kind: model.KindTransform, Direction: direction, Input: input})
}

// Validate runs the validate workflows of the input message family
func (r *Runtime) Validate(ctx context.Context, input []byte, direction model.Direction) (*orchestrator.Result, error) {
	return r.Run(ctx, &orchestrator.Request{Kind: model.KindValidate, Direction: direction, Input: input})
}

// Generate builds a message of family from parameters
func (r *Runtime) Generate(ctx context.Context, family string, direction model.Direction, parameters value.Value) (*orchestrator.Result, error) {
	return r.Run(ctx, &orchestrator.Request{Kind: model.KindGenerate, Direction: direction, Family: family, Parameters: parameters})
}

// RunBatch runs requests concurrently on a pool of workers; outcomes keep the
// order of requests. Timed out requests are retried once.
func (r *Runtime) RunBatch(ctx context.Context, workers int, requests ...*orchestrator.Request) ([]*processor.Outcome, error) {
	outcomes := make([]*processor.Outcome, len(requests))
	pool, err := processor.New(r,
		processor.WithWorkers(workers),
		processor.WithLogger(r.logger),
		processor.WithHandler(func(outcome *processor.Outcome) { outcomes[outcome.Index] = outcome }))
	if err != nil {
		return nil, err
	}
	if err = pool.Start(ctx); err != nil {
		return nil, err
	}
	defer pool.Shutdown()
	for i, request := range requests {
		if err = pool.Submit(ctx, i, request); err != nil {
			return nil, err
		}
	}
	if err = pool.Wait(ctx); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// RunScenarios replays package scenarios, all of them when names is empty
func (r *Runtime) RunScenarios(ctx context.Context, names ...string) (*scenario.Report, error) {
	return r.scenarios.Run(ctx, names...)
}

// Record returns an archived request
func (r *Runtime) Record(ctx context.Context, requestID string) (*execution.Record, error) {
	if r.archive == nil {
		return nil, fmt.Errorf("request archive is not configured")
	}
	return r.archive.Load(ctx, requestID)
}

// Records lists archived requests, filtered by dao.ParameterStatus, dao.ParameterKind or dao.ParameterFamily
func (r *Runtime) Records(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Record, error) {
	if r.archive == nil {
		return nil, fmt.Errorf("request archive is not configured")
	}
	return r.archive.List(ctx, parameters...)
}
