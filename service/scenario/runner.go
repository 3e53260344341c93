package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/runtime/orchestrator"
	"github.com/viant/reframe/service/meta"
	"github.com/viant/reframe/service/registry"
	"go.uber.org/zap"
)

// Transformer runs a single request
type Transformer interface {
	Run(ctx context.Context, request *orchestrator.Request) (*orchestrator.Result, error)
}

// Outcome is the result of one scenario
type Outcome struct {
	Name      string          `json:"name"`
	Direction model.Direction `json:"direction,omitempty"`
	Variant   string          `json:"variant,omitempty"`
	Passed    bool            `json:"passed"`
	Error     string          `json:"error,omitempty"`
	Diff      string          `json:"diff,omitempty"`
	Stats     DiffStats       `json:"stats"`
	Elapsed   time.Duration   `json:"elapsed"`
}

// Report summarises a scenario run
type Report struct {
	Package  string     `json:"package"`
	Version  int64      `json:"version"`
	Total    int        `json:"total"`
	Passed   int        `json:"passed"`
	Failed   int        `json:"failed"`
	Outcomes []*Outcome `json:"outcomes"`
}

// Runner replays package scenarios
type Runner struct {
	snapshots   orchestrator.Snapshots
	transformer Transformer
	meta        *meta.Service
	logger      *zap.Logger
}

// Run replays scenarios of the active snapshot, optionally restricted to names
func (r *Runner) Run(ctx context.Context, names ...string) (*Report, error) {
	snapshot := r.snapshots.Snapshot()
	if snapshot == nil {
		return nil, registry.ErrNotLoaded
	}
	selected := map[string]bool{}
	for _, name := range names {
		selected[name] = true
	}
	ret := &Report{Package: snapshot.Package.ID, Version: snapshot.Version}
	for _, candidate := range snapshot.Scenarios {
		if len(selected) > 0 && !selected[candidate.Name] {
			continue
		}
		outcome := r.runScenario(ctx, snapshot, candidate)
		ret.Outcomes = append(ret.Outcomes, outcome)
		ret.Total++
		if outcome.Passed {
			ret.Passed++
			continue
		}
		ret.Failed++
		r.logger.Warn("scenario failed", zap.String("scenario", outcome.Name), zap.String("error", outcome.Error), zap.Int("added", outcome.Stats.Added), zap.Int("removed", outcome.Stats.Removed))
	}
	r.logger.Info("scenarios completed", zap.String("package", ret.Package), zap.Int("passed", ret.Passed), zap.Int("failed", ret.Failed))
	return ret, nil
}

func (r *Runner) runScenario(ctx context.Context, snapshot *registry.Snapshot, candidate *model.Scenario) *Outcome {
	started := time.Now()
	ret := &Outcome{Name: candidate.Name, Direction: candidate.Direction}
	defer func() { ret.Elapsed = time.Since(started) }()
	input, err := r.fixture(ctx, snapshot, candidate.Input)
	if err != nil {
		ret.Error = fmt.Sprintf("input: %v", err)
		return ret
	}
	result, err := r.transformer.Run(ctx, &orchestrator.Request{Kind: model.KindTransform, Direction: candidate.Direction, Input: input})
	if result != nil {
		ret.Direction = result.Direction
		ret.Variant = result.Variant
	}
	if err != nil {
		ret.Error = err.Error()
		if result != nil {
			if codes := types.DiagnosticCodes(result.Diagnostics); len(codes) > 0 {
				ret.Error += " [" + strings.Join(codes, ",") + "]"
			}
		}
		return ret
	}
	if candidate.Variant != "" && candidate.Variant != result.Variant {
		ret.Error = fmt.Sprintf("expected variant %v, but had %v", candidate.Variant, result.Variant)
		return ret
	}
	if candidate.ExpectedOutput == "" {
		ret.Passed = true
		return ret
	}
	expected, err := r.fixture(ctx, snapshot, candidate.ExpectedOutput)
	if err != nil {
		ret.Error = fmt.Sprintf("expected output: %v", err)
		return ret
	}
	actual := []byte(result.Output.Text)
	if !result.Output.HasText {
		if actual, err = result.Output.Document.MarshalJSON(); err != nil {
			ret.Error = fmt.Sprintf("output: %v", err)
			return ret
		}
	}
	diff, stats, err := GenerateDiff(normalize(expected), normalize(actual), candidate.Name, 3)
	if err != nil {
		ret.Error = fmt.Sprintf("diff: %v", err)
		return ret
	}
	ret.Diff, ret.Stats = diff, stats
	ret.Passed = diff == ""
	if !ret.Passed {
		ret.Error = fmt.Sprintf("output mismatch: +%d -%d", stats.Added, stats.Removed)
	}
	return ret
}

// fixture returns inline message text or downloads a file relative to the scenario list
func (r *Runner) fixture(ctx context.Context, snapshot *registry.Snapshot, location string) ([]byte, error) {
	trimmed := strings.TrimSpace(location)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "<") {
		return []byte(location), nil
	}
	if trimmed == "" {
		return nil, fmt.Errorf("fixture location was empty")
	}
	return r.meta.Download(ctx, r.meta.Resolve(snapshot.ScenarioURL, trimmed))
}

// normalize unifies line breaks and drops trailing blank space
func normalize(data []byte) []byte {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(strings.TrimRight(text, " \t\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// New creates a scenario runner
func New(snapshots orchestrator.Snapshots, transformer Transformer, metaService *meta.Service, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{snapshots: snapshots, transformer: transformer, meta: metaService, logger: logger}
}
