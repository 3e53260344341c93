package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/reframe/model/value"
)

// Delta represents an incremental counter change. Fields are signed.
type Delta struct {
	Workflows        int
	SkippedWorkflows int
	Tasks            int
	CompletedTasks   int
	FailedTasks      int
}

// Progress keeps request counters. It is safe for concurrent use.
type Progress struct {
	RequestID string
	Kind      string
	StartedAt time.Time

	Workflows        int
	SkippedWorkflows int
	Tasks            int
	CompletedTasks   int
	FailedTasks      int

	mux      sync.Mutex
	onChange func(Progress)
}

// Update applies the supplied delta; the onChange callback runs outside the lock.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mux.Lock()
	p.Workflows += d.Workflows
	p.SkippedWorkflows += d.SkippedWorkflows
	p.Tasks += d.Tasks
	p.CompletedTasks += d.CompletedTasks
	p.FailedTasks += d.FailedTasks
	snapshot := p.copy()
	cb := p.onChange
	p.mux.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

func (p *Progress) copy() Progress {
	return Progress{
		RequestID:        p.RequestID,
		Kind:             p.Kind,
		StartedAt:        p.StartedAt,
		Workflows:        p.Workflows,
		SkippedWorkflows: p.SkippedWorkflows,
		Tasks:            p.Tasks,
		CompletedTasks:   p.CompletedTasks,
		FailedTasks:      p.FailedTasks,
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.copy()
}

// OnChange registers a callback invoked after every Update. Nil disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.mux.Lock()
	p.onChange = cb
	p.mux.Unlock()
}

// Value renders counters as a mapping for the metadata.progress slot
func (p *Progress) Value() value.Value {
	s := p.Snapshot()
	ret := value.NewMap()
	ret.Put("workflows", value.Int(int64(s.Workflows)))
	ret.Put("skipped_workflows", value.Int(int64(s.SkippedWorkflows)))
	ret.Put("tasks", value.Int(int64(s.Tasks)))
	ret.Put("completed_tasks", value.Int(int64(s.CompletedTasks)))
	ret.Put("failed_tasks", value.Int(int64(s.FailedTasks)))
	return ret
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker, embeds it in a derived context and returns both.
func WithNewTracker(ctx context.Context, requestID, kind string, onChange func(Progress)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		RequestID: requestID,
		Kind:      kind,
		StartedAt: time.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx looks up the tracker in ctx (if any) and applies the delta.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
