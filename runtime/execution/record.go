package execution

import (
	"time"

	"github.com/viant/reframe/internal/clock"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

// Record statuses
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Record is the archived form of a finished request
type Record struct {
	ID          string              `json:"id"`
	Kind        model.Kind          `json:"kind"`
	Direction   model.Direction     `json:"direction,omitempty"`
	Family      string              `json:"family,omitempty"`
	Variant     string              `json:"variant,omitempty"`
	Status      string              `json:"status"`
	Error       string              `json:"error,omitempty"`
	Diagnostics []*types.Diagnostic `json:"diagnostics,omitempty"`
	Executions  []*Execution        `json:"executions,omitempty"`
	State       value.Value         `json:"state"`
	StartedAt   time.Time           `json:"startedAt"`
	CompletedAt time.Time           `json:"completedAt"`
}

// Record captures the finished request with a deep copy of its namespaces
func (c *Context) Record(err error) *Record {
	ret := &Record{
		ID:          c.ID,
		Kind:        c.Kind,
		Direction:   c.Direction,
		Family:      c.Get("metadata.message_type").String(),
		Variant:     c.Get("metadata.variant").String(),
		Status:      StatusSucceeded,
		Diagnostics: append([]*types.Diagnostic(nil), c.diagnostics...),
		State:       c.Snapshot(),
		StartedAt:   c.StartedAt,
		CompletedAt: clock.Now(),
	}
	for _, e := range c.executions {
		clone := *e
		ret.Executions = append(ret.Executions, &clone)
	}
	if err != nil {
		ret.Status = StatusFailed
		ret.Error = err.Error()
	}
	return ret
}

// Clone returns a copy that shares no mutable state with the original
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	ret := *r
	ret.State = value.Clone(r.State)
	ret.Diagnostics = make([]*types.Diagnostic, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		item := *d
		ret.Diagnostics = append(ret.Diagnostics, &item)
	}
	ret.Executions = make([]*Execution, 0, len(r.Executions))
	for _, e := range r.Executions {
		item := *e
		ret.Executions = append(ret.Executions, &item)
	}
	return &ret
}
