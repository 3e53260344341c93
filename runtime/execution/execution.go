package execution

import (
	"fmt"
	"time"

	"github.com/viant/reframe/internal/clock"
	"github.com/viant/reframe/model/value"
)

// Execution records a single task run within a request
type Execution struct {
	ID          string     `json:"id"`
	RequestID   string     `json:"requestId"`
	WorkflowID  string     `json:"workflowId"`
	TaskID      string     `json:"taskId"`
	Function    string     `json:"function,omitempty"`
	Sequence    int        `json:"sequence"`
	State       TaskState  `json:"state"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// NewExecution creates a pending execution for a workflow task
func NewExecution(requestID, workflowID, taskID string, sequence int) *Execution {
	return &Execution{
		ID:         fmt.Sprintf("%s-%s-%s-%d", requestID, workflowID, taskID, sequence),
		RequestID:  requestID,
		WorkflowID: workflowID,
		TaskID:     taskID,
		Sequence:   sequence,
		State:      TaskStatePending,
	}
}

// Start marks the execution as started
func (e *Execution) Start() {
	now := clock.Now()
	e.StartedAt = &now
	e.State = TaskStateRunning
}

// Complete marks the execution as completed
func (e *Execution) Complete() {
	now := clock.Now()
	e.CompletedAt = &now
	e.State = TaskStateCompleted
}

// Fail marks the execution as failed
func (e *Execution) Fail(err error) {
	now := clock.Now()
	e.CompletedAt = &now
	if err != nil {
		e.Error = err.Error()
	}
	e.State = TaskStateFailed
}

// Skip marks the execution as skipped
func (e *Execution) Skip() {
	e.State = TaskStateSkipped
}

// Elapsed returns run duration, zero while unfinished
func (e *Execution) Elapsed() time.Duration {
	if e.StartedAt == nil || e.CompletedAt == nil {
		return 0
	}
	return e.CompletedAt.Sub(*e.StartedAt)
}

// Value renders the execution as a metadata.log entry
func (e *Execution) Value() value.Value {
	ret := value.NewMap()
	ret.Put("sequence", value.Int(int64(e.Sequence)))
	ret.Put("workflow", value.String(e.WorkflowID))
	ret.Put("task", value.String(e.TaskID))
	if e.Function != "" {
		ret.Put("function", value.String(e.Function))
	}
	ret.Put("state", value.String(string(e.State)))
	if e.Error != "" {
		ret.Put("error", value.String(e.Error))
	}
	return ret
}
