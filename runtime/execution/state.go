package execution

// TaskState represents the current state of a task execution
type TaskState string

const (
	TaskStatePending   TaskState = "pending"
	TaskStateRunning   TaskState = "running"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
	TaskStateSkipped   TaskState = "skipped"
)

// IsFinal reports whether no further transition is expected
func (t TaskState) IsFinal() bool {
	switch t {
	case TaskStateCompleted, TaskStateFailed, TaskStateSkipped:
		return true
	}
	return false
}
