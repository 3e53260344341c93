package model

import (
	"fmt"

	"github.com/viant/reframe/model/expr"
	"github.com/viant/reframe/model/value"
)

type (
	// Workflow represents a workflow definition
	Workflow struct {
		// Source provides information about the origin of the workflow
		Source *Source `json:"source,omitempty" yaml:"source,omitempty"`
		// ID is the unique identifier for the workflow
		ID string `json:"id" yaml:"id"`

		Name string `json:"name,omitempty" yaml:"name,omitempty"`

		// Description provides a human-readable description of the workflow
		Description string `json:"description,omitempty" yaml:"description,omitempty"`

		// Priority orders selected workflows, lower runs first; nil when not declared
		Priority *int `json:"priority,omitempty" yaml:"priority,omitempty"`

		// Condition selects the workflow, null means always
		Condition value.Value `json:"condition,omitempty" yaml:"condition,omitempty"`

		// Tasks run strictly in order
		Tasks []*Task `json:"tasks" yaml:"tasks"`

		condition *expr.Expression
	}

	// Task is a single workflow step
	Task struct {
		ID          string    `json:"id" yaml:"id"`
		Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
		Description string    `json:"description,omitempty" yaml:"description,omitempty"`
		Function    *Function `json:"function" yaml:"function"`
	}

	// Function names the task function and its raw input
	Function struct {
		Name  string      `json:"name" yaml:"name"`
		Input value.Value `json:"input,omitempty" yaml:"input,omitempty"`
	}

	Source struct {
		URL string `json:"url,omitempty" yaml:"url,omitempty"`
	}
)

// NewWorkflow creates a new workflow with the given id
func NewWorkflow(id string) *Workflow {
	return &Workflow{ID: id, Name: id}
}

// WithDescription sets the description of the workflow
func (w *Workflow) WithDescription(description string) *Workflow {
	w.Description = description
	return w
}

// WithPriority sets workflow priority
func (w *Workflow) WithPriority(priority int) *Workflow {
	w.Priority = &priority
	return w
}

// WithCondition sets workflow condition rule
func (w *Workflow) WithCondition(rule value.Value) *Workflow {
	w.Condition = rule
	w.condition = nil
	return w
}

// NewTask creates a new task and appends it to the workflow
func (w *Workflow) NewTask(id string) *Task {
	task := &Task{ID: id, Name: id}
	w.Tasks = append(w.Tasks, task)
	return task
}

// WithFunction sets the task function
func (t *Task) WithFunction(name string, input value.Value) *Task {
	t.Function = &Function{Name: name, Input: input}
	return t
}

// Compile compiles the workflow condition
func (w *Workflow) Compile() error {
	if w.Condition.IsNull() {
		w.condition = nil
		return nil
	}
	compiled, err := expr.Compile(w.Condition)
	if err != nil {
		return fmt.Errorf("workflow %v condition: %w", w.ID, err)
	}
	w.condition = compiled
	return nil
}

// Selected evaluates workflow condition against scope; an absent condition is true.
func (w *Workflow) Selected(scope value.Value, options ...expr.Option) (bool, error) {
	if w.condition == nil && !w.Condition.IsNull() {
		if err := w.Compile(); err != nil {
			return false, err
		}
	}
	return w.condition.Test(scope, options...)
}

// EffectivePriority returns declared priority or fallback
func (w *Workflow) EffectivePriority(fallback int) int {
	if w.Priority != nil {
		return *w.Priority
	}
	return fallback
}

// Validate performs structural validation of the workflow. The returned slice
// is empty when the workflow is sound.
func (w *Workflow) Validate() []error {
	var issues []error
	if w.ID == "" {
		issues = append(issues, fmt.Errorf("workflow id is empty"))
	}
	if len(w.Tasks) == 0 {
		issues = append(issues, fmt.Errorf("workflow %v has no tasks", w.ID))
	}
	seen := map[string]bool{}
	for i, task := range w.Tasks {
		if task == nil {
			issues = append(issues, fmt.Errorf("workflow %v task[%d] is nil", w.ID, i))
			continue
		}
		if task.ID == "" {
			issues = append(issues, fmt.Errorf("workflow %v task[%d] has no id", w.ID, i))
		} else if seen[task.ID] {
			issues = append(issues, fmt.Errorf("workflow %v has duplicate task id %s", w.ID, task.ID))
		}
		seen[task.ID] = true
		if task.Function == nil || task.Function.Name == "" {
			issues = append(issues, fmt.Errorf("workflow %v task %s has no function", w.ID, task.ID))
		}
	}
	return issues
}

// DecodeWorkflow builds a workflow from its decoded document
func DecodeWorkflow(doc value.Value) (*Workflow, error) {
	if doc.Kind() != value.KindMapping {
		return nil, fmt.Errorf("invalid workflow: expected mapping, but had %v", doc.Kind())
	}
	ret := &Workflow{
		ID:          doc.Field("id").String(),
		Name:        doc.Field("name").String(),
		Description: doc.Field("description").String(),
		Condition:   doc.Field("condition"),
	}
	if priority := doc.Field("priority"); !priority.IsNull() {
		p, ok := value.AsNumber(priority)
		if !ok || !p.IsInteger() {
			return nil, fmt.Errorf("workflow %v: invalid priority %v", ret.ID, priority.String())
		}
		ret.WithPriority(int(p.IntPart()))
	}
	tasks := doc.Field("tasks")
	if !tasks.IsNull() && tasks.Kind() != value.KindSequence {
		return nil, fmt.Errorf("workflow %v: tasks must be a sequence", ret.ID)
	}
	for i, item := range tasks.Items() {
		task, err := decodeTask(item)
		if err != nil {
			return nil, fmt.Errorf("workflow %v task[%d]: %w", ret.ID, i, err)
		}
		ret.Tasks = append(ret.Tasks, task)
	}
	return ret, nil
}

func decodeTask(doc value.Value) (*Task, error) {
	if doc.Kind() != value.KindMapping {
		return nil, fmt.Errorf("expected mapping, but had %v", doc.Kind())
	}
	ret := &Task{
		ID:          doc.Field("id").String(),
		Name:        doc.Field("name").String(),
		Description: doc.Field("description").String(),
	}
	switch fn := doc.Field("function"); fn.Kind() {
	case value.KindString:
		ret.Function = &Function{Name: fn.Str(), Input: value.NewMap()}
	case value.KindMapping:
		ret.Function = &Function{Name: fn.Field("name").String(), Input: fn.Field("input")}
	}
	if ret.Function != nil && ret.Function.Input.IsNull() {
		ret.Function.Input = value.NewMap()
	}
	return ret, nil
}
