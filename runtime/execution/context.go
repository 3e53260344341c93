package execution

import (
	"time"

	"github.com/viant/reframe/internal/clock"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

// Context namespaces
const (
	NamespacePayload  = "payload"
	NamespaceMetadata = "metadata"
	NamespaceDocument = "document"
	NamespaceScratch  = "scratch"
)

// OutputPath holds rendered wire text by convention
const OutputPath = "scratch.output"

// StateListener is invoked every time Set writes a path.
// The call is made synchronously; listeners must not write back into the Context.
type StateListener func(c *Context, path string, oldVal, newVal value.Value)

// Output is the frozen result of a publish call
type Output struct {
	Document value.Value
	Text     string
	HasText  bool
}

// Context is the per-request store threaded through every task of a request.
// It is owned by a single request and is not safe for concurrent use.
type Context struct {
	ID        string
	Kind      model.Kind
	Direction model.Direction
	StartedAt time.Time

	root        value.Value
	payloadSet  bool
	output      *Output
	diagnostics []*types.Diagnostic
	executions  []*Execution
	listeners   []StateListener
}

// NewContext creates an empty request context
func NewContext(id string, options ...Option) *Context {
	ret := &Context{ID: id, StartedAt: clock.Now(), Kind: model.KindTransform}
	for _, opt := range options {
		opt(ret)
	}
	metadata := value.NewMap()
	metadata.Put("request_id", value.String(id))
	metadata.Put("kind", value.String(string(ret.Kind)))
	if ret.Direction != "" {
		metadata.Put("direction", value.String(string(ret.Direction)))
	}
	metadata.Put("diagnostics", value.Sequence())
	metadata.Put("log", value.Sequence())
	ret.root = value.NewMap()
	ret.root.Put(NamespacePayload, value.Null())
	ret.root.Put(NamespaceMetadata, metadata)
	ret.root.Put(NamespaceDocument, value.Null())
	ret.root.Put(NamespaceScratch, value.NewMap())
	return ret
}

// SetDirection updates the resolved request direction
func (c *Context) SetDirection(direction model.Direction) {
	c.Direction = direction
	c.Metadata().Put("direction", value.String(string(direction)))
}

// SetPayload stores the raw request input, it can be called once
func (c *Context) SetPayload(payload value.Value) error {
	if c.payloadSet {
		return types.NewError(types.KindMapping, "payload is write-once")
	}
	c.payloadSet = true
	c.root.Put(NamespacePayload, payload)
	return nil
}

// Scope returns the evaluation root; callers must treat it as read-only
func (c *Context) Scope() value.Value { return c.root }

// Snapshot returns a deep copy of all namespaces
func (c *Context) Snapshot() value.Value { return value.Clone(c.root) }

// Payload returns the raw request input
func (c *Context) Payload() value.Value { return c.root.Field(NamespacePayload) }

// Metadata returns the metadata namespace
func (c *Context) Metadata() value.Value { return c.root.Field(NamespaceMetadata) }

// Document returns the evolving business document
func (c *Context) Document() value.Value { return c.root.Field(NamespaceDocument) }

// Scratch returns the scratch namespace
func (c *Context) Scratch() value.Value { return c.root.Field(NamespaceScratch) }

// Get resolves a context path, absent paths yield Null
func (c *Context) Get(path string) value.Value {
	return value.Get(c.root, path)
}

// ParseTarget parses a writable context path: it must address the document,
// metadata or scratch namespace.
func ParseTarget(path string) (value.Path, error) {
	ret, err := value.ParsePath(path)
	if err != nil {
		return nil, types.WrapError(types.KindMapping, err, "invalid target path %q", path)
	}
	switch ret.Head() {
	case NamespaceDocument, NamespaceMetadata, NamespaceScratch:
		return ret, nil
	case NamespacePayload:
		return nil, types.NewError(types.KindMapping, "target path %q: payload is write-once", path)
	case "":
		return nil, types.NewError(types.KindMapping, "target path is empty")
	}
	return nil, types.NewError(types.KindMapping, "target path %q: unknown namespace %q", path, ret.Head())
}

// Set writes a deep copy of v at path
func (c *Context) Set(path string, v value.Value) error {
	target, err := ParseTarget(path)
	if err != nil {
		return err
	}
	c.SetPath(target, v)
	return nil
}

// SetPath writes a deep copy of v at a path checked with ParseTarget
func (c *Context) SetPath(path value.Path, v value.Value) {
	item := value.Clone(v)
	var old value.Value
	if len(c.listeners) > 0 {
		old = path.Get(c.root)
	}
	c.root = path.Set(c.root, item)
	for _, listener := range c.listeners {
		listener(c, path.String(), old, item)
	}
}

// Publish freezes a deep copy of the document (and rendered text) as the
// request output. Subsequent calls return the same frozen output.
func (c *Context) Publish() *Output {
	if c.output != nil {
		return c.output
	}
	ret := &Output{Document: value.Clone(c.Document())}
	if text := c.Get(OutputPath); text.Kind() == value.KindString {
		ret.Text = text.Str()
		ret.HasText = true
	}
	c.output = ret
	c.Metadata().Put("published", value.Bool(true))
	return ret
}

// Published returns the frozen output if publish has run
func (c *Context) Published() (*Output, bool) {
	return c.output, c.output != nil
}

// AddDiagnostics records findings, also exposed under metadata.diagnostics
func (c *Context) AddDiagnostics(diagnostics ...*types.Diagnostic) {
	list := c.Metadata().Field("diagnostics")
	for _, d := range diagnostics {
		if d == nil {
			continue
		}
		c.diagnostics = append(c.diagnostics, d)
		item := value.NewMap()
		item.Put("kind", value.String(string(d.Kind)))
		if d.Code != "" {
			item.Put("code", value.String(d.Code))
		}
		item.Put("message", value.String(d.Message))
		if d.Workflow != "" {
			item.Put("workflow", value.String(d.Workflow))
		}
		if d.Task != "" {
			item.Put("task", value.String(d.Task))
		}
		list.Append(item)
	}
}

// Diagnostics returns recorded findings
func (c *Context) Diagnostics() []*types.Diagnostic { return c.diagnostics }

// Start creates and starts an execution record for a task
func (c *Context) Start(workflowID, taskID, function string) *Execution {
	ret := NewExecution(c.ID, workflowID, taskID, len(c.executions)+1)
	ret.Function = function
	ret.Start()
	c.executions = append(c.executions, ret)
	return ret
}

// Finish completes or fails an execution and appends it to metadata.log
func (c *Context) Finish(execution *Execution, err error) {
	if err != nil {
		execution.Fail(err)
	} else {
		execution.Complete()
	}
	c.Metadata().Field("log").Append(execution.Value())
}

// Executions returns task executions in run order
func (c *Context) Executions() []*Execution { return c.executions }
