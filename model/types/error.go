package types

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies engine errors
type Kind string

const (
	KindParse            Kind = "parse"
	KindVariantDetection Kind = "variant_detection"
	KindValidation       Kind = "validation"
	KindMapping          Kind = "mapping"
	KindSerialization    Kind = "serialization"
	KindConfig           Kind = "config"
	KindTimeout          Kind = "timeout"
)

// Kind sentinels, use with errors.Is
var (
	ErrParse            = &Error{Kind: KindParse}
	ErrVariantDetection = &Error{Kind: KindVariantDetection}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrMapping          = &Error{Kind: KindMapping}
	ErrSerialization    = &Error{Kind: KindSerialization}
	ErrConfig           = &Error{Kind: KindConfig}
	ErrTimeout          = &Error{Kind: KindTimeout}
)

// Diagnostic is a single structured finding reported by a task or codec
type Diagnostic struct {
	Kind     Kind   `json:"kind" yaml:"kind"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Message  string `json:"message" yaml:"message"`
	Workflow string `json:"workflow,omitempty" yaml:"workflow,omitempty"`
	Task     string `json:"task,omitempty" yaml:"task,omitempty"`
}

func (d *Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	if d.Code != "" {
		b.WriteString("[" + d.Code + "]")
	}
	if d.Workflow != "" || d.Task != "" {
		b.WriteString(" " + d.Workflow + "/" + d.Task)
	}
	b.WriteString(": " + d.Message)
	return b.String()
}

// Error is the engine error carrying its kind and diagnostics
type Error struct {
	Kind        Kind
	Message     string
	Diagnostics []*Diagnostic
	Err         error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches errors of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Codes returns diagnostic codes
func (e *Error) Codes() []string {
	return DiagnosticCodes(e.Diagnostics)
}

// DiagnosticCodes returns non empty codes in order
func DiagnosticCodes(diagnostics []*Diagnostic) []string {
	var ret []string
	for _, d := range diagnostics {
		if d != nil && d.Code != "" {
			ret = append(ret, d.Code)
		}
	}
	return ret
}

// NewError creates a kind error
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps err as kind error
func WrapError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first engine error in the chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// DiagnosticsOf returns diagnostics of the first engine error in the chain
func DiagnosticsOf(err error) []*Diagnostic {
	var e *Error
	if errors.As(err, &e) {
		return e.Diagnostics
	}
	return nil
}

func NewMethodNotFoundError(name string) error {
	return NewError(KindMapping, "function %v not found", name)
}

func NewInvalidInputError(in interface{}) error {
	return NewError(KindConfig, "invalid input %T", in)
}

func NewInvalidOutputError(in interface{}) error {
	return NewError(KindConfig, "invalid output %T", in)
}
