// Package expr implements the rule language used by workflow conditions, variant
// rules, mappings and assertions. Rules are JSONLogic shaped documents compiled
// once at load time into an immutable tree and evaluated against a scope value.
//
// Evaluation never mutates the scope and has no side effects.
package expr

import (
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
)

// MissingPath controls how var resolves absent paths
type MissingPath string

const (
	// MissingLenient resolves absent paths to Null
	MissingLenient MissingPath = "lenient"
	// MissingStrict reports a mapping error naming the path
	MissingStrict MissingPath = "strict"
)

// Valid returns true for known policies (empty means lenient)
func (m MissingPath) Valid() bool {
	switch m {
	case "", MissingLenient, MissingStrict:
		return true
	}
	return false
}

// Expression is a compiled rule
type Expression struct {
	source value.Value
	root   node
}

// Source returns the rule document the expression was compiled from
func (e *Expression) Source() value.Value { return e.source }

// Evaluate evaluates the expression against scope
func (e *Expression) Evaluate(scope value.Value, options ...Option) (value.Value, error) {
	s := &state{missing: MissingLenient}
	for _, opt := range options {
		opt(s)
	}
	if e == nil || e.root == nil {
		return value.Null(), nil
	}
	return e.root.eval(s, scope)
}

// Test evaluates the expression and returns its truthiness; a nil expression is true
func (e *Expression) Test(scope value.Value, options ...Option) (bool, error) {
	if e == nil {
		return true, nil
	}
	ret, err := e.Evaluate(scope, options...)
	if err != nil {
		return false, err
	}
	return value.Truthy(ret), nil
}

// Option customises evaluation
type Option func(s *state)

// WithMissingPath sets missing path policy
func WithMissingPath(policy MissingPath) Option {
	return func(s *state) {
		if policy != "" {
			s.missing = policy
		}
	}
}

type state struct {
	missing MissingPath
}

func (s *state) missingPath(path string) error {
	if s.missing == MissingStrict {
		return types.NewError(types.KindMapping, "missing path: %v", path)
	}
	return nil
}
