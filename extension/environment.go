package extension

import (
	"github.com/viant/reframe/codec"
	"github.com/viant/reframe/model/value"
)

// Environment carries package scoped resources bound to function inputs at load time
type Environment struct {
	Codecs   codec.Set
	Ordering codec.Ordering
	// Location is the URL of the workflow being compiled
	Location string
	// Input is the raw task input, it keeps mapping key order lost by typed conversion
	Input value.Value
	// Resources holds the package reference tables by name, read at load time
	Resources value.Value
}

// ForTask returns a copy of the environment carrying a task's raw input
func (e *Environment) ForTask(input value.Value) *Environment {
	ret := &Environment{Input: input}
	if e != nil {
		ret.Codecs = e.Codecs
		ret.Ordering = e.Ordering
		ret.Location = e.Location
		ret.Resources = e.Resources
	}
	return ret
}

// ForLocation returns a copy of the environment for the workflow at URL
func (e *Environment) ForLocation(URL string) *Environment {
	ret := e.ForTask(value.Null())
	ret.Location = URL
	return ret
}

// Raw returns the raw input node at path, Null when absent
func (e *Environment) Raw(path string) value.Value {
	if e == nil {
		return value.Null()
	}
	return value.Get(e.Input, path)
}

// Resource returns a package reference table by name
func (e *Environment) Resource(name string) (value.Value, bool) {
	if e == nil || e.Resources.Kind() != value.KindMapping {
		return value.Null(), false
	}
	return e.Resources.Mapping().Get(name)
}

// Initializer is implemented by function inputs that compile rules or bind
// resources once, when the package loads
type Initializer interface {
	Init(env *Environment) error
}
