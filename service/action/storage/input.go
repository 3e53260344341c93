package storage

import (
	"github.com/viant/reframe/extension"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/runtime/execution"
)

// LoadInput copies a package reference table into the request context
type LoadInput struct {
	Resource string `json:"resource,omitempty"`
	Target   string `json:"target,omitempty"`

	table  value.Value
	target value.Path
}

// Init binds the named table from the package resources
func (i *LoadInput) Init(env *extension.Environment) error {
	if i.Resource == "" {
		return types.NewError(types.KindConfig, "load: resource was empty")
	}
	if i.Target == "" {
		return types.NewError(types.KindConfig, "load: target was empty")
	}
	var err error
	if i.target, err = execution.ParseTarget(i.Target); err != nil {
		return types.WrapError(types.KindConfig, err, "load: target")
	}
	table, ok := env.Resource(i.Resource)
	if !ok {
		return types.NewError(types.KindConfig, "load: unknown resource %v", i.Resource)
	}
	i.table = table
	return nil
}
