// Package storage provides the load function: rules copy a reference table,
// read once when the package loads, into the request context.
package storage

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/runtime/execution"
)

// Name of the function group as used by workflows.
const Name = "storage"

// Service implements load on top of the package resources
type Service struct{}

// New creates a storage function group
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return Name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "load",
			Description: "Copies a package resource table into a context path.",
			Input:       reflect.TypeOf(&LoadInput{}),
			Output:      reflect.TypeOf(&execution.Context{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "load":
		return s.load, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) load(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*LoadInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	ec, ok := out.(*execution.Context)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	// tables are shared by concurrent requests
	ec.SetPath(input.target, value.Clone(input.table))
	return nil
}
