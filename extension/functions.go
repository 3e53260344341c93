package extension

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/viant/reframe/model/types"
	"github.com/viant/x"
)

// Function is a resolved catalog entry
type Function struct {
	Name      string
	Service   types.Service
	Signature *types.Signature
	InputType string
}

// Functions is the task function catalog
type Functions struct {
	types    *Types
	services map[string]types.Service
	index    map[string]*Function
	mux      sync.RWMutex
}

// Types returns the input type registry
func (f *Functions) Types() *Types {
	return f.types
}

// Register adds every method of a function group; a name already taken by another
// group is an error
func (f *Functions) Register(service types.Service) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	for i := range service.Methods() {
		signature := &service.Methods()[i]
		if prev, ok := f.index[signature.Name]; ok && prev.Service.Name() != service.Name() {
			return fmt.Errorf("function %v already registered by %v", signature.Name, prev.Service.Name())
		}
		fn := &Function{Name: signature.Name, Service: service, Signature: signature}
		if signature.Input != nil {
			f.types.Register(x.NewType(signature.Input))
			fn.InputType = NameOf(signature.Input)
		}
		f.index[signature.Name] = fn
		f.index[service.Name()+"."+signature.Name] = fn
	}
	f.services[service.Name()] = service
	return nil
}

// Lookup resolves a plain (map) or group qualified (transform.map) function name
func (f *Functions) Lookup(name string) (*Function, error) {
	f.mux.RLock()
	defer f.mux.RUnlock()
	if ret, ok := f.index[strings.TrimSpace(name)]; ok {
		return ret, nil
	}
	return nil, types.NewError(types.KindMapping, "unknown function %q", name)
}

// InputType returns the registered input type of a function
func (f *Functions) InputType(fn *Function) (reflect.Type, error) {
	if fn.InputType == "" {
		return nil, nil
	}
	aType := f.types.Lookup(fn.InputType)
	if aType == nil {
		return nil, fmt.Errorf("type %v not registered", fn.InputType)
	}
	return aType.Type, nil
}

// Service returns a function group by name
func (f *Functions) Service(name string) types.Service {
	f.mux.RLock()
	defer f.mux.RUnlock()
	return f.services[name]
}

// Names returns plain function names in lexical order
func (f *Functions) Names() []string {
	f.mux.RLock()
	defer f.mux.RUnlock()
	var ret []string
	for name := range f.index {
		if !strings.Contains(name, ".") {
			ret = append(ret, name)
		}
	}
	sort.Strings(ret)
	return ret
}

// NewFunctions creates a catalog with the supplied function groups
func NewFunctions(services ...types.Service) (*Functions, error) {
	ret := &Functions{
		types:    NewTypes(),
		services: make(map[string]types.Service),
		index:    make(map[string]*Function),
	}
	for _, service := range services {
		if err := ret.Register(service); err != nil {
			return nil, err
		}
	}
	return ret, nil
}
