package types

import (
	"context"
	"reflect"
)

// Signatures lists the functions of a group
type Signatures []Signature

// Lookup returns a signature by name or nil
func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if sig.Name == name {
			return sig
		}
	}
	return nil
}

// Signature describes a task function. Input is the typed configuration the
// generic task input converts into; Output is the state the function runs against.
type Signature struct {
	Name        string
	Description string
	Input       reflect.Type
	Output      reflect.Type
}

// Executable runs a task function: input is the load-time converted
// configuration, output the request state it mutates
type Executable func(ctx context.Context, input, output interface{}) error
