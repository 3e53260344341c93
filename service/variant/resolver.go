// Package variant classifies a parsed message into a concrete subtype using an
// ordered rule table; the first rule whose condition holds wins.
package variant

import (
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/expr"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/model/value"
	"github.com/viant/reframe/runtime/execution"
)

// Path is the context path holding the resolved variant
const Path = "metadata.variant"

type rule struct {
	condition *expr.Expression
	variant   string
}

// Resolver is a compiled variant table
type Resolver struct {
	Direction   model.Direction
	MessageType string
	rules       []*rule
	fallback    string
}

// New compiles a variant table
func New(table *model.VariantTable) (*Resolver, error) {
	ret := &Resolver{Direction: table.Direction, MessageType: table.MessageType, fallback: table.Default}
	for i, item := range table.Rules {
		if item.Variant == "" {
			return nil, types.NewError(types.KindConfig, "variants %v rule[%d]: variant was empty", table.MessageType, i)
		}
		condition, err := expr.Compile(item.Condition)
		if err != nil {
			return nil, types.WrapError(types.KindConfig, err, "variants %v rule[%d]", table.MessageType, i)
		}
		ret.rules = append(ret.rules, &rule{condition: condition, variant: item.Variant})
	}
	return ret, nil
}

// Resolve returns the first matching variant, the default, or a VariantDetectionError
func (r *Resolver) Resolve(scope value.Value, options ...expr.Option) (string, error) {
	for _, candidate := range r.rules {
		ok, err := candidate.condition.Test(scope, options...)
		if err != nil {
			return "", types.WrapError(types.KindVariantDetection, err, "%v variant %v", r.MessageType, candidate.variant)
		}
		if ok {
			return candidate.variant, nil
		}
	}
	if r.fallback != "" {
		return r.fallback, nil
	}
	ret := types.NewError(types.KindVariantDetection, "no variant of %v matched", r.MessageType)
	ret.Diagnostics = []*types.Diagnostic{{Kind: types.KindVariantDetection, Code: r.MessageType, Message: ret.Message}}
	return "", ret
}

// Detect resolves the variant against the request context and records it
func (r *Resolver) Detect(ec *execution.Context, options ...expr.Option) (string, error) {
	ret, err := r.Resolve(ec.Scope(), options...)
	if err != nil {
		return "", err
	}
	if err = ec.Set(Path, value.String(ret)); err != nil {
		return "", err
	}
	return ret, nil
}
