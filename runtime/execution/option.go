package execution

import (
	"github.com/viant/reframe/model"
)

// Option configures a Context
type Option func(c *Context)

// WithDirection sets the request direction, also exposed as metadata.direction
func WithDirection(direction model.Direction) Option {
	return func(c *Context) {
		c.Direction = direction
	}
}

// WithKind sets the request kind (transform, validate, generate)
func WithKind(kind model.Kind) Option {
	return func(c *Context) {
		c.Kind = kind
	}
}

// WithStateListeners attaches listeners invoked on every Set.
// The slice is copied; callers can reuse their backing array.
func WithStateListeners(listeners ...StateListener) Option {
	return func(c *Context) {
		if len(listeners) == 0 {
			return
		}
		c.listeners = append(c.listeners, listeners...)
	}
}
