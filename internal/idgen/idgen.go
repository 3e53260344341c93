package idgen

import "github.com/google/uuid"

// NewFunc generates request ids, defaults to random UUIDs.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new request id
func New() string { return NewFunc() }

// Valid reports whether id parses as a UUID
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
