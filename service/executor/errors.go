package executor

import "errors"

var (
	ErrFunctionMissing = errors.New("task has no function")
	ErrNotCompiled     = errors.New("task was not compiled")
)
