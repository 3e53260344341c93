// Package executor bridges workflow tasks and the function catalog. Tasks are
// compiled once per package load: the function name is resolved, the generic
// input is converted into the function's typed configuration and its rules are
// compiled. Execution then only invokes the bound function against the request
// context and notifies an optional listener.
package executor
