// Package orchestrator runs a single request through the active registry
// snapshot: it parses the input, resolves the message variant, selects and
// orders the matching workflows and executes their tasks in sequence against
// one execution context.
package orchestrator
