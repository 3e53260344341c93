// Package progress keeps aggregated counters (workflows and tasks run, skipped,
// failed) for a single engine request. The tracker travels in the request
// context so components can update it without a global registry.
package progress
