// Package scenario replays the regression fixtures declared by a package and
// reports every mismatch with a unified diff of expected and actual output.
package scenario
