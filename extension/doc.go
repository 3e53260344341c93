// Package extension holds the task function catalog: the closed set of function
// groups a workflow task can name, and the x type registry of their typed inputs.
//
// Function names resolve at package load time; an unknown name fails the load.
package extension
