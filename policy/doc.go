// Package policy carries per-request execution rules: which workflows may run and
// how rules treat absent paths. A policy travels with the request context.
package policy
