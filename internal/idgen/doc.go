// Package idgen issues opaque request identifiers. Callers must treat ids as
// opaque strings; the generator can be stubbed in tests.
package idgen
