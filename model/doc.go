// Package model contains the in-memory representation of transformation packages:
// workflow and task definitions, registry index entries, variant tables and
// scenario fixtures.
//
// Definitions are decoded from YAML or JSON into ordered values (see the `value`
// sub-package) so that embedded rules keep their exact numbers and key order.
// Rules themselves are compiled by the `expr` sub-package; error kinds live in
// `types`.
package model
