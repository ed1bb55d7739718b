// Package materialize turns the collected catalog scripts into two values:
// the year/model list and the numeric-keyed catalog mapping.
//
// Scripts made only of literal assignments (the usual case) are read from
// their syntax tree and never executed. Anything else is evaluated in a
// fresh goja runtime with no host bindings; only the two globals are read
// back out of it.
//
// Fragments are applied in order. Whole assignments of the catalog merge
// into what earlier fragments produced, last write wins per key.
package materialize
