// Package types defines the Board and store interfaces, canvas entities,
// view descriptors, projection results, and standard error types for
// canvasboard.
//
// Records flowing through the view engine are plain maps (Record) so that any
// canvas entity can be filtered, sorted, and grouped by dotted field paths.
// Per-source field-type metadata (FieldTypes) tells the engine how to compare
// values that arrive as JSON scalars.
package types
