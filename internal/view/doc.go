// Package view applies a view descriptor to a record collection.
//
// Project runs a fixed pipeline: filter, then sort, then group, then
// paginate. Records are JSON-shaped maps; fields are addressed by dotted
// paths and a path that does not resolve is treated as an absent value,
// never as an error. Per-source field-type metadata decides whether a field
// is compared as a number, a date, or text. When metadata is missing the
// type is inferred from the values.
//
// VisibleWindow and ApplyVisibleFields are render-time helpers used when a
// projection is displayed.
package view
