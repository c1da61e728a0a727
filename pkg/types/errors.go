package types

import "errors"

// Store operation errors. Backends wrap these with context; callers match
// them with errors.Is.
var (
	// ErrNotFound reports that an id does not resolve to a live record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOperation reports a request that is well-formed but not
	// allowed, such as deleting the default view.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrValidation reports malformed input: bad field paths, unknown
	// operators or enums, unparseable stored JSON.
	ErrValidation = errors.New("validation error")

	// ErrTransactionFailure reports that an atomic multi-step write could not
	// commit. Nothing from the failed unit is visible afterwards.
	ErrTransactionFailure = errors.New("transaction failure")

	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
)
