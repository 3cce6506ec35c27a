package apperrors

import "errors"

var (
	// ErrNotFound is returned when a lookup by id or name has no live
	// backing record. Soft-deleted records are indistinguishable from
	// records that never existed.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a creation or edit collides with an
	// existing live record: duplicate name/version, duplicate role, or a
	// role count that would exceed the declared size.
	ErrConflict = errors.New("conflict")

	// ErrInvalidReference is returned when an operation names a role or
	// strategy the owning simulator does not declare, or a profile whose
	// role partition does not match the scheduler's.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrMalformedInput is returned when an assignment string fails the
	// assignment grammar.
	ErrMalformedInput = errors.New("malformed input")
)
