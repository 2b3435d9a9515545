// Package common defines sentinel errors shared across the Aither client
// layers. Callers should match them with errors.Is.
package common

import "errors"

var (
	// ErrNotFound is returned when a record addressed by id does not exist
	// or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when a non-owner invokes an owner-only action.
	ErrForbidden = errors.New("forbidden: owner only")

	// ErrCorruptRecord marks a stored value that could not be decoded.
	ErrCorruptRecord = errors.New("corrupt record")
)
