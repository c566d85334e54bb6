package service

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that no layout or settings row exists for a guild.
// Callers treat it as "use defaults" or "nothing to apply", not as fatal.
var ErrNotFound = errors.New("not found")

// ErrConflict signals that a concurrent save raced to the same layout
// version and lost on the unique key. The save can be retried with a fresh
// version number.
var ErrConflict = errors.New("version conflict")

// ExternalAPIError wraps a failed call against the guild-management API.
// The applier records it per entity in the report instead of aborting.
type ExternalAPIError struct {
	Op     string // e.g. "create-role"
	Entity string
	Err    error
}

func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Entity, e.Err)
}

func (e *ExternalAPIError) Unwrap() error {
	return e.Err
}
