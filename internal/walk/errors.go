package walk

import (
	"errors"
	"fmt"
)

var (
	// ErrWalkActive is returned when a write or a nested walk is attempted
	// while a walk is in progress.
	ErrWalkActive = errors.New("walk in progress")

	// ErrInvalidFix is returned by Record for fixes without a target.
	ErrInvalidFix = errors.New("invalid fix")

	// ErrMalformedDescriptor marks descriptors missing a type table or accessor.
	ErrMalformedDescriptor = errors.New("malformed descriptor")
)

// TraversalError reports a descriptor failure at a specific route.
//
// Traversal errors are fatal: a descriptor that cannot be read indicates a
// programming error in the document model, not a data problem, and the
// load is expected to abort.
type TraversalError struct {
	// Route locates the failing slot.
	Route string

	// Err is the underlying accessor error.
	Err error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("traverse %s: %v", e.Route, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// IsTraversalError reports whether err wraps a TraversalError.
func IsTraversalError(err error) bool {
	var te *TraversalError
	return errors.As(err, &te)
}
