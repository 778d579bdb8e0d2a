package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStep is returned by New for malformed catalogues.
	ErrInvalidStep = errors.New("invalid migration step")

	// ErrNilRoot is returned by Run when no root is supplied.
	ErrNilRoot = errors.New("nil root")

	// ErrNegativeRevision is returned for roots with a negative stored revision.
	ErrNegativeRevision = errors.New("negative revision")

	// ErrUnappliedFixes is returned when a step returns with fixes still
	// pending in its buffer.
	ErrUnappliedFixes = errors.New("step left unapplied fixes")
)

// StepError reports the failure of a single migration step.
//
// The root's revision is left at the last step that completed, so the
// failing step is retried on the next load.
type StepError struct {
	Revision int
	Name     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("migration step %d (%s): %v", e.Revision, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsStepError reports whether err wraps a StepError.
func IsStepError(err error) bool {
	var se *StepError
	return errors.As(err, &se)
}
