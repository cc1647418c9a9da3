package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// Domain errors recoverable at the request boundary. Controllers map these to
// HTTP status codes; services return them wrapped with call-site context.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Category mutation guards.
	ErrDuplicateName = errors.New("a category with this name already exists")
	ErrInvalidParent = errors.New("parent category does not exist or is inactive")
	ErrCyclicParent  = errors.New("a category cannot be re-parented to itself or one of its descendants")
	ErrHasChildren   = errors.New("category still has child categories")
	ErrHasResources  = errors.New("category still has resources filed under it")

	// Resource category assignments must point at an active category.
	ErrInvalidCategory = errors.New("category does not exist or is inactive")

	// Review workflow guards.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingReason     = errors.New("a reject reason is required")
)

// TransitionError reports a refused state-machine move together with the
// resource's current status so clients can resynchronize.
type TransitionError struct {
	Current   ResourceStatus
	Attempted string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a resource in status %q", e.Attempted, e.Current)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NewTransitionError wraps ErrInvalidTransition with the observed status.
func NewTransitionError(current ResourceStatus, attempted string) error {
	return &TransitionError{Current: current, Attempted: attempted}
}
