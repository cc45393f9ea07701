package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTopic is returned for blank topics before any session is acquired.
	ErrEmptyTopic = errors.New("topic is empty")

	// ErrInvalidTransition is returned for a backwards or skipped status change.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrRetryExhausted is wrapped when every attempt allowed by a phase
	// policy failed.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrArtifactMissing is the failure reason when the completion predicate
	// does not hold.
	ErrArtifactMissing = errors.New("artifact missing")
)

// HardFailureError ends a phase with no way to continue it.
type HardFailureError struct {
	Phase string
	Cause error
}

// Error implements the error interface.
func (e *HardFailureError) Error() string {
	return fmt.Sprintf("%s phase failed: %v", e.Phase, e.Cause)
}

// Unwrap returns the cause.
func (e *HardFailureError) Unwrap() error {
	return e.Cause
}

// StepFailureError records why one step failed.
type StepFailureError struct {
	StepID string
	Reason string
	Cause  error
}

// Error implements the error interface.
func (e *StepFailureError) Error() string {
	return fmt.Sprintf("step %s failed: %s", e.StepID, e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *StepFailureError) Unwrap() error {
	return e.Cause
}
