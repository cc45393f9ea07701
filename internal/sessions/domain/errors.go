package domain

import (
	"fmt"
	"strings"
)

// SessionNotFoundError indicates that no session with the given GUID exists.
type SessionNotFoundError struct {
	GUID string
}

// Error implements the error interface.
func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: guid=%q", e.GUID)
}

// NoActiveSessionError indicates that no session is in the active state.
type NoActiveSessionError struct{}

// Error implements the error interface.
func (e *NoActiveSessionError) Error() string {
	return "no active session"
}

// AmbiguousSessionError indicates that more than one session is active and
// the caller did not say which one to use.
type AmbiguousSessionError struct {
	Candidates []string
}

// Error implements the error interface.
func (e *AmbiguousSessionError) Error() string {
	return fmt.Sprintf("multiple active sessions (%s); choose one with --session",
		strings.Join(e.Candidates, ", "))
}

// InvalidStateTransitionError indicates a lifecycle change the session's
// current state does not allow.
type InvalidStateTransitionError struct {
	GUID string
	From SessionState
	To   SessionState
}

// Error implements the error interface.
func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("session %q cannot move from %s to %s", e.GUID, e.From, e.To)
}

// RunNotFoundError indicates that a session has no recorded workflow runs.
type RunNotFoundError struct {
	SessionGUID string
}

// Error implements the error interface.
func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("no workflow runs recorded for session %q", e.SessionGUID)
}
