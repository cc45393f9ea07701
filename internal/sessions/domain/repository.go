package domain

import "context"

// ListFilter narrows ListWithFilter results.
type ListFilter struct {
	// State restricts results to one state. Empty matches every state
	// except archived unless IncludeArchived is set.
	State           SessionState
	IncludeArchived bool
	Limit           int
}

// SessionRepository persists sessions.
type SessionRepository interface {
	// Save inserts a new session (ID == 0) or updates an existing one.
	Save(ctx context.Context, session *Session) error
	// FindByGUID returns SessionNotFoundError when absent.
	FindByGUID(ctx context.Context, guid string) (*Session, error)
	// ListWithFilter returns matching sessions, newest first.
	ListWithFilter(ctx context.Context, filter ListFilter) ([]*Session, error)
}

// RunRepository persists workflow run records.
type RunRepository interface {
	SaveRun(ctx context.Context, run *RunRecord) error
	// LatestRun returns RunNotFoundError when the session has no runs.
	LatestRun(ctx context.Context, sessionGUID string) (*RunRecord, error)
	ListRuns(ctx context.Context, sessionGUID string, limit int) ([]*RunRecord, error)
}
