// Package domain holds the brainstorming session entity and the ports used to
// persist it.
package domain

import "time"

// SessionState is the lifecycle state of a session.
type SessionState string

const (
	// SessionActive sessions accept new workflow runs.
	SessionActive SessionState = "active"
	// SessionCompleted sessions have a finished run and are kept for reference.
	SessionCompleted SessionState = "completed"
	// SessionArchived sessions are hidden from default listings.
	SessionArchived SessionState = "archived"
)

// IsValid reports whether s is a known state.
func (s SessionState) IsValid() bool {
	switch s {
	case SessionActive, SessionCompleted, SessionArchived:
		return true
	}
	return false
}

// Session is one brainstorming workspace. A session owns a directory that
// every run writes its artifacts into.
type Session struct {
	id          int64
	guid        string
	topic       string
	workDir     string
	state       SessionState
	createdAt   time.Time
	updatedAt   time.Time
	completedAt *time.Time
	archivedAt  *time.Time
}

// NewSession creates an active session.
func NewSession(guid, topic, workDir string, now time.Time) *Session {
	return &Session{
		guid:      guid,
		topic:     topic,
		workDir:   workDir,
		state:     SessionActive,
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstituteSession rebuilds a Session from persisted fields.
func ReconstituteSession(
	id int64,
	guid, topic, workDir string,
	state SessionState,
	createdAt, updatedAt time.Time,
	completedAt, archivedAt *time.Time,
) *Session {
	return &Session{
		id:          id,
		guid:        guid,
		topic:       topic,
		workDir:     workDir,
		state:       state,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		completedAt: completedAt,
		archivedAt:  archivedAt,
	}
}

func (s *Session) ID() int64 { return s.id }
func (s *Session) GUID() string { return s.guid }
func (s *Session) Topic() string { return s.topic }
func (s *Session) WorkDir() string { return s.workDir }
func (s *Session) State() SessionState { return s.state }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }
func (s *Session) CompletedAt() *time.Time { return s.completedAt }
func (s *Session) ArchivedAt() *time.Time { return s.archivedAt }
func (s *Session) IsActive() bool { return s.state == SessionActive }

// SetID assigns the database identity after insert.
func (s *Session) SetID(id int64) {
	s.id = id
}

// Complete marks an active session finished.
func (s *Session) Complete(now time.Time) error {
	if s.state != SessionActive {
		return &InvalidStateTransitionError{GUID: s.guid, From: s.state, To: SessionCompleted}
	}
	s.state = SessionCompleted
	s.completedAt = &now
	s.updatedAt = now
	return nil
}

// Archive hides the session. Archiving an archived session is an error.
func (s *Session) Archive(now time.Time) error {
	if s.state == SessionArchived {
		return &InvalidStateTransitionError{GUID: s.guid, From: s.state, To: SessionArchived}
	}
	s.state = SessionArchived
	s.archivedAt = &now
	s.updatedAt = now
	return nil
}
