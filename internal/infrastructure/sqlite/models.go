package sqlite

import (
	"database/sql"
	"strings"
	"time"

	"github.com/zjrosen/brainstorm/internal/sessions/domain"
)

// sessionModel is a sessions row. Times are Unix seconds.
type sessionModel struct {
	ID          int64
	GUID        string
	Topic       string
	WorkDir     string
	State       string
	CreatedAt   int64
	UpdatedAt   int64
	CompletedAt sql.NullInt64
	ArchivedAt  sql.NullInt64
}

const sessionColumns = `id, guid, topic, work_dir, state, created_at, updated_at, completed_at, archived_at`

func (m *sessionModel) scanTargets() []any {
	return []any{&m.ID, &m.GUID, &m.Topic, &m.WorkDir, &m.State, &m.CreatedAt, &m.UpdatedAt, &m.CompletedAt, &m.ArchivedAt}
}

func toSessionModel(s *domain.Session) sessionModel {
	return sessionModel{
		ID:          s.ID(),
		GUID:        s.GUID(),
		Topic:       s.Topic(),
		WorkDir:     s.WorkDir(),
		State:       string(s.State()),
		CreatedAt:   s.CreatedAt().Unix(),
		UpdatedAt:   s.UpdatedAt().Unix(),
		CompletedAt: nullUnix(s.CompletedAt()),
		ArchivedAt:  nullUnix(s.ArchivedAt()),
	}
}

func (m *sessionModel) toDomain() *domain.Session {
	return domain.ReconstituteSession(
		m.ID,
		m.GUID,
		m.Topic,
		m.WorkDir,
		domain.SessionState(m.State),
		time.Unix(m.CreatedAt, 0),
		time.Unix(m.UpdatedAt, 0),
		timePtr(m.CompletedAt),
		timePtr(m.ArchivedAt),
	)
}

// runModel is a workflow_runs row.
type runModel struct {
	RunID       string
	SessionGUID string
	Topic       string
	Roles       string // comma separated
	Status      string
	StartedAt   int64 // Unix milliseconds
	FinishedAt  int64 // Unix milliseconds
	StatusPath  string
	Error       sql.NullString
}

const runColumns = `run_id, session_guid, topic, roles, status, started_at, finished_at, status_path, error`

func (m *runModel) scanTargets() []any {
	return []any{&m.RunID, &m.SessionGUID, &m.Topic, &m.Roles, &m.Status, &m.StartedAt, &m.FinishedAt, &m.StatusPath, &m.Error}
}

func toRunModel(r *domain.RunRecord) runModel {
	return runModel{
		RunID:       r.RunID,
		SessionGUID: r.SessionGUID,
		Topic:       r.Topic,
		Roles:       strings.Join(r.Roles, ","),
		Status:      r.Status,
		StartedAt:   r.StartedAt.UnixMilli(),
		FinishedAt:  r.FinishedAt.UnixMilli(),
		StatusPath:  r.StatusPath,
		Error:       sql.NullString{String: r.Error, Valid: r.Error != ""},
	}
}

func (m *runModel) toDomain() *domain.RunRecord {
	var roles []string
	if m.Roles != "" {
		roles = strings.Split(m.Roles, ",")
	}
	return &domain.RunRecord{
		RunID:       m.RunID,
		SessionGUID: m.SessionGUID,
		Topic:       m.Topic,
		Roles:       roles,
		Status:      m.Status,
		StartedAt:   time.UnixMilli(m.StartedAt),
		FinishedAt:  time.UnixMilli(m.FinishedAt),
		StatusPath:  m.StatusPath,
		Error:       m.Error.String,
	}
}

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0)
	return &t
}
