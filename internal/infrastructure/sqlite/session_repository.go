package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/brainstorm/internal/sessions/domain"
)

// sessionRepository implements domain.SessionRepository using SQLite.
type sessionRepository struct {
	db *sql.DB
}

func newSessionRepository(db *sql.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

var _ domain.SessionRepository = (*sessionRepository)(nil)

// Save inserts new sessions (ID == 0) and updates existing ones.
func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	m := toSessionModel(session)

	if session.ID() == 0 {
		result, err := r.db.ExecContext(ctx,
			`INSERT INTO sessions (guid, topic, work_dir, state, created_at, updated_at, completed_at, archived_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.GUID, m.Topic, m.WorkDir, m.State, m.CreatedAt, m.UpdatedAt, m.CompletedAt, m.ArchivedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting session: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading session id: %w", err)
		}
		session.SetID(id)
		return nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET topic = ?, state = ?, updated_at = ?, completed_at = ?, archived_at = ? WHERE id = ?`,
		m.Topic, m.State, m.UpdatedAt, m.CompletedAt, m.ArchivedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &domain.SessionNotFoundError{GUID: m.GUID}
	}
	return nil
}

// FindByGUID retrieves a session by GUID.
func (r *sessionRepository) FindByGUID(ctx context.Context, guid string) (*domain.Session, error) {
	var m sessionModel
	err := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE guid = ?`, guid,
	).Scan(m.scanTargets()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.SessionNotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("finding session: %w", err)
	}
	return m.toDomain(), nil
}

// ListWithFilter returns sessions newest first.
func (r *sessionRepository) ListWithFilter(ctx context.Context, filter domain.ListFilter) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1 = 1`
	var args []any

	switch {
	case filter.State != "":
		query += ` AND state = ?`
		args = append(args, string(filter.State))
	case !filter.IncludeArchived:
		query += ` AND state != ?`
		args = append(args, string(domain.SessionArchived))
	}

	query += ` ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*domain.Session
	for rows.Next() {
		var m sessionModel
		if err := rows.Scan(m.scanTargets()...); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session rows: %w", err)
	}
	return sessions, nil
}
