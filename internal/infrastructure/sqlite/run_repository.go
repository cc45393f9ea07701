package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/brainstorm/internal/sessions/domain"
)

// runRepository implements domain.RunRepository using SQLite.
type runRepository struct {
	db *sql.DB
}

func newRunRepository(db *sql.DB) *runRepository {
	return &runRepository{db: db}
}

var _ domain.RunRepository = (*runRepository)(nil)

// SaveRun inserts a run record. Run ids are unique.
func (r *runRepository) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	m := toRunModel(run)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workflow_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RunID, m.SessionGUID, m.Topic, m.Roles, m.Status, m.StartedAt, m.FinishedAt, m.StatusPath, m.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting workflow run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently started run for a session.
func (r *runRepository) LatestRun(ctx context.Context, sessionGUID string) (*domain.RunRecord, error) {
	var m runModel
	err := r.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM workflow_runs WHERE session_guid = ? ORDER BY started_at DESC, id DESC LIMIT 1`,
		sessionGUID,
	).Scan(m.scanTargets()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.RunNotFoundError{SessionGUID: sessionGUID}
	}
	if err != nil {
		return nil, fmt.Errorf("finding latest run: %w", err)
	}
	return m.toDomain(), nil
}

// ListRuns returns a session's runs, newest first.
func (r *runRepository) ListRuns(ctx context.Context, sessionGUID string, limit int) ([]*domain.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM workflow_runs WHERE session_guid = ? ORDER BY started_at DESC, id DESC`
	args := []any{sessionGUID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*domain.RunRecord
	for rows.Next() {
		var m runModel
		if err := rows.Scan(m.scanTargets()...); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		runs = append(runs, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return runs, nil
}
