package domain

import "time"

// RunRecord is the persisted summary of one workflow run.
type RunRecord struct {
	RunID       string
	SessionGUID string
	Topic       string
	Roles       []string
	Status      string
	StartedAt   time.Time
	FinishedAt  time.Time
	StatusPath  string
	Error       string
}

// Duration returns the wall time of the run.
func (r *RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
