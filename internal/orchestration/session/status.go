package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/brainstorm/internal/orchestration/progress"
)

// StatusRecordVersion is the schema version written to status.json.
const StatusRecordVersion = "1.0"

// Run statuses as written to the record.
const (
	StatusCompleted          = "completed"
	StatusPartiallyCompleted = "partially_completed"
	StatusFailed             = "failed"
)

// StatusRecord is the minimal record of a finished run kept in the session
// directory.
type StatusRecord struct {
	Version    string          `json:"version"`
	RunID      string          `json:"run_id"`
	SessionID  string          `json:"session_id"`
	Topic      string          `json:"topic"`
	Roles      []string        `json:"roles"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Steps      []StepRecord    `json:"steps"`
	Tasks      []progress.Task `json:"tasks"`
}

// StepRecord is one step's outcome in the record.
type StepRecord struct {
	ID       string `json:"id"`
	Phase    string `json:"phase"`
	Role     string `json:"role,omitempty"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Attempts int    `json:"attempts"`
	Artifact string `json:"artifact,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// LoadStatus reads a status record.
func LoadStatus(path string) (*StatusRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the session directory
	if err != nil {
		return nil, fmt.Errorf("reading status record: %w", err)
	}
	var rec StatusRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing status record: %w", err)
	}
	return &rec, nil
}

// SaveStatus writes rec to path. The file is written to a temporary sibling
// and renamed so readers never see a partial record.
func SaveStatus(path string, rec *StatusRecord) error {
	if rec.Version == "" {
		rec.Version = StatusRecordVersion
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling status record: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating status directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "status.*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary status record: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing temporary status record: %w", writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temporary status record: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming status record: %w", err)
	}
	return nil
}
