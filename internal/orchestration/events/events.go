// Package events defines the notifications a workflow run publishes for
// displays and recorders.
package events

import (
	"time"

	"github.com/zjrosen/brainstorm/internal/orchestration/progress"
)

// WorkflowEventType identifies what happened.
type WorkflowEventType string

const (
	WorkflowStarted  WorkflowEventType = "workflow.started"
	SessionAcquired  WorkflowEventType = "session.acquired"
	RolesSelected    WorkflowEventType = "roles.selected"
	PhaseStarted     WorkflowEventType = "phase.started"
	PhaseFinished    WorkflowEventType = "phase.finished"
	StepStarted      WorkflowEventType = "step.started"
	StepFinished     WorkflowEventType = "step.finished"
	StepRetrying     WorkflowEventType = "step.retrying"
	ProgressChanged  WorkflowEventType = "progress.changed"
	WorkflowFinished WorkflowEventType = "workflow.finished"
)

// Topic is the broker topic all workflow events are published under.
const Topic = "workflow"

// WorkflowEvent is one notification from a run. Fields not relevant to Type
// are left zero.
type WorkflowEvent struct {
	Type      WorkflowEventType `json:"type"`
	RunID     string            `json:"run_id"`
	SessionID string            `json:"session_id,omitempty"`
	Time      time.Time         `json:"time"`

	Topic string   `json:"topic,omitempty"`
	Roles []string `json:"roles,omitempty"`

	Phase   string `json:"phase,omitempty"`
	StepID  string `json:"step_id,omitempty"`
	Label   string `json:"label,omitempty"`
	Attempt int    `json:"attempt,omitempty"`

	// Status is the step, phase or workflow status for *Finished events.
	Status   string        `json:"status,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`

	Tasks []progress.Task `json:"tasks,omitempty"`
}

// IsTerminal reports whether no further events follow for the run.
func (e WorkflowEvent) IsTerminal() bool {
	return e.Type == WorkflowFinished
}
