package workflow

import (
	"time"

	"github.com/zjrosen/brainstorm/internal/orchestration/progress"
	"github.com/zjrosen/brainstorm/internal/orchestration/roles"
	"github.com/zjrosen/brainstorm/internal/orchestration/session"
	"github.com/zjrosen/brainstorm/internal/sessions/domain"
)

// Status is the overall result of a run.
type Status string

const (
	StatusCompleted          Status = session.StatusCompleted
	StatusPartiallyCompleted Status = session.StatusPartiallyCompleted
	StatusFailed             Status = session.StatusFailed
)

// OutcomeStatus is how a single step ended from the caller's point of view.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeSkipped   OutcomeStatus = "skipped"
)

// Skip reasons.
const (
	SkipFrameworkFailed = "framework phase failed"
	SkipNoRoleOutputs   = "no role analysis succeeded"
	SkipCancelled       = "run cancelled"
)

// StepOutcome reports one planned step. Every planned step appears exactly
// once in a Result.
type StepOutcome struct {
	ID       string
	Phase    Phase
	Label    string
	Role     roles.Role
	Status   OutcomeStatus
	Reason   string
	Attempts int
	Artifact string
	Duration time.Duration
}

// Result is the terminal record of a run.
type Result struct {
	RunID      string
	SessionID  string
	SessionDir string
	Topic      string
	Roles      roles.Selection
	Status     Status
	Steps      []StepOutcome
	Tasks      []progress.Task
	StartedAt  time.Time
	FinishedAt time.Time

	// StatusPath is where the status record was written.
	StatusPath string

	// Err is the hard failure that ended the run or its synthesis, if any.
	// A synthesis failure does not fail the run.
	Err error
}

// Duration returns the run's wall time.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RoleOutcomes returns the outcome of each role analysis in selection order.
func (r *Result) RoleOutcomes() []StepOutcome {
	var out []StepOutcome
	for _, s := range r.Steps {
		if s.Phase == PhaseRoleAnalysis {
			out = append(out, s)
		}
	}
	return out
}

// FailedRoles returns roles whose analysis failed. Skipped roles are not
// included.
func (r *Result) FailedRoles() []roles.Role {
	var out []roles.Role
	for _, s := range r.RoleOutcomes() {
		if s.Status == OutcomeFailed {
			out = append(out, s.Role)
		}
	}
	return out
}

// Artifacts returns the paths of every artifact a succeeded step produced.
func (r *Result) Artifacts() []string {
	var out []string
	for _, s := range r.Steps {
		if s.Status == OutcomeSucceeded {
			out = append(out, s.Artifact)
		}
	}
	return out
}

// Step returns the outcome with the given id.
func (r *Result) Step(id string) (StepOutcome, bool) {
	for _, s := range r.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return StepOutcome{}, false
}

// StatusRecord converts the result into its on-disk form.
func (r *Result) StatusRecord() *session.StatusRecord {
	rec := &session.StatusRecord{
		Version:    session.StatusRecordVersion,
		RunID:      r.RunID,
		SessionID:  r.SessionID,
		Topic:      r.Topic,
		Roles:      r.Roles.Strings(),
		Status:     string(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Tasks:      r.Tasks,
		Steps:      make([]session.StepRecord, 0, len(r.Steps)),
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	for _, s := range r.Steps {
		sr := session.StepRecord{
			ID:       s.ID,
			Phase:    s.Phase.String(),
			Role:     string(s.Role),
			Status:   string(s.Status),
			Reason:   s.Reason,
			Attempts: s.Attempts,
			Artifact: s.Artifact,
		}
		if s.Duration > 0 {
			sr.Duration = s.Duration.Round(time.Millisecond).String()
		}
		rec.Steps = append(rec.Steps, sr)
	}
	return rec
}

// RunRecord converts the result into its database row.
func (r *Result) RunRecord() *domain.RunRecord {
	run := &domain.RunRecord{
		RunID:       r.RunID,
		SessionGUID: r.SessionID,
		Topic:       r.Topic,
		Roles:       r.Roles.Strings(),
		Status:      string(r.Status),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		StatusPath:  r.StatusPath,
	}
	if r.Err != nil {
		run.Error = r.Err.Error()
	}
	return run
}

func outcomeOf(step *Step) StepOutcome {
	o := StepOutcome{
		ID:       step.ID,
		Phase:    step.Phase,
		Label:    step.Label,
		Role:     step.Role,
		Reason:   step.Reason(),
		Attempts: len(step.Attempts()),
		Artifact: step.Artifact,
		Duration: step.Duration(),
	}
	switch step.Status() {
	case StepSucceeded:
		o.Status = OutcomeSucceeded
	case StepFailed:
		o.Status = OutcomeFailed
	default:
		o.Status = OutcomeSkipped
	}
	return o
}

func skipped(step *Step, reason string) StepOutcome {
	o := outcomeOf(step)
	o.Status = OutcomeSkipped
	o.Reason = reason
	return o
}
