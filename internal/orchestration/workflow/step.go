package workflow

import (
	"fmt"
	"time"

	"github.com/zjrosen/brainstorm/internal/orchestration/roles"
)

// StepStatus is a step's lifecycle state. It only moves forward:
// pending, running, then succeeded or failed.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
)

// IsTerminal reports whether the status is final.
func (s StepStatus) IsTerminal() bool {
	return s == StepSucceeded || s == StepFailed
}

// Attempt is one execution of a step.
type Attempt struct {
	Number    int
	Succeeded bool
	Reason    string
	Duration  time.Duration
}

// Step is one external invocation within a phase.
type Step struct {
	ID       string
	Phase    Phase
	Label    string
	Command  string
	Args     []string
	Role     roles.Role // RoleAnalysis steps only
	Artifact string

	// TaskIndex is the step's row in the progress tracker.
	TaskIndex int

	status   StepStatus
	attempts []Attempt
	reason   string
}

// NewStep creates a pending step.
func NewStep(id string, phase Phase, label, command string, args []string, artifact string, taskIndex int) *Step {
	return &Step{
		ID:        id,
		Phase:     phase,
		Label:     label,
		Command:   command,
		Args:      args,
		Artifact:  artifact,
		TaskIndex: taskIndex,
		status:    StepPending,
	}
}

// Status returns the current status.
func (s *Step) Status() StepStatus {
	return s.status
}

// Reason returns the failure reason of the last attempt, if any.
func (s *Step) Reason() string {
	return s.reason
}

// Attempts returns a copy of the attempt history.
func (s *Step) Attempts() []Attempt {
	out := make([]Attempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

// Duration sums attempt durations.
func (s *Step) Duration() time.Duration {
	var d time.Duration
	for _, a := range s.attempts {
		d += a.Duration
	}
	return d
}

func (s *Step) start() error {
	if s.status != StepPending {
		return fmt.Errorf("%w: step %s %s to %s", ErrInvalidTransition, s.ID, s.status, StepRunning)
	}
	s.status = StepRunning
	return nil
}

// recordAttempt appends an attempt. Attempts are only recorded while running;
// a retry adds a new attempt without leaving the running state.
func (s *Step) recordAttempt(a Attempt) error {
	if s.status != StepRunning {
		return fmt.Errorf("%w: step %s is %s, not running", ErrInvalidTransition, s.ID, s.status)
	}
	a.Number = len(s.attempts) + 1
	s.attempts = append(s.attempts, a)
	s.reason = a.Reason
	return nil
}

func (s *Step) finish(succeeded bool) error {
	if s.status != StepRunning {
		return fmt.Errorf("%w: step %s is %s, not running", ErrInvalidTransition, s.ID, s.status)
	}
	if succeeded {
		s.status = StepSucceeded
		s.reason = ""
	} else {
		s.status = StepFailed
	}
	return nil
}
