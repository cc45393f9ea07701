package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/brainstorm/internal/log"
	"github.com/zjrosen/brainstorm/internal/orchestration/artifacts"
	"github.com/zjrosen/brainstorm/internal/orchestration/client"
)

// Reasons reported for failed executions.
const (
	ReasonInvocationAborted = "invocation aborted"
	ReasonArtifactMissing   = "artifact missing"
)

// Outcome is the result of one execution of a step.
type Outcome struct {
	Succeeded bool
	Reason    string

	// Completion is the invocation's own report. Zero when the channel closed
	// without one.
	Completion client.Completion
	Duration   time.Duration
}

// Executor runs a step exactly once.
type Executor interface {
	Run(ctx context.Context, step *Step) Outcome
}

// StepExecutor invokes a step's command and applies the completion predicate:
// the expected artifact exists and is non-empty.
type StepExecutor struct {
	invoker client.Invoker
	waiter  *artifacts.Waiter
	settle  time.Duration
	now     func() time.Time
}

// NewStepExecutor creates an executor. settle bounds how long a successful
// invocation may take to land its artifact on disk.
func NewStepExecutor(invoker client.Invoker, checker artifacts.Checker, settle time.Duration) *StepExecutor {
	return &StepExecutor{
		invoker: invoker,
		waiter:  artifacts.NewWaiter(checker),
		settle:  settle,
		now:     time.Now,
	}
}

// Run clears any previous artifact, invokes the step's command, waits for its
// completion signal, then checks the artifact. It never retries.
func (e *StepExecutor) Run(ctx context.Context, step *Step) Outcome {
	start := e.now()

	// A session reused from an earlier run may still hold this path.
	if err := artifacts.Clear(step.Artifact); err != nil {
		log.ErrorErr(log.CatOrch, "Clearing artifact failed", err, "step", step.ID, "artifact", step.Artifact)
		return Outcome{Reason: err.Error(), Duration: e.now().Sub(start)}
	}

	log.Debug(log.CatOrch, "Invoking step command",
		"step", step.ID,
		"command", step.Command,
		"artifact", step.Artifact)

	completion, ok := <-e.invoker.Invoke(ctx, step.Command, step.Args)
	if !ok {
		return Outcome{Reason: ReasonInvocationAborted, Duration: e.now().Sub(start)}
	}

	out := Outcome{Completion: completion}
	if !completion.OK() {
		out.Reason = failureReason(completion)
		out.Duration = e.now().Sub(start)
		return out
	}

	if err := e.waiter.Await(ctx, step.Artifact, e.settle); err != nil {
		if !errors.Is(err, artifacts.ErrNotReady) {
			log.Warn(log.CatOrch, "Artifact wait failed", "step", step.ID, "error", err)
		}
		out.Reason = ReasonArtifactMissing
		out.Duration = e.now().Sub(start)
		return out
	}

	out.Succeeded = true
	out.Duration = e.now().Sub(start)
	return out
}

func failureReason(c client.Completion) string {
	switch {
	case c.Err != nil:
		return c.Err.Error()
	case c.Result != "":
		return fmt.Sprintf("command reported an error: %s", c.Result)
	default:
		return "command reported an error"
	}
}
