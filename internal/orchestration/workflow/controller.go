package workflow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/brainstorm/internal/log"
	"github.com/zjrosen/brainstorm/internal/orchestration/artifacts"
	"github.com/zjrosen/brainstorm/internal/orchestration/events"
	"github.com/zjrosen/brainstorm/internal/orchestration/progress"
)

// OutcomeKind classifies how a phase ended.
type OutcomeKind int

const (
	AllSucceeded OutcomeKind = iota
	PartialSuccess
	HardFailure
)

// String returns the kind name.
func (k OutcomeKind) String() string {
	switch k {
	case AllSucceeded:
		return "all_succeeded"
	case PartialSuccess:
		return "partial_success"
	case HardFailure:
		return "hard_failure"
	default:
		return "unknown"
	}
}

// PhaseOutcome is what RunPhase reports.
type PhaseOutcome struct {
	Phase  Phase
	Kind   OutcomeKind
	Failed []*Step

	// Err is a *HardFailureError when Kind is HardFailure.
	Err error
}

// ControllerConfig holds PhaseController dependencies.
type ControllerConfig struct {
	Executor Executor
	Checker  artifacts.Checker
	Tracker  *progress.Tracker

	// RetryDelay is the pause before a retry attempt.
	RetryDelay time.Duration

	// Publish receives step events. Optional.
	Publish func(events.WorkflowEvent)

	// Tracer records one span per step. Optional.
	Tracer trace.Tracer

	// Sleep replaces the retry pause in tests. Optional.
	Sleep func(ctx context.Context, d time.Duration) error
}

// PhaseController runs the steps of one phase under that phase's Policy and
// keeps the tracker in step with them.
type PhaseController struct {
	executor   Executor
	checker    artifacts.Checker
	tracker    *progress.Tracker
	retryDelay time.Duration
	publish    func(events.WorkflowEvent)
	tracer     trace.Tracer
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewPhaseController creates a controller from cfg.
func NewPhaseController(cfg ControllerConfig) *PhaseController {
	c := &PhaseController{
		executor:   cfg.Executor,
		checker:    cfg.Checker,
		tracker:    cfg.Tracker,
		retryDelay: cfg.RetryDelay,
		publish:    cfg.Publish,
		tracer:     cfg.Tracer,
		sleep:      cfg.Sleep,
	}
	if c.checker == nil {
		c.checker = artifacts.NewFSChecker()
	}
	if c.publish == nil {
		c.publish = func(events.WorkflowEvent) {}
	}
	if c.tracer == nil {
		c.tracer = noop.NewTracerProvider().Tracer("")
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	return c
}

// RunPhase executes steps in order. Steps never run concurrently.
//
// A fatal phase stops at the first failed step and reports HardFailure. A
// phase that continues on failure runs every step and reports PartialSuccess
// when any failed.
func (c *PhaseController) RunPhase(ctx context.Context, phase Phase, steps []*Step) PhaseOutcome {
	policy := PolicyFor(phase)
	outcome := PhaseOutcome{Phase: phase, Kind: AllSucceeded}

	for _, step := range steps {
		if c.runStep(ctx, policy, step) {
			continue
		}
		outcome.Failed = append(outcome.Failed, step)

		if policy.Fatal || !policy.ContinueOnFailure {
			stepErr := &StepFailureError{StepID: step.ID, Reason: step.Reason()}
			if step.Reason() == ReasonArtifactMissing {
				stepErr.Cause = ErrArtifactMissing
			}
			cause := error(stepErr)
			if policy.MaxAttempts > 1 {
				cause = fmt.Errorf("%w: %w", ErrRetryExhausted, cause)
			}
			outcome.Kind = HardFailure
			outcome.Err = &HardFailureError{Phase: phase.String(), Cause: cause}
			return outcome
		}
	}

	if len(outcome.Failed) > 0 {
		outcome.Kind = PartialSuccess
	}
	return outcome
}

func (c *PhaseController) runStep(ctx context.Context, policy Policy, step *Step) bool {
	ctx, span := c.tracer.Start(ctx, "workflow.step", trace.WithAttributes(
		attribute.String("step.id", step.ID),
		attribute.String("step.phase", step.Phase.String()),
		attribute.String("step.command", step.Command),
	))
	defer span.End()

	if err := step.start(); err != nil {
		log.ErrorErr(log.CatOrch, "Step start rejected", err, "step", step.ID)
		span.SetStatus(codes.Error, err.Error())
		return false
	}
	c.mark(step, c.tracker.MarkInProgress)
	c.publish(events.WorkflowEvent{
		Type:    events.StepStarted,
		Phase:   step.Phase.String(),
		StepID:  step.ID,
		Label:   step.Label,
		Attempt: 1,
	})

	succeeded := false
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			log.Info(log.CatOrch, "Retrying step",
				"step", step.ID,
				"attempt", attempt,
				"reason", step.Reason())
			c.publish(events.WorkflowEvent{
				Type:    events.StepRetrying,
				Phase:   step.Phase.String(),
				StepID:  step.ID,
				Label:   step.Label,
				Attempt: attempt,
				Reason:  step.Reason(),
			})
			if err := c.sleep(ctx, c.retryDelay); err != nil {
				log.Warn(log.CatOrch, "Retry abandoned", "step", step.ID, "error", err)
				if rerr := step.recordAttempt(Attempt{Reason: err.Error()}); rerr != nil {
					log.ErrorErr(log.CatOrch, "Recording attempt failed", rerr, "step", step.ID)
				}
				break
			}
		}

		out := c.executor.Run(ctx, step)
		reason := out.Reason
		ok := out.Succeeded
		if ok && !artifacts.Ready(c.checker, step.Artifact) {
			ok = false
			reason = ReasonArtifactMissing
		}

		span.AddEvent("attempt", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.Bool("succeeded", ok),
		))
		if err := step.recordAttempt(Attempt{Succeeded: ok, Reason: reason, Duration: out.Duration}); err != nil {
			log.ErrorErr(log.CatOrch, "Recording attempt failed", err, "step", step.ID)
		}
		if ok {
			succeeded = true
			break
		}
		log.Warn(log.CatOrch, "Step attempt failed",
			"step", step.ID,
			"attempt", attempt,
			"reason", reason)
	}

	if err := step.finish(succeeded); err != nil {
		log.ErrorErr(log.CatOrch, "Step finish rejected", err, "step", step.ID)
	}

	status := StepSucceeded
	if succeeded {
		c.mark(step, c.tracker.MarkCompleted)
	} else {
		status = StepFailed
		c.mark(step, c.tracker.MarkFailed)
		span.SetStatus(codes.Error, step.Reason())
	}
	span.SetAttributes(attribute.Int("step.attempts", len(step.Attempts())))

	c.publish(events.WorkflowEvent{
		Type:     events.StepFinished,
		Phase:    step.Phase.String(),
		StepID:   step.ID,
		Label:    step.Label,
		Attempt:  len(step.Attempts()),
		Status:   string(status),
		Reason:   step.Reason(),
		Duration: step.Duration(),
	})
	return succeeded
}

func (c *PhaseController) mark(step *Step, fn func(int) error) {
	if err := fn(step.TaskIndex); err != nil {
		log.ErrorErr(log.CatOrch, "Tracker update rejected", err,
			"step", step.ID,
			"task", step.TaskIndex)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
