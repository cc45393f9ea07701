package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/brainstorm/internal/log"
	"github.com/zjrosen/brainstorm/internal/orchestration/artifacts"
	"github.com/zjrosen/brainstorm/internal/orchestration/client"
	"github.com/zjrosen/brainstorm/internal/orchestration/events"
	"github.com/zjrosen/brainstorm/internal/orchestration/progress"
	"github.com/zjrosen/brainstorm/internal/orchestration/roles"
	"github.com/zjrosen/brainstorm/internal/orchestration/session"
	"github.com/zjrosen/brainstorm/internal/pubsub"
	"github.com/zjrosen/brainstorm/internal/sessions/domain"
)

// Command names invoked for the fixed phases. Role analyses invoke the role id.
const (
	CommandFramework = "artifacts"
	CommandSynthesis = "synthesis"
)

// Step ids for the fixed phases. Role analysis steps use "role:<role>".
const (
	StepIDFramework = "framework"
	StepIDSynthesis = "synthesis"
)

// Task labels.
const (
	LabelFramework = "Generate topic framework"
	LabelSynthesis = "Synthesize role analyses"
)

// RoleStepID returns the step id of role's analysis.
func RoleStepID(role roles.Role) string {
	return "role:" + string(role)
}

// RoleLabel returns the task label of role's analysis.
func RoleLabel(role roles.Role) string {
	return roles.Title(role) + " analysis"
}

// Config holds Coordinator dependencies and tuning.
type Config struct {
	Selector *roles.Selector
	Sessions session.Manager
	Invoker  client.Invoker

	// Recorder persists the run once it is terminal. Optional.
	Recorder session.Recorder

	// Checker defaults to artifacts.FSChecker.
	Checker artifacts.Checker

	// Executor replaces the StepExecutor built from Invoker. Optional.
	Executor Executor

	// Broker receives every workflow event. Optional.
	Broker *pubsub.Broker[events.WorkflowEvent]

	// Tracer records run, phase and step spans. Optional.
	Tracer trace.Tracer

	// PreferredSession selects a session explicitly.
	PreferredSession string

	// FocusOverride customizes role focus text. Optional.
	FocusOverride func(roles.Role) *roles.FocusOverride

	RetryDelay     time.Duration
	ArtifactSettle time.Duration

	// Clock, NewRunID and Sleep replace time.Now, uuid.NewString and the
	// retry pause in tests.
	Clock    func() time.Time
	NewRunID func() string
	Sleep    func(ctx context.Context, d time.Duration) error
}

// Coordinator drives one topic through the workflow:
// Start, AcquireSession, Framework, RoleAnalysis, Synthesis, Terminal.
type Coordinator struct {
	cfg Config
}

// NewCoordinator creates a coordinator, filling unset optional dependencies.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.Selector == nil {
		cfg.Selector = roles.NewSelector(nil)
	}
	if cfg.Checker == nil {
		cfg.Checker = artifacts.NewFSChecker()
	}
	if cfg.Executor == nil {
		cfg.Executor = NewStepExecutor(cfg.Invoker, cfg.Checker, cfg.ArtifactSettle)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("")
	}
	if cfg.FocusOverride == nil {
		cfg.FocusOverride = func(roles.Role) *roles.FocusOverride { return nil }
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewRunID == nil {
		cfg.NewRunID = uuid.NewString
	}
	return &Coordinator{cfg: cfg}
}

// run is the state of one Coordinator.Run call.
type run struct {
	c       *Coordinator
	id      string
	topic   string
	handle  session.Handle
	layout  artifacts.Layout
	tracker *progress.Tracker
	machine *stateMachine
	result  *Result
}

func (r *run) publish(ev events.WorkflowEvent) {
	if r.c.cfg.Broker == nil {
		return
	}
	ev.RunID = r.id
	ev.SessionID = r.handle.ID
	if ev.Time.IsZero() {
		ev.Time = r.c.cfg.Clock()
	}
	r.c.cfg.Broker.Publish(events.Topic, ev)
}

func (r *run) advance(to State) {
	if err := r.machine.advance(to); err != nil {
		log.ErrorErr(log.CatOrch, "State transition rejected", err, "run", r.id)
	}
}

// Run executes the workflow for topic.
//
// A blank topic or an unresolved session returns a nil Result and a
// *HardFailureError. Once a session is acquired Run always returns a Result;
// the error is non-nil only when the Result status is failed.
//
// The context is honoured between phases only: a step that has started runs
// to completion.
func (c *Coordinator) Run(ctx context.Context, topic string) (*Result, error) {
	r := &run{
		c:       c,
		id:      c.cfg.NewRunID(),
		topic:   topic,
		machine: newStateMachine(),
	}

	if strings.TrimSpace(topic) == "" {
		return nil, &HardFailureError{Phase: StateStart.String(), Cause: ErrEmptyTopic}
	}

	ctx, span := c.cfg.Tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.String("run.id", r.id),
		attribute.String("run.topic", topic),
	))
	defer span.End()

	started := c.cfg.Clock()
	log.Info(log.CatOrch, "Workflow started", "run", r.id, "topic", topic)
	r.publish(events.WorkflowEvent{Type: events.WorkflowStarted, Topic: topic})

	r.advance(StateAcquireSession)
	handle, err := c.acquire(ctx, topic)
	if err != nil {
		hf := &HardFailureError{Phase: StateAcquireSession.String(), Cause: err}
		log.ErrorErr(log.CatOrch, "Session acquisition failed", err, "run", r.id)
		span.SetStatus(codes.Error, hf.Error())
		r.advance(StateTerminal)
		r.publish(events.WorkflowEvent{
			Type:   events.WorkflowFinished,
			Status: string(StatusFailed),
			Reason: hf.Error(),
		})
		return nil, hf
	}
	r.handle = handle
	r.layout = artifacts.NewLayout(handle.Dir)
	span.SetAttributes(attribute.String("session.id", handle.ID))
	r.publish(events.WorkflowEvent{Type: events.SessionAcquired})

	selection := c.cfg.Selector.Select(topic)
	log.Info(log.CatOrch, "Roles selected", "run", r.id, "roles", selection.Strings())
	r.publish(events.WorkflowEvent{Type: events.RolesSelected, Roles: selection.Strings()})

	r.result = &Result{
		RunID:      r.id,
		SessionID:  handle.ID,
		SessionDir: handle.Dir,
		Topic:      topic,
		Roles:      selection,
		StartedAt:  started,
	}

	r.tracker = progress.NewTracker()
	r.tracker.OnChange(func(tasks []progress.Task) {
		r.publish(events.WorkflowEvent{Type: events.ProgressChanged, Tasks: tasks})
	})

	controller := NewPhaseController(ControllerConfig{
		Executor:   c.cfg.Executor,
		Checker:    c.cfg.Checker,
		Tracker:    r.tracker,
		RetryDelay: c.cfg.RetryDelay,
		Publish:    r.publish,
		Tracer:     c.cfg.Tracer,
		Sleep:      c.cfg.Sleep,
	})

	r.execute(ctx, controller, selection)

	r.advance(StateTerminal)
	r.finish(ctx)

	if r.result.Status == StatusFailed {
		span.SetStatus(codes.Error, errString(r.result.Err))
		return r.result, r.result.Err
	}
	return r.result, nil
}

// acquire resolves the run's session. Ambiguity is detected before Resolve so
// that no session is created when the choice is unclear.
func (c *Coordinator) acquire(ctx context.Context, topic string) (session.Handle, error) {
	if c.cfg.PreferredSession == "" {
		active, err := c.cfg.Sessions.ListActive(ctx)
		if err != nil {
			return session.Handle{}, fmt.Errorf("listing active sessions: %w", err)
		}
		if len(active) > 1 {
			ids := make([]string, len(active))
			for i, h := range active {
				ids[i] = h.ID
			}
			return session.Handle{}, &domain.AmbiguousSessionError{Candidates: ids}
		}
	}
	return c.cfg.Sessions.Resolve(ctx, c.cfg.PreferredSession, topic)
}

// execute runs the three phases and folds their outcomes into r.result.
func (r *run) execute(ctx context.Context, controller *PhaseController, selection roles.Selection) {
	// Steps run with cancellation detached; ctx is consulted between phases.
	stepCtx := context.WithoutCancel(ctx)

	r.tracker.Seed(LabelFramework)
	framework := r.frameworkStep(selection)

	if err := ctx.Err(); err != nil {
		r.cancel(err, PhaseFramework, []*Step{framework})
		// Role and synthesis tasks were never seeded; only their outcomes are listed.
		for _, role := range selection {
			r.result.Steps = append(r.result.Steps, skipped(r.roleStep(role, 0), SkipCancelled))
		}
		r.result.Steps = append(r.result.Steps, skipped(r.synthesisStep(nil, 0), SkipCancelled))
		return
	}

	r.advance(StateFramework)
	fwOut := r.runPhase(ctx, stepCtx, controller, PhaseFramework, []*Step{framework})
	r.result.Steps = append(r.result.Steps, outcomeOf(framework))
	if fwOut.Kind == HardFailure {
		for _, role := range selection {
			r.result.Steps = append(r.result.Steps, skipped(r.roleStep(role, 0), SkipFrameworkFailed))
		}
		r.result.Steps = append(r.result.Steps, skipped(r.synthesisStep(nil, 0), SkipFrameworkFailed))
		r.result.Status = StatusFailed
		r.result.Err = fwOut.Err
		return
	}

	labels := make([]string, 0, len(selection)+1)
	for _, role := range selection {
		labels = append(labels, RoleLabel(role))
	}
	labels = append(labels, LabelSynthesis)
	r.tracker.Extend(labels...)

	roleSteps := make([]*Step, len(selection))
	for i, role := range selection {
		roleSteps[i] = r.roleStep(role, i+1)
	}
	synthIndex := len(selection) + 1

	if err := ctx.Err(); err != nil {
		r.cancel(err, PhaseRoleAnalysis, append(roleSteps, r.synthesisStep(nil, synthIndex)))
		return
	}

	r.advance(StateRoleAnalysis)
	roleOut := r.runPhase(ctx, stepCtx, controller, PhaseRoleAnalysis, roleSteps)

	var inputs []string
	for _, s := range roleSteps {
		r.result.Steps = append(r.result.Steps, outcomeOf(s))
		if s.Status() == StepSucceeded {
			inputs = append(inputs, s.Artifact)
		}
	}
	synthesis := r.synthesisStep(inputs, synthIndex)

	if err := ctx.Err(); err != nil {
		r.cancel(err, PhaseSynthesis, []*Step{synthesis})
		return
	}

	r.advance(StateSynthesis)
	if len(inputs) == 0 {
		log.Warn(log.CatOrch, "Skipping synthesis", "run", r.id, "reason", SkipNoRoleOutputs)
		if err := r.tracker.MarkFailed(synthIndex); err != nil {
			log.ErrorErr(log.CatOrch, "Tracker update rejected", err, "task", synthIndex)
		}
		r.result.Steps = append(r.result.Steps, skipped(synthesis, SkipNoRoleOutputs))
		r.result.Status = StatusPartiallyCompleted
		return
	}

	synthOut := r.runPhase(ctx, stepCtx, controller, PhaseSynthesis, []*Step{synthesis})
	r.result.Steps = append(r.result.Steps, outcomeOf(synthesis))

	switch {
	case roleOut.Kind == AllSucceeded && synthOut.Kind == AllSucceeded:
		r.result.Status = StatusCompleted
	default:
		// Framework and successful role outputs remain valid.
		r.result.Status = StatusPartiallyCompleted
		r.result.Err = synthOut.Err
	}
}

func (r *run) runPhase(ctx, stepCtx context.Context, controller *PhaseController, phase Phase, steps []*Step) PhaseOutcome {
	spanCtx, span := r.c.cfg.Tracer.Start(ctx, "workflow.phase", trace.WithAttributes(
		attribute.String("phase", phase.String()),
		attribute.Int("phase.steps", len(steps)),
	))
	defer span.End()

	log.Info(log.CatOrch, "Phase started", "run", r.id, "phase", phase.String())
	r.publish(events.WorkflowEvent{Type: events.PhaseStarted, Phase: phase.String()})

	// Keep the phase span as parent while detaching cancellation.
	stepCtx = trace.ContextWithSpan(stepCtx, trace.SpanFromContext(spanCtx))
	out := controller.RunPhase(stepCtx, phase, steps)

	span.SetAttributes(attribute.String("phase.outcome", out.Kind.String()))
	if out.Err != nil {
		span.SetStatus(codes.Error, out.Err.Error())
	}

	log.Info(log.CatOrch, "Phase finished",
		"run", r.id,
		"phase", phase.String(),
		"outcome", out.Kind.String(),
		"failed", len(out.Failed))
	r.publish(events.WorkflowEvent{
		Type:   events.PhaseFinished,
		Phase:  phase.String(),
		Status: out.Kind.String(),
		Reason: errString(out.Err),
	})
	return out
}

// cancel records the remaining steps as skipped and fails the run. The failure
// is attributed to next, the phase that was about to start.
func (r *run) cancel(err error, next Phase, remaining []*Step) {
	log.Warn(log.CatOrch, "Workflow cancelled", "run", r.id, "before", next.String())
	for _, s := range remaining {
		if err := r.tracker.MarkFailed(s.TaskIndex); err != nil {
			log.ErrorErr(log.CatOrch, "Tracker update rejected", err, "task", s.TaskIndex)
		}
		r.result.Steps = append(r.result.Steps, skipped(s, SkipCancelled))
	}
	r.result.Status = StatusFailed
	r.result.Err = &HardFailureError{Phase: next.String(), Cause: err}
}

// finish writes the status record, persists the run and announces the end.
// Persistence errors are logged; they do not change the run's outcome.
func (r *run) finish(ctx context.Context) {
	r.result.FinishedAt = r.c.cfg.Clock()
	r.result.Tasks = r.tracker.Snapshot()
	r.result.StatusPath = r.layout.Status()

	if err := session.SaveStatus(r.result.StatusPath, r.result.StatusRecord()); err != nil {
		log.ErrorErr(log.CatOrch, "Writing status record failed", err, "path", r.result.StatusPath)
		r.result.StatusPath = ""
	}

	if r.c.cfg.Recorder != nil {
		if err := r.c.cfg.Recorder.RecordRun(context.WithoutCancel(ctx), r.result.RunRecord()); err != nil {
			log.ErrorErr(log.CatOrch, "Recording run failed", err, "run", r.id)
		}
	}

	log.Info(log.CatOrch, "Workflow finished",
		"run", r.id,
		"status", string(r.result.Status),
		"duration", r.result.Duration())
	r.publish(events.WorkflowEvent{
		Type:     events.WorkflowFinished,
		Status:   string(r.result.Status),
		Reason:   errString(r.result.Err),
		Tasks:    r.result.Tasks,
		Duration: r.result.Duration(),
	})
}

func (r *run) frameworkStep(selection roles.Selection) *Step {
	path := r.layout.Framework()
	args := []string{
		r.topic,
		"--session", r.handle.ID,
		"--roles", strings.Join(selection.Strings(), ","),
		client.OutputFlag, path,
	}
	return NewStep(StepIDFramework, PhaseFramework, LabelFramework, CommandFramework, args, path, 0)
}

func (r *run) roleStep(role roles.Role, taskIndex int) *Step {
	path := r.layout.Role(role)
	args := []string{
		r.topic,
		"--session", r.handle.ID,
		"--framework", r.layout.Framework(),
		"--focus", roles.ComposeFocus(role, r.topic, r.c.cfg.FocusOverride(role)),
		client.OutputFlag, path,
	}
	step := NewStep(RoleStepID(role), PhaseRoleAnalysis, RoleLabel(role), string(role), args, path, taskIndex)
	step.Role = role
	return step
}

func (r *run) synthesisStep(inputs []string, taskIndex int) *Step {
	path := r.layout.Synthesis()
	args := []string{
		r.topic,
		"--session", r.handle.ID,
		"--inputs", strings.Join(inputs, ","),
		client.OutputFlag, path,
	}
	return NewStep(StepIDSynthesis, PhaseSynthesis, LabelSynthesis, CommandSynthesis, args, path, taskIndex)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsHardFailure reports whether err ended a run.
func IsHardFailure(err error) bool {
	var hf *HardFailureError
	return errors.As(err, &hf)
}
