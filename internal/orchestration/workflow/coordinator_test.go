package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/brainstorm/internal/mocks"
	"github.com/zjrosen/brainstorm/internal/orchestration/client"
	"github.com/zjrosen/brainstorm/internal/orchestration/events"
	"github.com/zjrosen/brainstorm/internal/orchestration/progress"
	"github.com/zjrosen/brainstorm/internal/orchestration/roles"
	"github.com/zjrosen/brainstorm/internal/orchestration/session"
	"github.com/zjrosen/brainstorm/internal/orchestration/workflow"
	"github.com/zjrosen/brainstorm/internal/pubsub"
	"github.com/zjrosen/brainstorm/internal/sessions/domain"
)

const (
	microservicesTopic = "Design scalable microservices architecture"
	authTopic          = "Redesign user authentication interface"
)

type invocation struct {
	name string
	args []string
}

// fakeRunner answers invocations through a MockInvoker, writing the requested
// artifact unless the command is scripted to fail.
type fakeRunner struct {
	t        *testing.T
	mu       sync.Mutex
	failures map[string]int
	calls    []invocation
	onInvoke func(name string)
}

func newFakeRunner(t *testing.T) (*fakeRunner, *mocks.MockInvoker) {
	r := &fakeRunner{t: t, failures: map[string]int{}}
	invoker := mocks.NewMockInvoker(t)
	invoker.EXPECT().Invoke(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(r.invoke).Maybe()
	return r, invoker
}

// fail makes the next n invocations of name fail. Negative n fails forever.
func (r *fakeRunner) fail(name string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[name] = n
}

func (r *fakeRunner) invoke(_ context.Context, name string, args []string) <-chan client.Completion {
	r.mu.Lock()
	r.calls = append(r.calls, invocation{name: name, args: args})
	n := r.failures[name]
	if n > 0 {
		r.failures[name] = n - 1
	}
	hook := r.onInvoke
	r.mu.Unlock()

	if hook != nil {
		hook(name)
	}

	out := flagValue(args, client.OutputFlag)
	if n != 0 {
		return client.Done(client.Completion{Err: errors.New("exited with code 1"), ExitCode: 1, OutputPath: out})
	}
	require.NoError(r.t, os.MkdirAll(filepath.Dir(out), 0750))
	require.NoError(r.t, os.WriteFile(out, []byte("# "+name+"\n"), 0600))
	return client.Done(client.Completion{OutputPath: out, Result: "done"})
}

func (r *fakeRunner) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.name
	}
	return out
}

func (r *fakeRunner) lastArgs(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].name == name {
			return r.calls[i].args
		}
	}
	return nil
}

func flagValue(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

type fixture struct {
	runner   *fakeRunner
	invoker  *mocks.MockInvoker
	sessions *mocks.MockManager
	dir      string
	cfg      workflow.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	runner, invoker := newFakeRunner(t)
	f := &fixture{
		runner:   runner,
		invoker:  invoker,
		sessions: mocks.NewMockManager(t),
		dir:      filepath.Join(t.TempDir(), "sess-1"),
	}
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.cfg = workflow.Config{
		Sessions:   f.sessions,
		Invoker:    invoker,
		RetryDelay: time.Second,
		Clock: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
		NewRunID: func() string { return "run-1" },
		Sleep:    func(context.Context, time.Duration) error { return nil },
	}
	return f
}

func (f *fixture) expectSingleSession(topic string) {
	f.sessions.EXPECT().ListActive(mock.Anything).Return(nil, nil)
	f.sessions.EXPECT().Resolve(mock.Anything, "", topic).
		Return(session.Handle{ID: "sess-1", Dir: f.dir}, nil)
}

func (f *fixture) run(t *testing.T, topic string) (*workflow.Result, error) {
	t.Helper()
	return workflow.NewCoordinator(f.cfg).Run(context.Background(), topic)
}

func outcomeStatuses(res *workflow.Result) map[string]workflow.OutcomeStatus {
	out := make(map[string]workflow.OutcomeStatus, len(res.Steps))
	for _, s := range res.Steps {
		out[s.ID] = s.Status
	}
	return out
}

func taskStatuses(tasks []progress.Task) []progress.TaskStatus {
	out := make([]progress.TaskStatus, len(tasks))
	for i, task := range tasks {
		out[i] = task.Status
	}
	return out
}

func TestRun_AllSucceeded(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(microservicesTopic)

	res, err := f.run(t, microservicesTopic)

	require.NoError(t, err)
	require.Equal(t, workflow.StatusCompleted, res.Status)
	require.Equal(t, "sess-1", res.SessionID)
	require.Equal(t, "run-1", res.RunID)
	require.Equal(t, roles.Selection{
		roles.RoleSystemArchitect, roles.RoleDataArchitect, roles.RoleSecurityExpert,
	}, res.Roles)

	require.Equal(t, []string{
		workflow.CommandFramework,
		"system-architect",
		"data-architect",
		"security-expert",
		workflow.CommandSynthesis,
	}, f.runner.names())

	require.Len(t, res.Steps, 5)
	for _, s := range res.Steps {
		require.Equal(t, workflow.OutcomeSucceeded, s.Status, s.ID)
		require.Equal(t, 1, s.Attempts, s.ID)
	}
	require.Len(t, res.Artifacts(), 5)

	require.Len(t, res.Tasks, 5)
	require.Equal(t, 5, progress.Count(res.Tasks).Completed)

	inputs := flagValue(f.runner.lastArgs(workflow.CommandSynthesis), "--inputs")
	require.Len(t, strings.Split(inputs, ","), 3)

	rec, err := session.LoadStatus(filepath.Join(f.dir, "status.json"))
	require.NoError(t, err)
	require.Equal(t, "completed", rec.Status)
	require.Equal(t, "run-1", rec.RunID)
	require.Len(t, rec.Steps, 5)
	require.Equal(t, res.StatusPath, filepath.Join(f.dir, "status.json"))
}

func TestRun_FrameworkFailureFailsRun(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(microservicesTopic)
	f.runner.fail(workflow.CommandFramework, -1)

	res, err := f.run(t, microservicesTopic)

	require.Error(t, err)
	require.True(t, workflow.IsHardFailure(err))
	require.NotNil(t, res)
	require.Equal(t, workflow.StatusFailed, res.Status)
	require.Equal(t, []string{workflow.CommandFramework}, f.runner.names(), "no role analysis is attempted")

	// The tracker was never extended past the framework task.
	require.Equal(t, []progress.TaskStatus{progress.TaskFailed}, taskStatuses(res.Tasks))

	statuses := outcomeStatuses(res)
	require.Equal(t, workflow.OutcomeFailed, statuses[workflow.StepIDFramework])
	for _, role := range res.Roles {
		require.Equal(t, workflow.OutcomeSkipped, statuses[workflow.RoleStepID(role)])
	}
	require.Equal(t, workflow.OutcomeSkipped, statuses[workflow.StepIDSynthesis])

	step, ok := res.Step(workflow.RoleStepID(res.Roles[0]))
	require.True(t, ok)
	require.Equal(t, workflow.SkipFrameworkFailed, step.Reason)

	rec, err := session.LoadStatus(res.StatusPath)
	require.NoError(t, err)
	require.Equal(t, "failed", rec.Status)
	require.NotEmpty(t, rec.Error)
}

func TestRun_FrameworkMissingArtifact(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(authTopic)

	// The command claims success without writing anything.
	invoker := mocks.NewMockInvoker(t)
	invoker.EXPECT().Invoke(mock.Anything, workflow.CommandFramework, mock.Anything).
		Return(client.Done(client.Completion{Result: "done"}))
	f.cfg.Invoker = invoker

	res, err := f.run(t, authTopic)

	require.Error(t, err)
	require.ErrorIs(t, err, workflow.ErrArtifactMissing)
	require.Equal(t, workflow.StatusFailed, res.Status)
	require.Equal(t, []progress.TaskStatus{progress.TaskFailed}, taskStatuses(res.Tasks))
}

func TestRun_StaleArtifactsFromReusedSessionDoNotCount(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(authTopic)

	// Outputs left behind by an earlier run in the same session.
	for _, rel := range []string{"framework/topic-framework.md", "synthesis/synthesis-report.md"} {
		path := filepath.Join(f.dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte("# earlier run\n"), 0600))
	}

	invoker := mocks.NewMockInvoker(t)
	invoker.EXPECT().Invoke(mock.Anything, workflow.CommandFramework, mock.Anything).
		Return(client.Done(client.Completion{Result: "done"}))
	f.cfg.Invoker = invoker

	res, err := f.run(t, authTopic)

	require.ErrorIs(t, err, workflow.ErrArtifactMissing)
	require.Equal(t, workflow.StatusFailed, res.Status)

	step, ok := res.Step(workflow.StepIDFramework)
	require.True(t, ok)
	require.Equal(t, workflow.OutcomeFailed, step.Status)
	require.Equal(t, workflow.ReasonArtifactMissing, step.Reason)
	require.NoFileExists(t, filepath.Join(f.dir, "framework", "topic-framework.md"))
}

func TestRun_OneRoleFailure(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(microservicesTopic)
	f.runner.fail("data-architect", -1)

	res, err := f.run(t, microservicesTopic)

	require.NoError(t, err)
	require.Equal(t, workflow.StatusPartiallyCompleted, res.Status)
	require.Equal(t, []roles.Role{roles.RoleDataArchitect}, res.FailedRoles())
	require.Contains(t, f.runner.names(), workflow.CommandSynthesis, "synthesis still runs")

	inputs := strings.Split(flagValue(f.runner.lastArgs(workflow.CommandSynthesis), "--inputs"), ",")
	require.Len(t, inputs, 2)
	for _, in := range inputs {
		require.NotContains(t, in, "data-architect")
	}

	require.Equal(t, []progress.TaskStatus{
		progress.TaskCompleted,
		progress.TaskCompleted,
		progress.TaskFailed,
		progress.TaskCompleted,
		progress.TaskCompleted,
	}, taskStatuses(res.Tasks))

	failedStep, ok := res.Step(workflow.RoleStepID(roles.RoleDataArchitect))
	require.True(t, ok)
	require.Equal(t, "exited with code 1", failedStep.Reason)
}

func TestRun_SynthesisFailsTwice(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(microservicesTopic)
	f.runner.fail(workflow.CommandSynthesis, -1)

	res, err := f.run(t, microservicesTopic)

	require.NoError(t, err, "synthesis failure does not fail the run")
	require.Equal(t, workflow.StatusPartiallyCompleted, res.Status)
	require.ErrorIs(t, res.Err, workflow.ErrRetryExhausted)

	var synth []string
	for _, name := range f.runner.names() {
		if name == workflow.CommandSynthesis {
			synth = append(synth, name)
		}
	}
	require.Len(t, synth, 2, "initial attempt plus one retry")

	step, ok := res.Step(workflow.StepIDSynthesis)
	require.True(t, ok)
	require.Equal(t, workflow.OutcomeFailed, step.Status)
	require.Equal(t, 2, step.Attempts)

	require.Equal(t, []progress.TaskStatus{
		progress.TaskCompleted,
		progress.TaskCompleted,
		progress.TaskCompleted,
		progress.TaskCompleted,
		progress.TaskFailed,
	}, taskStatuses(res.Tasks))
}

func TestRun_SynthesisRecoversOnRetry(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(microservicesTopic)
	f.runner.fail(workflow.CommandSynthesis, 1)

	res, err := f.run(t, microservicesTopic)

	require.NoError(t, err)
	require.Equal(t, workflow.StatusCompleted, res.Status)
	step, _ := res.Step(workflow.StepIDSynthesis)
	require.Equal(t, 2, step.Attempts)
}

func TestRun_AllRolesFailSkipsSynthesis(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession("Something with no keywords")
	f.runner.fail("ui-designer", -1)

	res, err := f.run(t, "Something with no keywords")

	require.NoError(t, err)
	require.Equal(t, workflow.StatusPartiallyCompleted, res.Status)
	require.NotContains(t, f.runner.names(), workflow.CommandSynthesis)

	step, ok := res.Step(workflow.StepIDSynthesis)
	require.True(t, ok)
	require.Equal(t, workflow.OutcomeSkipped, step.Status)
	require.Equal(t, workflow.SkipNoRoleOutputs, step.Reason)
	require.Equal(t, []progress.TaskStatus{
		progress.TaskCompleted,
		progress.TaskFailed,
		progress.TaskFailed,
	}, taskStatuses(res.Tasks))
}

func TestRun_AmbiguousSession(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().ListActive(mock.Anything).Return([]session.Handle{
		{ID: "a1", Dir: "/x/a1"},
		{ID: "b2", Dir: "/x/b2"},
	}, nil)

	res, err := f.run(t, authTopic)

	require.Nil(t, res)
	require.True(t, workflow.IsHardFailure(err))

	var ambiguous *domain.AmbiguousSessionError
	require.True(t, errors.As(err, &ambiguous))
	require.Equal(t, []string{"a1", "b2"}, ambiguous.Candidates)
	require.Empty(t, f.runner.names())
}

func TestRun_PreferredSessionSkipsAmbiguityCheck(t *testing.T) {
	f := newFixture(t)
	f.cfg.PreferredSession = "b2"
	f.sessions.EXPECT().Resolve(mock.Anything, "b2", authTopic).
		Return(session.Handle{ID: "b2", Dir: f.dir}, nil)

	res, err := f.run(t, authTopic)

	require.NoError(t, err)
	require.Equal(t, "b2", res.SessionID)
	require.Equal(t, roles.Selection{
		roles.RoleUIDesigner, roles.RoleUserResearcher, roles.RoleSecurityExpert,
	}, res.Roles)
}

func TestRun_EmptyTopic(t *testing.T) {
	f := newFixture(t)

	for _, topic := range []string{"", "   ", "\t\n"} {
		res, err := f.run(t, topic)
		require.Nil(t, res)
		require.ErrorIs(t, err, workflow.ErrEmptyTopic)
	}
}

func TestRun_CancelledBetweenPhases(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(microservicesTopic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.runner.onInvoke = func(name string) {
		if name == workflow.CommandFramework {
			cancel()
		}
	}

	res, err := workflow.NewCoordinator(f.cfg).Run(ctx, microservicesTopic)

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, workflow.StatusFailed, res.Status)
	require.Equal(t, []string{workflow.CommandFramework}, f.runner.names(), "in-flight step completes, later phases do not start")

	statuses := outcomeStatuses(res)
	require.Equal(t, workflow.OutcomeSucceeded, statuses[workflow.StepIDFramework])
	require.Equal(t, workflow.OutcomeSkipped, statuses[workflow.StepIDSynthesis])
	require.Len(t, res.Tasks, 5)
	require.Equal(t, progress.TaskCompleted, res.Tasks[0].Status)
	require.Equal(t, 0, progress.Count(res.Tasks).Pending)

	var hard *workflow.HardFailureError
	require.ErrorAs(t, err, &hard)
	require.Equal(t, workflow.PhaseRoleAnalysis.String(), hard.Phase, "attributed to the phase that did not start")
	require.Len(t, res.Steps, 5)
}

func TestRun_CancelledBeforeFramework(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.sessions.EXPECT().ListActive(mock.Anything).Return(nil, nil)
	f.sessions.EXPECT().Resolve(mock.Anything, "", microservicesTopic).
		RunAndReturn(func(context.Context, string, string) (session.Handle, error) {
			cancel()
			return session.Handle{ID: "sess-1", Dir: f.dir}, nil
		})

	res, err := workflow.NewCoordinator(f.cfg).Run(ctx, microservicesTopic)

	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, f.runner.names())
	require.Equal(t, workflow.StatusFailed, res.Status)

	var hard *workflow.HardFailureError
	require.ErrorAs(t, err, &hard)
	require.Equal(t, workflow.PhaseFramework.String(), hard.Phase)

	require.Len(t, res.Roles, 3)
	require.Len(t, res.Steps, 5, "every planned step is listed")
	for _, s := range res.Steps {
		require.Equal(t, workflow.OutcomeSkipped, s.Status, s.ID)
		require.Equal(t, workflow.SkipCancelled, s.Reason, s.ID)
	}
	require.Equal(t, []progress.TaskStatus{progress.TaskFailed}, taskStatuses(res.Tasks))

	rec, err := session.LoadStatus(res.StatusPath)
	require.NoError(t, err)
	require.Contains(t, rec.Error, "framework phase failed")
}

func TestRun_RecordsRun(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(authTopic)

	recorder := mocks.NewMockRecorder(t)
	recorder.EXPECT().RecordRun(mock.Anything, mock.MatchedBy(func(run *domain.RunRecord) bool {
		return run.RunID == "run-1" &&
			run.SessionGUID == "sess-1" &&
			run.Status == "completed" &&
			len(run.Roles) == 3 &&
			strings.HasSuffix(run.StatusPath, "status.json")
	})).Return(nil)
	f.cfg.Recorder = recorder

	_, err := f.run(t, authTopic)
	require.NoError(t, err)
}

func TestRun_RecorderErrorDoesNotChangeOutcome(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(authTopic)

	recorder := mocks.NewMockRecorder(t)
	recorder.EXPECT().RecordRun(mock.Anything, mock.Anything).Return(errors.New("database is locked"))
	f.cfg.Recorder = recorder

	res, err := f.run(t, authTopic)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusCompleted, res.Status)
}

func TestRun_FocusOverrideReachesRoleCommand(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(authTopic)
	f.cfg.FocusOverride = func(role roles.Role) *roles.FocusOverride {
		if role == roles.RoleSecurityExpert {
			return &roles.FocusOverride{Replace: "Focus on OAuth flows."}
		}
		return nil
	}

	_, err := f.run(t, authTopic)
	require.NoError(t, err)

	require.Equal(t, "Focus on OAuth flows.", flagValue(f.runner.lastArgs("security-expert"), "--focus"))
	require.Contains(t, flagValue(f.runner.lastArgs("ui-designer"), "--focus"), "interface design")
	require.Equal(t, "sess-1", flagValue(f.runner.lastArgs("ui-designer"), "--session"))
}

func TestRun_PublishesEvents(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(microservicesTopic)
	f.runner.fail(workflow.CommandSynthesis, 1)

	broker := pubsub.NewBrokerWithBuffer[events.WorkflowEvent](512)
	defer broker.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := broker.Subscribe(ctx)
	f.cfg.Broker = broker

	_, err := f.run(t, microservicesTopic)
	require.NoError(t, err)

	var got []events.WorkflowEvent
	for done := false; !done; {
		select {
		case ev := <-sub:
			got = append(got, ev.Payload)
			done = ev.Payload.IsTerminal()
		case <-time.After(time.Second):
			t.Fatal("workflow.finished was not published")
		}
	}

	require.Equal(t, events.WorkflowStarted, got[0].Type)
	last := got[len(got)-1]
	require.Equal(t, events.WorkflowFinished, last.Type)
	require.Equal(t, "completed", last.Status)
	require.Len(t, last.Tasks, 5)

	counts := map[events.WorkflowEventType]int{}
	for _, ev := range got {
		require.Equal(t, "run-1", ev.RunID)
		counts[ev.Type]++
	}
	require.Equal(t, 1, counts[events.SessionAcquired])
	require.Equal(t, 1, counts[events.RolesSelected])
	require.Equal(t, 3, counts[events.PhaseStarted])
	require.Equal(t, 3, counts[events.PhaseFinished])
	require.Equal(t, 5, counts[events.StepStarted])
	require.Equal(t, 5, counts[events.StepFinished])
	require.Equal(t, 1, counts[events.StepRetrying])
	require.Positive(t, counts[events.ProgressChanged])
}

func TestRun_RecordsSpans(t *testing.T) {
	f := newFixture(t)
	f.expectSingleSession(authTopic)

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = provider.Shutdown(context.Background()) }()
	f.cfg.Tracer = provider.Tracer("brainstorm-test")

	_, err := f.run(t, authTopic)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	byName := map[string][]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = append(byName[s.Name], s)
	}
	require.Len(t, byName["workflow.run"], 1)
	require.Len(t, byName["workflow.phase"], 3)
	require.Len(t, byName["workflow.step"], 5)

	runSpan := byName["workflow.run"][0]
	phaseIDs := map[string]bool{}
	for _, p := range byName["workflow.phase"] {
		require.Equal(t, runSpan.SpanContext.SpanID(), p.Parent.SpanID())
		phaseIDs[p.SpanContext.SpanID().String()] = true
	}
	for _, s := range byName["workflow.step"] {
		require.True(t, phaseIDs[s.Parent.SpanID().String()], "step span %s is parented by a phase span", s.Name)
	}
}
