package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/brainstorm/internal/log"
	"github.com/zjrosen/brainstorm/internal/orchestration/client"
	"github.com/zjrosen/brainstorm/internal/orchestration/events"
	"github.com/zjrosen/brainstorm/internal/orchestration/metrics"
	"github.com/zjrosen/brainstorm/internal/orchestration/progress"
	"github.com/zjrosen/brainstorm/internal/orchestration/roles"
	"github.com/zjrosen/brainstorm/internal/orchestration/tracing"
	"github.com/zjrosen/brainstorm/internal/orchestration/workflow"
	"github.com/zjrosen/brainstorm/internal/pubsub"
	"github.com/zjrosen/brainstorm/internal/ui/progressview"
	"github.com/zjrosen/brainstorm/internal/ui/styles"
)

var runSession string

var runCmd = &cobra.Command{
	Use:   "run <topic>",
	Short: "Run the brainstorm workflow for a topic",
	Long: `Run generates a topic framework, one analysis per selected role, and a
synthesis report in the session directory.

Examples:
  brainstorm run "Design scalable microservices architecture"
  brainstorm run --tui "Redesign user authentication interface"
  brainstorm run --session 3f2a... "Follow-up on pricing"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runSession, "session", "s", "", "session id to run in")
	runCmd.Flags().Bool("tui", false, "show a live progress view")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(strings.Join(args, " "))
	if topic == "" {
		return workflow.ErrEmptyTopic
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	selector, err := newSelector()
	if err != nil {
		return err
	}

	tracer, shutdown, err := tracing.Setup(ctx, cfg.Tracing, tracing.WithVersion(version))
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatCmd, "Trace shutdown failed", err)
		}
	}()

	broker := pubsub.NewBrokerWithBuffer[events.WorkflowEvent](256)
	defer broker.Close()

	subCtx, cancelSubs := context.WithCancel(ctx)
	defer cancelSubs()

	collector := metrics.NewCollector()
	collected := make(chan struct{})
	metricsSub := broker.Subscribe(subCtx)
	log.SafeGo("metrics", func() {
		defer close(collected)
		collector.Consume(subCtx, metricsSub)
	})

	coordinator := workflow.NewCoordinator(workflow.Config{
		Selector: selector,
		Sessions: store,
		Recorder: store,
		Invoker: client.NewProcessInvoker(client.Config{
			Executable: cfg.Command.Executable,
			BaseArgs:   cfg.Command.BaseArgs,
			Prefix:     cfg.Command.Prefix,
			Env:        cfg.Command.Env,
			Timeout:    cfg.Command.Timeout,
		}),
		Broker:           broker,
		Tracer:           tracer,
		PreferredSession: runSession,
		FocusOverride: func(role roles.Role) *roles.FocusOverride {
			return cfg.FocusOverride(role)
		},
		RetryDelay:     cfg.Workflow.RetryDelay,
		ArtifactSettle: cfg.Workflow.ArtifactSettle,
	})

	out := cmd.OutOrStdout()
	var res *workflow.Result
	if cfg.UI.TUI {
		res, err = runWithView(ctx, coordinator, broker, topic)
	} else {
		res, err = runWithLines(ctx, coordinator, broker, topic, out)
	}

	if res == nil {
		return err
	}

	select {
	case <-collected:
	case <-time.After(time.Second):
		log.Warn(log.CatCmd, "Metrics collector missed workflow.finished")
	}
	printResult(out, res, collector.Snapshot())
	return err
}

type runOutcome struct {
	res *workflow.Result
	err error
}

func startRun(ctx context.Context, coordinator *workflow.Coordinator, topic string) <-chan runOutcome {
	done := make(chan runOutcome, 1)
	log.SafeGo("workflow-run", func() {
		var o runOutcome
		defer func() { done <- o }()
		o.res, o.err = coordinator.Run(ctx, topic)
	})
	return done
}

// runWithView drives the Bubble Tea progress view while the run executes.
// Quitting the view cancels the run at the next phase boundary.
func runWithView(ctx context.Context, coordinator *workflow.Coordinator, broker *pubsub.Broker[events.WorkflowEvent], topic string) (*workflow.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := progressview.New(broker.Subscribe(ctx))
	done := startRun(ctx, coordinator, topic)

	final, err := tea.NewProgram(view, tea.WithContext(ctx)).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.ErrorErr(log.CatUI, "Progress view failed", err)
	}
	if m, ok := final.(progressview.Model); ok && m.Interrupted() {
		cancel()
	}

	o := <-done
	return o.res, o.err
}

// runWithLines prints one line per step transition.
func runWithLines(ctx context.Context, coordinator *workflow.Coordinator, broker *pubsub.Broker[events.WorkflowEvent], topic string, w io.Writer) (*workflow.Result, error) {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := broker.Subscribe(subCtx)
	printed := make(chan struct{})
	log.SafeGo("progress-lines", func() {
		defer close(printed)
		for ev := range sub {
			printEvent(w, ev.Payload)
			if ev.Payload.IsTerminal() {
				return
			}
		}
	})

	o := <-startRun(ctx, coordinator, topic)
	cancel()
	<-printed
	return o.res, o.err
}

func printEvent(w io.Writer, ev events.WorkflowEvent) {
	switch ev.Type {
	case events.SessionAcquired:
		_, _ = fmt.Fprintln(w, styles.MutedStyle.Render("session "+ev.SessionID))
	case events.RolesSelected:
		_, _ = fmt.Fprintln(w, styles.MutedStyle.Render("roles   "+strings.Join(ev.Roles, ", ")))
	case events.StepStarted:
		_, _ = fmt.Fprintf(w, "%s %s\n", styles.InProgressStyle.Render(progress.IconInProgress), ev.Label)
	case events.StepRetrying:
		_, _ = fmt.Fprintf(w, "  %s\n", styles.MutedStyle.Render(fmt.Sprintf("retrying (attempt %d): %s", ev.Attempt, ev.Reason)))
	case events.StepFinished:
		icon := styles.CompletedStyle.Render(progress.IconCompleted)
		if ev.Status != string(workflow.StepSucceeded) {
			icon = styles.FailedStyle.Render(progress.IconFailed)
		}
		line := fmt.Sprintf("%s %s %s", icon, ev.Label, styles.MutedStyle.Render(metrics.FormatDuration(ev.Duration)))
		if ev.Reason != "" {
			line += "\n  " + styles.MutedStyle.Render(ev.Reason)
		}
		_, _ = fmt.Fprintln(w, line)
	}
}
