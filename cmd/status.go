package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/zjrosen/brainstorm/internal/orchestration/artifacts"
	"github.com/zjrosen/brainstorm/internal/orchestration/progress"
	"github.com/zjrosen/brainstorm/internal/orchestration/session"
	"github.com/zjrosen/brainstorm/internal/sessions/domain"
	"github.com/zjrosen/brainstorm/internal/ui/styles"
)

var statusReport bool

var statusCmd = &cobra.Command{
	Use:   "status [session-id]",
	Short: "Show the last run of a session",
	Long: `Show the status record of a session's last run. Without an id the single
active session is used. --report renders the synthesis report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusReport, "report", "r", false, "render the synthesis report")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	sess, err := pickSession(cmd, store, args)
	if err != nil {
		return err
	}

	layout := artifacts.NewLayout(sess.WorkDir())
	out := cmd.OutOrStdout()

	rec, err := session.LoadStatus(layout.Status())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		run, runErr := store.LatestRun(cmd.Context(), sess.GUID())
		if runErr != nil {
			return fmt.Errorf("session %s has no recorded runs", sess.GUID())
		}
		printRunRecord(out, run)
		return nil
	case err != nil:
		return err
	}

	printStatusRecord(out, rec)

	if statusReport {
		return renderReport(out, layout.Synthesis())
	}
	return nil
}

// pickSession resolves the explicit id, or the single active session.
func pickSession(cmd *cobra.Command, store *session.Store, args []string) (*domain.Session, error) {
	if len(args) == 1 {
		return store.Get(cmd.Context(), args[0])
	}
	active, err := store.ListActive(cmd.Context())
	if err != nil {
		return nil, err
	}
	switch len(active) {
	case 0:
		return nil, &domain.NoActiveSessionError{}
	case 1:
		return store.Get(cmd.Context(), active[0].ID)
	default:
		ids := make([]string, len(active))
		for i, h := range active {
			ids[i] = h.ID
		}
		return nil, &domain.AmbiguousSessionError{Candidates: ids}
	}
}

func printStatusRecord(w io.Writer, rec *session.StatusRecord) {
	var sb strings.Builder
	sb.WriteString(styles.TitleStyle.Render(rec.Topic))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s %s\n", styles.MutedStyle.Render("session"), rec.SessionID)
	fmt.Fprintf(&sb, "%s %s\n", styles.MutedStyle.Render("run    "), rec.RunID)
	fmt.Fprintf(&sb, "%s %s\n", styles.MutedStyle.Render("roles  "), strings.Join(rec.Roles, ", "))
	fmt.Fprintf(&sb, "%s %s %s\n",
		styles.MutedStyle.Render("status "),
		statusStyle(rec.Status).Render(rec.Status),
		styles.MutedStyle.Render(rec.FinishedAt.Sub(rec.StartedAt).Round(time.Second).String()))
	if rec.Error != "" {
		fmt.Fprintf(&sb, "%s %s\n", styles.MutedStyle.Render("error  "), rec.Error)
	}
	sb.WriteString("\n")
	sb.WriteString(progress.Render(rec.Tasks, progress.RenderOptions{Width: outputWidth}))
	sb.WriteString("\n")

	for _, s := range rec.Steps {
		if s.Reason == "" {
			continue
		}
		fmt.Fprintf(&sb, "  %s %s\n", s.ID, styles.MutedStyle.Render(s.Status+": "+s.Reason))
	}
	_, _ = io.WriteString(w, sb.String())
}

func printRunRecord(w io.Writer, run *domain.RunRecord) {
	_, _ = fmt.Fprintf(w, "%s\n%s %s\n%s %s\n",
		styles.TitleStyle.Render(run.Topic),
		styles.MutedStyle.Render("run   "), run.RunID,
		styles.MutedStyle.Render("status"), statusStyle(run.Status).Render(run.Status))
	if run.Error != "" {
		_, _ = fmt.Fprintf(w, "%s %s\n", styles.MutedStyle.Render("error "), run.Error)
	}
}

// renderReport renders a markdown artifact for the terminal.
func renderReport(w io.Writer, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the session directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("no synthesis report at %s", path)
		}
		return fmt.Errorf("reading synthesis report: %w", err)
	}

	style := glamour.WithAutoStyle()
	if cfg.UI.NoColor || os.Getenv("NO_COLOR") != "" {
		style = glamour.WithStandardStyle("notty")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(outputWidth))
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(string(data))
	if err != nil {
		return fmt.Errorf("rendering synthesis report: %w", err)
	}
	_, _ = io.WriteString(w, "\n"+rendered)
	return nil
}
