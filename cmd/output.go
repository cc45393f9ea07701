package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/brainstorm/internal/orchestration/metrics"
	"github.com/zjrosen/brainstorm/internal/orchestration/progress"
	"github.com/zjrosen/brainstorm/internal/orchestration/workflow"
	"github.com/zjrosen/brainstorm/internal/ui/styles"
)

const outputWidth = 80

func statusStyle(status string) lipgloss.Style {
	switch status {
	case string(workflow.StatusCompleted):
		return styles.CompletedStyle
	case string(workflow.StatusFailed):
		return styles.FailedStyle
	default:
		return styles.InProgressStyle
	}
}

func outcomeIcon(status workflow.OutcomeStatus) string {
	switch status {
	case workflow.OutcomeSucceeded:
		return styles.CompletedStyle.Render(progress.IconCompleted)
	case workflow.OutcomeFailed:
		return styles.FailedStyle.Render(progress.IconFailed)
	default:
		return styles.PendingStyle.Render("-")
	}
}

// printResult writes the final report of a run: every step with its outcome,
// the artifacts produced, and the metrics summary.
func printResult(w io.Writer, res *workflow.Result, m metrics.RunMetrics) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(statusStyle(string(res.Status)).Render(string(res.Status)))
	sb.WriteString(styles.MutedStyle.Render("  " + m.Summary()))
	sb.WriteString("\n\n")

	for _, s := range res.Steps {
		label := styles.TruncateString(s.Label, outputWidth-4)
		fmt.Fprintf(&sb, "%s %s", outcomeIcon(s.Status), label)
		if s.Status == workflow.OutcomeSkipped {
			sb.WriteString(styles.MutedStyle.Render(" (skipped)"))
		}
		if s.Attempts > 1 {
			sb.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" (%d attempts)", s.Attempts)))
		}
		sb.WriteString("\n")
		if s.Reason != "" {
			reason := wordwrap.String(s.Reason, outputWidth-4)
			for _, line := range strings.Split(reason, "\n") {
				sb.WriteString("    " + styles.MutedStyle.Render(line) + "\n")
			}
		}
	}

	if artifacts := res.Artifacts(); len(artifacts) > 0 {
		sb.WriteString("\n")
		sb.WriteString(styles.TitleStyle.Render("Artifacts"))
		sb.WriteString("\n")
		for _, a := range artifacts {
			sb.WriteString("  " + a + "\n")
		}
	}

	if res.StatusPath != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.MutedStyle.Render("status " + res.StatusPath))
		sb.WriteString("\n")
	}

	_, _ = io.WriteString(w, sb.String())
}
