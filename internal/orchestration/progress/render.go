package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/brainstorm/internal/ui/styles"
)

// Status icons
const (
	IconPending    = "○"
	IconInProgress = "◐"
	IconCompleted  = "✓"
	IconFailed     = "✗"
)

// RenderOptions control Render output.
type RenderOptions struct {
	// Width bounds each line in terminal cells. Zero means unbounded.
	Width int

	// Plain strips all styling.
	Plain bool

	// ActiveIcon replaces IconInProgress, e.g. with a spinner frame.
	ActiveIcon string
}

// Render draws a task snapshot as one line per task followed by a summary.
func Render(tasks []Task, opts RenderOptions) string {
	var sb strings.Builder
	for i, task := range tasks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(renderRow(task, opts))
	}
	if len(tasks) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(styles.MutedStyle.Render(Summary(tasks)))

	out := sb.String()
	if opts.Plain {
		return styles.Plain(out)
	}
	return out
}

func renderRow(task Task, opts RenderOptions) string {
	icon, style := iconFor(task.Status, opts.ActiveIcon)

	label := task.Label
	if opts.Width > 0 {
		// icon + space
		avail := opts.Width - lipgloss.Width(icon) - 1
		label = styles.TruncateString(label, avail)
	}
	return style.Render(icon) + " " + style.Render(label)
}

func iconFor(status TaskStatus, active string) (string, lipgloss.Style) {
	switch status {
	case TaskInProgress:
		if active != "" {
			return active, styles.InProgressStyle
		}
		return IconInProgress, styles.InProgressStyle
	case TaskCompleted:
		return IconCompleted, styles.CompletedStyle
	case TaskFailed:
		return IconFailed, styles.FailedStyle
	default:
		return IconPending, styles.PendingStyle
	}
}

// Summary returns "<done>/<total> completed" with a failure count when any.
func Summary(tasks []Task) string {
	c := Count(tasks)
	s := fmt.Sprintf("%d/%d completed", c.Completed, len(tasks))
	if c.Failed > 0 {
		s += fmt.Sprintf(", %d failed", c.Failed)
	}
	return s
}
