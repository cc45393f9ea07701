// Package progressview renders a live view of a workflow run's progress.
package progressview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/brainstorm/internal/orchestration/events"
	"github.com/zjrosen/brainstorm/internal/orchestration/progress"
	"github.com/zjrosen/brainstorm/internal/pubsub"
	"github.com/zjrosen/brainstorm/internal/ui/styles"
)

const defaultWidth = 60

// eventMsg carries one workflow event into the update loop.
type eventMsg events.WorkflowEvent

// closedMsg signals the event channel was closed.
type closedMsg struct{}

// Model holds the progress view state. It is read-only with respect to the
// workflow: everything it shows comes from published events.
type Model struct {
	events <-chan pubsub.Event[events.WorkflowEvent]

	spinner spinner.Model
	width   int

	topic     string
	sessionID string
	phase     string
	tasks     []progress.Task
	status    string
	reason    string

	done        bool
	interrupted bool
}

// New creates a view fed by ch.
func New(ch <-chan pubsub.Event[events.WorkflowEvent]) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.InProgressStyle
	return Model{
		events:  ch,
		spinner: s,
		width:   defaultWidth,
	}
}

// Init starts the spinner and begins listening for events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m Model) waitForEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev.Payload)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case closedMsg:
		m.done = true
		return m, tea.Quit

	case eventMsg:
		m = m.apply(events.WorkflowEvent(msg))
		if m.done {
			return m, tea.Quit
		}
		return m, m.waitForEvent()
	}
	return m, nil
}

func (m Model) apply(ev events.WorkflowEvent) Model {
	switch ev.Type {
	case events.WorkflowStarted:
		m.topic = ev.Topic
	case events.SessionAcquired:
		m.sessionID = ev.SessionID
	case events.PhaseStarted:
		m.phase = ev.Phase
	case events.ProgressChanged:
		m.tasks = ev.Tasks
	case events.WorkflowFinished:
		m.status = ev.Status
		m.reason = ev.Reason
		if ev.Tasks != nil {
			m.tasks = ev.Tasks
		}
		m.done = true
	}
	return m
}

// View renders the progress box.
func (m Model) View() string {
	var body strings.Builder
	if m.topic != "" {
		body.WriteString(styles.TitleStyle.Render(styles.TruncateString(m.topic, m.width-4)))
		body.WriteString("\n")
	}
	if m.sessionID != "" {
		body.WriteString(styles.MutedStyle.Render("session " + m.sessionID))
		body.WriteString("\n")
	}
	body.WriteString("\n")
	body.WriteString(progress.Render(m.tasks, progress.RenderOptions{
		Width:      m.width - 2,
		ActiveIcon: m.spinner.View(),
	}))

	if m.done && m.status != "" {
		body.WriteString("\n\n")
		body.WriteString(statusStyle(m.status).Render(m.status))
		if m.reason != "" {
			body.WriteString("\n")
			body.WriteString(styles.MutedStyle.Render(wordwrap.String(m.reason, max(m.width-4, 10))))
		}
	}

	title := "Brainstorm"
	if m.phase != "" && !m.done {
		title = fmt.Sprintf("Brainstorm · %s", m.phase)
	}
	return styles.RenderTitledBox(body.String(), title, m.width) + "\n"
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "completed":
		return styles.CompletedStyle
	case "failed":
		return styles.FailedStyle
	default:
		return styles.InProgressStyle
	}
}

// Done reports whether the run finished.
func (m Model) Done() bool {
	return m.done
}

// Interrupted reports whether the user quit before the run finished.
func (m Model) Interrupted() bool {
	return m.interrupted && !m.done
}

// Tasks returns the last task snapshot seen.
func (m Model) Tasks() []progress.Task {
	return m.tasks
}

// Status returns the final workflow status, or "" while running.
func (m Model) Status() string {
	return m.status
}
