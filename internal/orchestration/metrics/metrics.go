// Package metrics aggregates per-step timing and retry counts from workflow
// events.
package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zjrosen/brainstorm/internal/orchestration/events"
	"github.com/zjrosen/brainstorm/internal/pubsub"
)

// StepMetrics holds the measurements for one step.
type StepMetrics struct {
	StepID   string
	Phase    string
	Label    string
	Status   string
	Attempts int
	Duration time.Duration
}

// Succeeded reports whether the step finished successfully.
func (s StepMetrics) Succeeded() bool {
	return s.Status == "succeeded"
}

// FormatDuration renders the step duration for display.
func (s StepMetrics) FormatDuration() string {
	return FormatDuration(s.Duration)
}

// RunMetrics is a snapshot of one run's measurements.
type RunMetrics struct {
	RunID      string
	Status     string
	Steps      []StepMetrics
	Retries    int
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
}

// Succeeded counts steps that finished successfully.
func (m RunMetrics) Succeeded() int {
	n := 0
	for _, s := range m.Steps {
		if s.Succeeded() {
			n++
		}
	}
	return n
}

// Failed counts steps that finished unsuccessfully.
func (m RunMetrics) Failed() int {
	return len(m.Steps) - m.Succeeded()
}

// Summary returns a one-line description, e.g.
// "5 steps: 4 succeeded, 1 failed, 1 retry in 2m3s".
func (m RunMetrics) Summary() string {
	s := fmt.Sprintf("%d %s: %d succeeded, %d failed",
		len(m.Steps), plural(len(m.Steps), "step", "steps"), m.Succeeded(), m.Failed())
	if m.Retries > 0 {
		s += fmt.Sprintf(", %d %s", m.Retries, plural(m.Retries, "retry", "retries"))
	}
	if m.Duration > 0 {
		s += " in " + FormatDuration(m.Duration)
	}
	return s
}

// FormatDuration renders d rounded for humans. Sub-second durations are shown
// in milliseconds; zero renders as "-".
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Collector builds RunMetrics from workflow events. Safe for concurrent use.
type Collector struct {
	mu      sync.RWMutex
	metrics RunMetrics
	index   map[string]int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{index: make(map[string]int)}
}

// Observe folds one event into the collected metrics.
func (c *Collector) Observe(ev events.WorkflowEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case events.WorkflowStarted:
		c.metrics.RunID = ev.RunID
		c.metrics.StartedAt = ev.Time
	case events.StepStarted:
		c.step(ev)
	case events.StepRetrying:
		c.metrics.Retries++
	case events.StepFinished:
		s := c.step(ev)
		s.Status = ev.Status
		s.Attempts = ev.Attempt
		s.Duration = ev.Duration
	case events.WorkflowFinished:
		c.metrics.Status = ev.Status
		c.metrics.FinishedAt = ev.Time
		c.metrics.Duration = ev.Duration
	}
}

// step returns the entry for ev's step, creating it on first sight.
func (c *Collector) step(ev events.WorkflowEvent) *StepMetrics {
	i, ok := c.index[ev.StepID]
	if !ok {
		i = len(c.metrics.Steps)
		c.index[ev.StepID] = i
		c.metrics.Steps = append(c.metrics.Steps, StepMetrics{
			StepID: ev.StepID,
			Phase:  ev.Phase,
			Label:  ev.Label,
		})
	}
	return &c.metrics.Steps[i]
}

// Consume observes events from ch until it closes, ctx ends, or the run
// finishes.
func (c *Collector) Consume(ctx context.Context, ch <-chan pubsub.Event[events.WorkflowEvent]) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			c.Observe(ev.Payload)
			if ev.Payload.IsTerminal() {
				return
			}
		}
	}
}

// Snapshot returns a copy of the collected metrics.
func (c *Collector) Snapshot() RunMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := c.metrics
	m.Steps = append([]StepMetrics(nil), c.metrics.Steps...)
	return m
}
