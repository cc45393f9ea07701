// Package progress tracks the user-visible task list for one workflow run.
package progress

import (
	"errors"
	"fmt"
	"sync"
)

// TaskStatus is the lifecycle state of a progress task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task is one user-visible progress row.
type Task struct {
	Label  string     `json:"label"`
	Status TaskStatus `json:"status"`
}

var (
	// ErrTaskIndex is returned for an index outside the task list.
	ErrTaskIndex = errors.New("task index out of range")
	// ErrTaskTerminal is returned when marking a completed or failed task.
	ErrTaskTerminal = errors.New("task already finished")
	// ErrTaskBusy is returned when another task is already in progress.
	ErrTaskBusy = errors.New("another task is in progress")
)

// Tracker holds the ordered task list. At most one task is in progress at any
// time and finished tasks never change. Safe for concurrent readers.
type Tracker struct {
	mu       sync.RWMutex
	tasks    []Task
	active   int // index of the in-progress task, or -1
	onChange func([]Task)
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{active: -1}
}

// OnChange registers fn to receive a snapshot after every mutation. fn runs
// outside the tracker lock.
func (t *Tracker) OnChange(fn func([]Task)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// Seed replaces the task list with pending tasks.
func (t *Tracker) Seed(labels ...string) {
	t.mu.Lock()
	t.tasks = make([]Task, 0, len(labels))
	for _, l := range labels {
		t.tasks = append(t.tasks, Task{Label: l, Status: TaskPending})
	}
	t.active = -1
	t.mu.Unlock()
	t.notify()
}

// Extend appends pending tasks.
func (t *Tracker) Extend(labels ...string) {
	if len(labels) == 0 {
		return
	}
	t.mu.Lock()
	for _, l := range labels {
		t.tasks = append(t.tasks, Task{Label: l, Status: TaskPending})
	}
	t.mu.Unlock()
	t.notify()
}

// MarkInProgress moves task i from pending to in_progress.
func (t *Tracker) MarkInProgress(i int) error {
	return t.transition(i, TaskInProgress)
}

// MarkCompleted finishes task i successfully. Pending tasks may be completed
// directly.
func (t *Tracker) MarkCompleted(i int) error {
	return t.transition(i, TaskCompleted)
}

// MarkFailed finishes task i unsuccessfully. Pending tasks may be failed
// directly, which is how skipped work is recorded.
func (t *Tracker) MarkFailed(i int) error {
	return t.transition(i, TaskFailed)
}

func (t *Tracker) transition(i int, to TaskStatus) error {
	t.mu.Lock()
	if i < 0 || i >= len(t.tasks) {
		n := len(t.tasks)
		t.mu.Unlock()
		return fmt.Errorf("%w: %d (have %d)", ErrTaskIndex, i, n)
	}
	cur := t.tasks[i].Status
	if cur.IsTerminal() {
		t.mu.Unlock()
		return fmt.Errorf("%w: %q is %s", ErrTaskTerminal, t.tasks[i].Label, cur)
	}

	switch to {
	case TaskInProgress:
		if t.active == i {
			t.mu.Unlock()
			return nil
		}
		if t.active >= 0 {
			busy := t.tasks[t.active].Label
			t.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrTaskBusy, busy)
		}
		t.active = i
	default:
		if t.active == i {
			t.active = -1
		}
	}
	t.tasks[i].Status = to
	t.mu.Unlock()
	t.notify()
	return nil
}

// Snapshot returns a copy of the task list.
func (t *Tracker) Snapshot() []Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() []Task {
	out := make([]Task, len(t.tasks))
	copy(out, t.tasks)
	return out
}

// Len returns the number of tasks.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tasks)
}

func (t *Tracker) notify() {
	t.mu.RLock()
	fn := t.onChange
	snap := t.snapshotLocked()
	t.mu.RUnlock()
	if fn != nil {
		fn(snap)
	}
}

// Counts summarizes a snapshot.
type Counts struct {
	Pending, InProgress, Completed, Failed int
}

// Count tallies task statuses.
func Count(tasks []Task) Counts {
	var c Counts
	for _, task := range tasks {
		switch task.Status {
		case TaskPending:
			c.Pending++
		case TaskInProgress:
			c.InProgress++
		case TaskCompleted:
			c.Completed++
		case TaskFailed:
			c.Failed++
		}
	}
	return c
}
