package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/brainstorm/internal/log"
)

// Waiter blocks until an artifact becomes ready or a settle window expires.
// Commands may finish before their output is flushed to disk, so a short
// settle window avoids reporting a finished step as failed.
type Waiter struct {
	checker Checker
}

// NewWaiter creates a Waiter that uses checker as the source of truth.
func NewWaiter(checker Checker) *Waiter {
	return &Waiter{checker: checker}
}

// Await returns nil once path is ready, or ErrNotReady after settle elapses.
// A zero settle performs a single check.
func (w *Waiter) Await(ctx context.Context, path string, settle time.Duration) error {
	if Ready(w.checker, path) {
		return nil
	}
	if settle <= 0 {
		return fmt.Errorf("%w: %s", ErrNotReady, path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating artifact watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching artifact directory: %w", err)
	}

	// The file may have landed between the first check and Add.
	if Ready(w.checker, path) {
		return nil
	}

	timer := time.NewTimer(settle)
	defer timer.Stop()

	return w.watch(ctx, path, timer.C, watcher.Events, watcher.Errors)
}

// watch consumes watcher notifications until path is ready, the deadline
// fires or ctx ends.
func (w *Waiter) watch(ctx context.Context, path string, deadline <-chan time.Time, events <-chan fsnotify.Event, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			if Ready(w.checker, path) {
				return nil
			}
			return fmt.Errorf("%w: %s", ErrNotReady, path)
		case event, ok := <-events:
			if !ok {
				return fmt.Errorf("%w: %s", ErrNotReady, path)
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				if Ready(w.checker, path) {
					return nil
				}
			}
		case werr, ok := <-errs:
			if !ok {
				// A nil channel never becomes ready.
				errs = nil
				continue
			}
			log.Warn(log.CatOrch, "artifact watcher error", "path", path, "error", werr)
		}
	}
}
