// Package artifacts answers whether workflow outputs exist on disk and where
// each output lives within a session's namespace.
package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Checker reports artifact presence. Artifact existence, not a command's own
// report, decides whether a step succeeded.
type Checker interface {
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
	// NonEmpty reports whether path exists and holds at least one byte.
	NonEmpty(path string) bool
}

// FSChecker checks artifacts on the local filesystem.
type FSChecker struct{}

// NewFSChecker returns a filesystem-backed Checker.
func NewFSChecker() FSChecker {
	return FSChecker{}
}

// Exists implements Checker.
func (FSChecker) Exists(path string) bool {
	info, err := stat(path)
	return err == nil && info.Mode().IsRegular()
}

// NonEmpty implements Checker.
func (FSChecker) NonEmpty(path string) bool {
	info, err := stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

func stat(path string) (fs.FileInfo, error) {
	if path == "" {
		return nil, fs.ErrNotExist
	}
	return os.Stat(path)
}

// Ready reports whether the artifact at path satisfies the completion predicate.
func Ready(c Checker, path string) bool {
	return c.Exists(path) && c.NonEmpty(path)
}

// ErrNotReady is returned when an artifact never satisfied the completion predicate.
var ErrNotReady = errors.New("artifact not ready")

// Clear removes whatever sits at path so that only a write made after the
// call can satisfy Ready. A missing file is not an error.
func Clear(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clearing stale artifact: %w", err)
	}
	return nil
}
