package client

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/brainstorm/internal/log"
)

// DefaultKnownPaths are checked, in order, before falling back to PATH.
var DefaultKnownPaths = []string{
	"~/.claude/local/{name}",   // Claude Code local install
	"~/.local/bin/{name}",      // Common binary location
	"/opt/homebrew/bin/{name}", // Apple Silicon Mac (Homebrew)
	"/usr/local/bin/{name}",    // Intel Mac / Linux
}

const (
	finderCacheTTL     = 5 * time.Minute
	finderCacheCleanup = 10 * time.Minute
)

// resolved executable paths, keyed by name + search paths
var pathCache = gocache.New(finderCacheTTL, finderCacheCleanup)

// ExecutableFinder locates a command runner binary.
type ExecutableFinder struct {
	name       string
	knownPaths []string
	useCache   bool
}

// FinderOption configures an ExecutableFinder.
type FinderOption func(*ExecutableFinder)

// WithKnownPaths sets the priority-ordered templates checked before PATH.
// "{name}" is replaced by the executable name and "~" by the home directory.
func WithKnownPaths(paths ...string) FinderOption {
	return func(f *ExecutableFinder) {
		f.knownPaths = paths
	}
}

// WithoutCache disables memoization of the resolved path.
func WithoutCache() FinderOption {
	return func(f *ExecutableFinder) {
		f.useCache = false
	}
}

// NewExecutableFinder creates a finder for name.
func NewExecutableFinder(name string, opts ...FinderOption) *ExecutableFinder {
	f := &ExecutableFinder{
		name:       name,
		knownPaths: DefaultKnownPaths,
		useCache:   true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find returns the executable path. Absolute or relative paths containing a
// separator are returned as-is when they exist.
func (f *ExecutableFinder) Find() (string, error) {
	key := f.cacheKey()
	if f.useCache {
		if cached, ok := pathCache.Get(key); ok {
			return cached.(string), nil
		}
	}

	path, err := f.find()
	if err != nil {
		return "", err
	}

	if f.useCache {
		pathCache.Set(key, path, gocache.DefaultExpiration)
	}
	log.Debug(log.CatCmd, "resolved executable", "name", f.name, "path", path)
	return path, nil
}

func (f *ExecutableFinder) find() (string, error) {
	if strings.ContainsRune(f.name, filepath.Separator) {
		if isExecutable(f.name) {
			return f.name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, f.name)
	}

	execName := f.name
	if runtime.GOOS == "windows" && !strings.HasSuffix(execName, ".exe") {
		execName += ".exe"
	}

	home, _ := os.UserHomeDir()
	checked := make([]string, 0, len(f.knownPaths))
	for _, tmpl := range f.knownPaths {
		candidate := expandPath(tmpl, execName, home)
		if candidate == "" {
			continue
		}
		checked = append(checked, candidate)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: %s (checked %s and PATH)",
		ErrExecutableNotFound, f.name, strings.Join(checked, ", "))
}

func (f *ExecutableFinder) cacheKey() string {
	return f.name + "|" + strings.Join(f.knownPaths, "|")
}

func expandPath(tmpl, name, home string) string {
	p := strings.ReplaceAll(tmpl, "{name}", name)
	if strings.HasPrefix(p, "~/") {
		if home == "" {
			return ""
		}
		p = filepath.Join(home, p[2:])
	}
	return p
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}

// ResetCache clears memoized executable paths.
func ResetCache() {
	pathCache.Flush()
}
