// Package log provides category-scoped structured logging for brainstorm.
//
// Logging is disabled until Init is called. Once initialized, every call writes
// one structured line (JSON or console) to the configured file so workflow runs
// can be inspected after the terminal output is gone.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category groups log lines by subsystem.
type Category string

const (
	CatOrch   Category = "orch"
	CatDB     Category = "db"
	CatConfig Category = "config"
	CatCmd    Category = "cmd"
	CatUI     Category = "ui"
)

// Options configures Init.
type Options struct {
	// Path is the log file. Empty disables file logging.
	Path string
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// Format is "json" or "console". Defaults to json.
	Format string
}

var (
	mu      sync.RWMutex
	sugar   = zap.NewNop().Sugar()
	closeFn = func() error { return nil }
)

// Init opens the log file and installs the global logger.
// Calling Init again replaces the previous logger; an empty Path installs a
// no-op logger and closes any open log file.
func Init(opts Options) error {
	if opts.Path == "" {
		install(zap.NewNop(), func() error { return nil })
		return nil
	}

	level, err := zapcore.ParseLevel(defaultString(opts.Level, "info"))
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // G304: path comes from config
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	core := zapcore.NewCore(newEncoder(opts.Format), zapcore.AddSync(f), level)
	install(zap.New(core), f.Close)
	return nil
}

// SetLogger installs a prebuilt zap logger. Used by tests to observe output.
func SetLogger(l *zap.Logger) {
	install(l, func() error { return nil })
}

// Close flushes and releases the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	_ = sugar.Sync()
	err := closeFn()
	sugar = zap.NewNop().Sugar()
	closeFn = func() error { return nil }
	return err
}

func install(l *zap.Logger, closer func() error) {
	mu.Lock()
	defer mu.Unlock()
	_ = sugar.Sync()
	_ = closeFn()
	sugar = l.Sugar()
	closeFn = closer
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if strings.EqualFold(format, "console") {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func withCategory(cat Category, kv []any) []any {
	return append([]any{"category", string(cat)}, kv...)
}

// Debug logs a debug line with alternating key/value pairs.
func Debug(cat Category, msg string, kv ...any) {
	current().Debugw(msg, withCategory(cat, kv)...)
}

// Info logs an info line.
func Info(cat Category, msg string, kv ...any) {
	current().Infow(msg, withCategory(cat, kv)...)
}

// Warn logs a warning line.
func Warn(cat Category, msg string, kv ...any) {
	current().Warnw(msg, withCategory(cat, kv)...)
}

// Error logs an error line.
func Error(cat Category, msg string, kv ...any) {
	current().Errorw(msg, withCategory(cat, kv)...)
}

// ErrorErr logs an error line with the error attached under the "error" key.
func ErrorErr(cat Category, msg string, err error, kv ...any) {
	kv = append(kv, "error", err)
	current().Errorw(msg, withCategory(cat, kv)...)
}

// SafeGo runs fn in a goroutine and logs instead of crashing on panic.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Error(CatOrch, "goroutine panicked", "goroutine", name, "panic", r, "stack", string(debug.Stack()))
			}
		}()
		fn()
	}()
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
