package log

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { _ = Close() })
	return logs
}

func TestDebug_AddsCategory(t *testing.T) {
	logs := observe(t)

	Debug(CatOrch, "phase started", "phase", "framework")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "phase started", entries[0].Message)
	fields := entries[0].ContextMap()
	require.Equal(t, "orch", fields["category"])
	require.Equal(t, "framework", fields["phase"])
}

func TestErrorErr_AttachesError(t *testing.T) {
	logs := observe(t)

	ErrorErr(CatDB, "insert failed", errors.New("disk full"), "table", "sessions")

	entries := logs.FilterMessage("insert failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	require.Equal(t, "disk full", fields["error"])
	require.Equal(t, "sessions", fields["table"])
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	logs := observe(t)

	var wg sync.WaitGroup
	wg.Add(1)
	SafeGo("boom", func() {
		defer wg.Done()
		panic("kaboom")
	})
	wg.Wait()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("goroutine panicked").Len() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestInit_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "brainstorm.log")

	require.NoError(t, Init(Options{Path: path, Level: "debug"}))
	Info(CatConfig, "config loaded", "path", "/tmp/config.yaml")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"config loaded"`)
	require.Contains(t, string(data), `"category":"config"`)
}

func TestInit_EmptyPathIsNoop(t *testing.T) {
	require.NoError(t, Init(Options{}))
	Info(CatCmd, "dropped")
}

func TestInit_EmptyPathReplacesPreviousLogger(t *testing.T) {
	logs := observe(t)
	Info(CatCmd, "before")

	require.NoError(t, Init(Options{}))
	Info(CatCmd, "after")

	require.Equal(t, 1, logs.Len())
	require.Equal(t, 1, logs.FilterMessage("before").Len())
}

func TestInit_EmptyPathClosesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brainstorm.log")
	require.NoError(t, Init(Options{Path: path}))
	Info(CatCmd, "kept")

	require.NoError(t, Init(Options{}))
	Info(CatCmd, "discarded")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "kept")
	require.NotContains(t, string(data), "discarded")
}

func TestInit_RejectsBadLevel(t *testing.T) {
	err := Init(Options{Path: filepath.Join(t.TempDir(), "x.log"), Level: "loud"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing log level")
}
