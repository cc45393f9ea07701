package client

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeRunner writes a shell script that stands in for the command runner.
func fakeRunner(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script runner")
	}
	path := filepath.Join(t.TempDir(), "runner")
	writeExecutable(t, path, "#!/bin/sh\n"+body+"\n")
	return path
}

func invoke(t *testing.T, cfg Config, name string, args ...string) Completion {
	t.Helper()
	ch := NewProcessInvoker(cfg).Invoke(context.Background(), name, args)
	select {
	case c, ok := <-ch:
		require.True(t, ok, "completion channel closed without a value")
		return c
	case <-time.After(10 * time.Second):
		t.Fatal("invocation did not complete")
		return Completion{}
	}
}

func TestProcessInvoker_Success(t *testing.T) {
	runner := fakeRunner(t, `echo '{"type":"system","subtype":"init"}'
echo '{"type":"result","subtype":"success","is_error":false,"result":"framework written"}'`)

	c := invoke(t, Config{Executable: runner}, "artifacts", "topic", OutputFlag, "/tmp/out.md")

	require.NoError(t, c.Err)
	require.True(t, c.OK())
	require.Equal(t, 0, c.ExitCode)
	require.Equal(t, "framework written", c.Result)
	require.Equal(t, "/tmp/out.md", c.OutputPath)
	require.Greater(t, c.Duration, time.Duration(0))
}

func TestProcessInvoker_PassesPromptAndEnv(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	runner := fakeRunner(t, `printf '%s\n' "$@" > "$ARGS_FILE"
echo "{\"type\":\"result\",\"result\":\"$BRAINSTORM_SESSION\"}"`)

	c := invoke(t, Config{
		Executable: runner,
		BaseArgs:   []string{"--print"},
		Prefix:     "wf:",
		Env:        map[string]string{"ARGS_FILE": argsFile, "BRAINSTORM_SESSION": "sess-1"},
	}, "synthesis", "my topic")

	require.NoError(t, c.Err)
	require.Equal(t, "sess-1", c.Result)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, []string{"--print", `/wf:synthesis "my topic"`}, lines)
}

func TestProcessInvoker_NonZeroExit(t *testing.T) {
	runner := fakeRunner(t, `echo "rate limited" >&2
exit 3`)

	c := invoke(t, Config{Executable: runner}, "ui-designer")

	require.Error(t, c.Err)
	require.False(t, c.OK())
	require.Equal(t, 3, c.ExitCode)
	require.Equal(t, "rate limited", c.Stderr)
	require.Contains(t, c.Err.Error(), "exited with code 3")
}

func TestProcessInvoker_ErrorResult(t *testing.T) {
	runner := fakeRunner(t, `echo '{"type":"result","subtype":"success","is_error":true,"result":"could not write file"}'`)

	c := invoke(t, Config{Executable: runner}, "synthesis")

	require.Error(t, c.Err)
	require.True(t, c.IsError)
	require.Contains(t, c.Err.Error(), "could not write file")
}

func TestProcessInvoker_Timeout(t *testing.T) {
	runner := fakeRunner(t, `exec sleep 5`)

	c := invoke(t, Config{Executable: runner, Timeout: 100 * time.Millisecond}, "artifacts")

	require.Error(t, c.Err)
	require.Contains(t, c.Err.Error(), "timed out")
	require.Less(t, c.Duration, 5*time.Second)
}

func TestProcessInvoker_MissingExecutable(t *testing.T) {
	t.Setenv("PATH", "")
	c := invoke(t, Config{Executable: "runner-that-does-not-exist-987", KnownPaths: []string{}}, "artifacts")

	require.ErrorIs(t, c.Err, ErrExecutableNotFound)
	require.Equal(t, -1, c.ExitCode)
}

func TestDone(t *testing.T) {
	ch := Done(Completion{Result: "x"})
	c, ok := <-ch
	require.True(t, ok)
	require.Equal(t, "x", c.Result)
	_, ok = <-ch
	require.False(t, ok)
}
