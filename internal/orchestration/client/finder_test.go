package client

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeExecutable(t *testing.T, path, script string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
}

func TestDefaultKnownPaths_UseNameTemplate(t *testing.T) {
	for i, path := range DefaultKnownPaths {
		require.Contains(t, path, "{name}", "path %d (%s) should use the {name} template", i, path)
		require.NotContains(t, path, ".exe")
	}
}

func TestExecutableFinder_KnownPathUnderHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	home := t.TempDir()
	execPath := filepath.Join(home, ".local", "bin", "runner")
	writeExecutable(t, execPath, "#!/bin/sh\n")
	t.Setenv("HOME", home)

	path, err := NewExecutableFinder("runner",
		WithKnownPaths("~/.local/bin/{name}"),
		WithoutCache(),
	).Find()
	require.NoError(t, err)
	require.Equal(t, execPath, path)
}

func TestExecutableFinder_SkipsNonExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "runner"), []byte("x"), 0644))
	t.Setenv("PATH", "")

	_, err := NewExecutableFinder("runner",
		WithKnownPaths(filepath.Join(dir, "{name}")),
		WithoutCache(),
	).Find()
	require.ErrorIs(t, err, ErrExecutableNotFound)
}

func TestExecutableFinder_NotFound_ErrorMentionsPath(t *testing.T) {
	t.Setenv("HOME", "/non-existent-home-for-test")
	t.Setenv("PATH", "")

	path, err := NewExecutableFinder("runner-nonexistent-12345", WithoutCache()).Find()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrExecutableNotFound))
	require.Empty(t, path)
	require.Contains(t, err.Error(), "runner-nonexistent-12345")
	require.Contains(t, err.Error(), "PATH")
}

func TestExecutableFinder_ExplicitPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	execPath := filepath.Join(t.TempDir(), "runner")
	writeExecutable(t, execPath, "#!/bin/sh\n")

	path, err := NewExecutableFinder(execPath, WithoutCache()).Find()
	require.NoError(t, err)
	require.Equal(t, execPath, path)

	_, err = NewExecutableFinder(execPath+"-missing", WithoutCache()).Find()
	require.ErrorIs(t, err, ErrExecutableNotFound)
}

func TestExecutableFinder_CachesResolvedPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	ResetCache()
	t.Cleanup(ResetCache)

	dir := t.TempDir()
	execPath := filepath.Join(dir, "cached-runner")
	writeExecutable(t, execPath, "#!/bin/sh\n")
	t.Setenv("PATH", "")

	finder := NewExecutableFinder("cached-runner", WithKnownPaths(filepath.Join(dir, "{name}")))
	path, err := finder.Find()
	require.NoError(t, err)
	require.Equal(t, execPath, path)

	// Served from cache even after the binary disappears.
	require.NoError(t, os.Remove(execPath))
	path, err = finder.Find()
	require.NoError(t, err)
	require.Equal(t, execPath, path)

	ResetCache()
	_, err = finder.Find()
	require.ErrorIs(t, err, ErrExecutableNotFound)
}
