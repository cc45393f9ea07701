package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/brainstorm/internal/orchestration/roles"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return path
}

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "claude", cfg.Command.Executable)
	assert.Equal(t, 2*time.Second, cfg.Workflow.RetryDelay)
	assert.Equal(t, ExporterNone, cfg.Tracing.Exporter)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
output_dir: /tmp/out
command:
  executable: /usr/local/bin/runner
  timeout: 5m
workflow:
  retry_delay: 10ms
roles:
  focus_overrides:
    security-expert:
      append: "Focus on OAuth."
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "/usr/local/bin/runner", cfg.Command.Executable)
	assert.Equal(t, 5*time.Minute, cfg.Command.Timeout)
	assert.Equal(t, 10*time.Millisecond, cfg.Workflow.RetryDelay)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3*time.Second, cfg.Workflow.ArtifactSettle)
	assert.Equal(t, "workflow:brainstorm:", cfg.Command.Prefix)

	override := cfg.FocusOverride(roles.RoleSecurityExpert)
	require.NotNil(t, override)
	assert.Equal(t, "Focus on OAuth.", override.Append)
	assert.Nil(t, cfg.FocusOverride(roles.RoleUIDesigner))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BRAINSTORM_OUTPUT_DIR", "/env/out")
	path := writeConfig(t, "ui:\n  tui: true\n")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/env/out", cfg.OutputDir)
	assert.True(t, cfg.UI.TUI)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading config")
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "tracing:\n  exporter: zipkin\n")

	_, err := Load(viper.New(), path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown exporter")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, "output_dir is required"},
		{"empty executable", func(c *Config) { c.Command.Executable = "" }, "command.executable is required"},
		{"negative timeout", func(c *Config) { c.Command.Timeout = -time.Second }, "command.timeout"},
		{"negative retry delay", func(c *Config) { c.Workflow.RetryDelay = -1 }, "workflow.retry_delay"},
		{"negative settle", func(c *Config) { c.Workflow.ArtifactSettle = -1 }, "workflow.artifact_settle"},
		{"otlp without endpoint", func(c *Config) { c.Tracing.Exporter = ExporterOTLP }, "tracing.endpoint"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"unknown override role", func(c *Config) {
			c.Roles.FocusOverrides = map[string]roles.FocusOverride{"wizard": {Append: "x"}}
		}, `unknown role "wizard"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, Defaults().OutputDir, cfg.OutputDir)
	assert.Equal(t, Defaults().Command.BaseArgs, cfg.Command.BaseArgs)
	assert.Equal(t, Defaults().Workflow, cfg.Workflow)
}
