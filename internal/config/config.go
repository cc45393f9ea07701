// Package config provides configuration types and defaults for brainstorm.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/brainstorm/internal/orchestration/roles"
)

// Tracing exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config holds all configuration options for brainstorm.
type Config struct {
	OutputDir string         `mapstructure:"output_dir"`
	DBPath    string         `mapstructure:"db_path"`
	Command   CommandConfig  `mapstructure:"command"`
	Workflow  WorkflowConfig `mapstructure:"workflow"`
	Roles     RolesConfig    `mapstructure:"roles"`
	Tracing   TracingConfig  `mapstructure:"tracing"`
	Log       LogConfig      `mapstructure:"log"`
	UI        UIConfig       `mapstructure:"ui"`
}

// CommandConfig controls how phase commands are invoked.
type CommandConfig struct {
	// Executable is the command runner binary. Resolved via known install
	// locations and PATH when not absolute.
	Executable string `mapstructure:"executable"`

	// BaseArgs are passed to every invocation before the prompt.
	BaseArgs []string `mapstructure:"base_args"`

	// Prefix namespaces command names, e.g. "workflow:brainstorm:".
	Prefix string `mapstructure:"prefix"`

	// Timeout bounds a single invocation. Zero disables the bound.
	Timeout time.Duration `mapstructure:"timeout"`

	Env map[string]string `mapstructure:"env"`
}

// WorkflowConfig holds phase policy tuning.
type WorkflowConfig struct {
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	ArtifactSettle time.Duration `mapstructure:"artifact_settle"`
}

// RolesConfig customizes role selection and role focus text.
type RolesConfig struct {
	// RulesFile replaces the built-in keyword rule table.
	RulesFile string `mapstructure:"rules_file"`

	// FocusOverrides are keyed by role id.
	FocusOverrides map[string]roles.FocusOverride `mapstructure:"focus_overrides"`
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	Exporter string `mapstructure:"exporter"`
	Endpoint string `mapstructure:"endpoint"`
}

// LogConfig configures the debug log file.
type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	NoColor bool `mapstructure:"no_color"`
	TUI     bool `mapstructure:"tui"`
}

// DefaultConfigDir returns ~/.config/brainstorm, falling back to ./.brainstorm
// when the home directory cannot be determined.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".brainstorm"
	}
	return filepath.Join(home, ".config", "brainstorm")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		OutputDir: ".brainstorming",
		DBPath:    filepath.Join(DefaultConfigDir(), "brainstorm.db"),
		Command: CommandConfig{
			Executable: "claude",
			BaseArgs:   []string{"--print", "--output-format", "stream-json", "--verbose"},
			Prefix:     "workflow:brainstorm:",
		},
		Workflow: WorkflowConfig{
			RetryDelay:     2 * time.Second,
			ArtifactSettle: 3 * time.Second,
		},
		Tracing: TracingConfig{
			Exporter: ExporterNone,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	var errs []error

	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}
	if c.Command.Executable == "" {
		errs = append(errs, errors.New("command.executable is required"))
	}
	if c.Command.Timeout < 0 {
		errs = append(errs, fmt.Errorf("command.timeout must not be negative, got %s", c.Command.Timeout))
	}
	if c.Workflow.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("workflow.retry_delay must not be negative, got %s", c.Workflow.RetryDelay))
	}
	if c.Workflow.ArtifactSettle < 0 {
		errs = append(errs, fmt.Errorf("workflow.artifact_settle must not be negative, got %s", c.Workflow.ArtifactSettle))
	}

	for id := range c.Roles.FocusOverrides {
		if !roles.Role(id).IsValid() {
			errs = append(errs, fmt.Errorf("roles.focus_overrides: unknown role %q", id))
		}
	}

	switch c.Tracing.Exporter {
	case "", ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.Tracing.Endpoint == "" {
			errs = append(errs, errors.New("tracing.endpoint is required for the otlp exporter"))
		}
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter: unknown exporter %q", c.Tracing.Exporter))
	}

	switch c.Log.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format: must be json or console, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// FocusOverride returns the configured override for role, or nil.
func (c Config) FocusOverride(role roles.Role) *roles.FocusOverride {
	o, ok := c.Roles.FocusOverrides[string(role)]
	if !ok {
		return nil
	}
	return &o
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Brainstorm Configuration

# Directory where per-session artifacts are written
output_dir: .brainstorming

# Session database (default: ~/.config/brainstorm/brainstorm.db)
# db_path: /path/to/brainstorm.db

# Command invocation
command:
  executable: claude
  base_args: ["--print", "--output-format", "stream-json", "--verbose"]
  prefix: "workflow:brainstorm:"
  # timeout: 10m          # Per-invocation bound (0 = none)
  # env:
  #   ANTHROPIC_MODEL: opus

# Phase policy
workflow:
  retry_delay: 2s         # Pause before the synthesis retry
  artifact_settle: 3s     # How long to wait for a late artifact write

# Role selection
roles:
  # Replace the built-in keyword rules with your own table:
  # rules_file: ~/.config/brainstorm/rules.yaml
  #
  # Adjust what a role focuses on (replace wins over append):
  # focus_overrides:
  #   security-expert:
  #     append: "Pay special attention to OAuth flows."

# Tracing
tracing:
  exporter: none          # none, stdout, otlp
  # endpoint: localhost:4317

# Debug log
log:
  # file: /tmp/brainstorm.log
  level: info
  format: json            # json or console

ui:
  no_color: false
  tui: false
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
