package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. BRAINSTORM_OUTPUT_DIR.
const EnvPrefix = "BRAINSTORM"

// SetDefaults registers Defaults() on v so every key is known to viper,
// including keys that only come from the environment.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("command.executable", d.Command.Executable)
	v.SetDefault("command.base_args", d.Command.BaseArgs)
	v.SetDefault("command.prefix", d.Command.Prefix)
	v.SetDefault("command.timeout", d.Command.Timeout)
	v.SetDefault("workflow.retry_delay", d.Workflow.RetryDelay)
	v.SetDefault("workflow.artifact_settle", d.Workflow.ArtifactSettle)
	v.SetDefault("roles.rules_file", d.Roles.RulesFile)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("ui.no_color", d.UI.NoColor)
	v.SetDefault("ui.tui", d.UI.TUI)
}

// Load reads configuration into a validated Config. An explicit path must
// exist; otherwise the default location is used when present.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
