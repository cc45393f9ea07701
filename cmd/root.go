// Package cmd implements the brainstorm command line.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/brainstorm/internal/config"
	"github.com/zjrosen/brainstorm/internal/log"
	"github.com/zjrosen/brainstorm/internal/ui/styles"
)

var (
	cfgFile string
	debug   bool
	cfg     config.Config
	v       *viper.Viper
	version = "dev"
)

// flagBindings maps config keys to the flags that override them.
var flagBindings = map[string]string{
	"ui.no_color": "no-color",
	"ui.tui":      "tui",
	"output_dir":  "output-dir",
}

var rootCmd = &cobra.Command{
	Use:   "brainstorm",
	Short: "Phase-gated multi-role analysis of a topic",
	Long: `brainstorm turns a topic into a shared framework, up to three role
analyses chosen by keyword, and a synthesis report. Each phase is gated on the
previous one producing its artifact.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = log.Close()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by --version.
func SetVersion(s string) {
	version = s
	rootCmd.Version = s
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ~/.config/brainstorm/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "write a debug log")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("output-dir", "", "directory for session artifacts")
}

// newViper returns a fresh viper with the flags of cmd bound to their keys.
// Only flags the user actually set take precedence over file and env values.
func newViper(cmd *cobra.Command) *viper.Viper {
	nv := viper.New()
	for key, name := range flagBindings {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			_ = nv.BindPFlag(key, f)
		}
	}
	return nv
}

func initConfig(cmd *cobra.Command, _ []string) error {
	v = newViper(cmd)
	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if debug {
		if cfg.Log.File == "" {
			cfg.Log.File = filepath.Join(config.DefaultConfigDir(), "debug.log")
		}
		cfg.Log.Level = "debug"
	}
	if err := log.Init(log.Options{Path: cfg.Log.File, Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return fmt.Errorf("initializing log: %w", err)
	}

	if cfg.UI.NoColor || os.Getenv("NO_COLOR") != "" {
		styles.DisableColor()
	}

	log.Debug(log.CatConfig, "Configuration loaded",
		"command", cmd.Name(),
		"config", v.ConfigFileUsed(),
		"output_dir", cfg.OutputDir)
	return nil
}
