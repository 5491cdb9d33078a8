package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/recoverly/flowedit"
	"github.com/recoverly/flowedit/internal/cli"
	"github.com/recoverly/flowedit/internal/config"
	"github.com/spf13/cobra"
)

// defaultConfigFile is picked up from the working directory when --config is not set.
const defaultConfigFile = "flowedit.yaml"

var rootCmd = &cobra.Command{
	Use:   "flowedit",
	Short: "flowedit edits debt-collection automation graphs",
	Long: `flowedit hosts editor sessions over automation graphs (triggers, conditions and
actions) with bounded undo/redo, and persists them to memory, files or Redis.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML config file (default ./"+defaultConfigFile+" when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("store", "", "Override the store backend: memory, file, redis")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	changed := false
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
		changed = true
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store = v
		changed = true
	}
	if cmd.Flags().Lookup("listen") != nil && cmd.Flags().Changed("listen") {
		cfg.Listen, _ = cmd.Flags().GetString("listen")
		changed = true
	}
	if changed {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setup loads the configuration and the logger for a command.
// Logs go to stderr so stdout stays free for output and the MCP stdio transport.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := cli.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newRuntime loads the configuration and builds the engine for a command.
func newRuntime(ctx context.Context, cmd *cobra.Command, extra ...flowedit.Option) (*cli.Runtime, error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewRuntime(ctx, cfg, logger, extra...)
}
