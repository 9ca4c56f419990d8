// Package main provides the toolcache CLI application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/toolcache/cache"
	"github.com/jonwraymond/toolcache/config"
	"github.com/jonwraymond/toolcache/observe"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "toolcache",
	Short: "Deterministic result cache for tool executions",
	Long: `toolcache memoizes tool execution results for an AI orchestrator.

The orchestrator calls "precheck" before running a tool and "poststore"
after it returns, both speaking JSON on stdin/stdout. Cached entries carry
per-tool TTLs, file-reading tools are invalidated when their source file
changes, and the store is a bounded, crash-safe JSON file.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "toolcache:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default $TOOLCACHE_CONFIG, then built-in defaults)")
}

// loadConfig resolves the configuration: the --config flag, then the
// TOOLCACHE_CONFIG environment variable, then built-in defaults. A .env file
// in the working directory is loaded first so the config may reference its
// variables.
func loadConfig() (*config.Config, error) {
	// Best-effort: absent .env just means the system environment is used.
	_ = godotenv.Load()

	path := cfgFile
	if path == "" {
		path = os.Getenv("TOOLCACHE_CONFIG")
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// setup builds the controller and telemetry from the resolved configuration.
func setup(ctx context.Context) (*cache.Controller, *observe.Telemetry, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	tel, err := observe.Setup(ctx, cfg.Observe("toolcache", version))
	if err != nil {
		return nil, nil, nil, err
	}

	store := cache.NewFileStore(cfg.StorePath)
	ctrl := cache.NewController(store, cfg.Policy(),
		cache.WithLogger(tel.Logger),
		cache.WithMetrics(tel.Metrics),
	)
	return ctrl, tel, cfg, nil
}
