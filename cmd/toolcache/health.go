package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/toolcache/health"
)

// healthCmd inspects the durable store and reports its condition. Exit code
// is non-zero only when the store is unhealthy (unwritable), since the cache
// recovers from everything milder on its own.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the condition of the cache store file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		checker := health.NewStoreChecker(cfg.StorePath, cfg.MaxEntries)
		result := checker.Check(cmd.Context())

		fmt.Printf("%s: %s: %s\n", checker.Name(), result.Status, result.Message)
		for k, v := range result.Details {
			fmt.Printf("  %s: %v\n", k, v)
		}

		if result.Status == health.StatusUnhealthy {
			return fmt.Errorf("store unhealthy: %w", result.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
