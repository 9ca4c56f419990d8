package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// statsCmd prints the aggregate cache counters.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache hit/miss/eviction counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ctrl, tel, _, err := setup(ctx)
		if err != nil {
			return err
		}
		defer tel.Shutdown(ctx)

		stats := ctrl.Stats()
		if jsonOut {
			return json.NewEncoder(os.Stdout).Encode(stats)
		}

		fmt.Printf("entries:   %d\n", stats.Size)
		fmt.Printf("hits:      %d\n", stats.Hits)
		fmt.Printf("misses:    %d\n", stats.Misses)
		fmt.Printf("evictions: %d\n", stats.Evictions)
		fmt.Printf("hit rate:  %.1f%%\n", stats.HitRate())
		return nil
	},
}

// clearCmd drops every cached entry and resets the counters.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all cached entries and reset counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ctrl, tel, _, err := setup(ctx)
		if err != nil {
			return err
		}
		defer tel.Shutdown(ctx)

		if err := ctrl.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Println("cache cleared")
		return nil
	},
}

var jsonOut bool

func init() {
	statsCmd.Flags().BoolVar(&jsonOut, "json", false, "emit stats as JSON")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
}
