package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/toolcache/hook"
)

// precheckCmd reads a pre-check request from stdin and answers on stdout.
var precheckCmd = &cobra.Command{
	Use:   "precheck",
	Short: "Check the cache before a tool execution",
	Long: `Reads a JSON pre-check request from stdin and writes the response
to stdout:

  {"tool_name": "Read", "tool_input": {"file_path": "/tmp/a.txt"}}
  → {"hit": true, "result": "...", "hit_count": 3}

A malformed request answers with a miss; this command never fails the
tool invocation path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ctrl, tel, _, err := setup(ctx)
		if err != nil {
			return err
		}
		defer tel.Shutdown(ctx)

		h := hook.NewHandler(ctrl, tel)
		return h.PreCheck(ctx, os.Stdin, os.Stdout)
	},
}

// poststoreCmd reads a post-store request from stdin and answers on stdout.
var poststoreCmd = &cobra.Command{
	Use:   "poststore",
	Short: "Offer a tool result to the cache after execution",
	Long: `Reads a JSON post-store request from stdin and writes the response
to stdout:

  {"tool_name": "Read", "tool_input": {...}, "result": "..."}
  → {"stored": true}

Non-cacheable tools and oversized results answer {"stored": false}.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ctrl, tel, _, err := setup(ctx)
		if err != nil {
			return err
		}
		defer tel.Shutdown(ctx)

		h := hook.NewHandler(ctrl, tel)
		return h.PostStore(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(precheckCmd)
	rootCmd.AddCommand(poststoreCmd)
}
