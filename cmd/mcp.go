package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joescharf/abacus/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for assistant integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an assistant read your time entries and weekly status. Configure
it with:

  {
    "mcpServers": {
      "abacus": { "command": "abacus", "args": ["mcp"] }
    }
  }

Available tools: abacus_summary, abacus_list_entries, abacus_status,
abacus_aliases, abacus_history. All tools are read-only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(cmd *cobra.Command) error {
	// stdout carries the protocol.
	ui.Out = os.Stderr
	ui.Quiet = true

	svc, err := newService(serviceOptions{})
	if err != nil {
		return err
	}
	srv := mcp.NewServer(svc, svc.Cache, svc.Aliases, svc.Journal, svc.Loc, buildVersion)
	return srv.ServeStdio(cmd.Context())
}
