// ABOUTME: TUI and MCP commands.
// ABOUTME: Both share the session and synchronizer built by the root command.

package main

import (
	"github.com/harper/notes/internal/mcp"
	"github.com/harper/notes/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:         "tui",
	Short:       "Open the interactive notes screen",
	Long:        `Open the interactive notes screen. Logs are written to notes.log in the data directory.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{logToFile: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(cmd.Context(), st, sessMgr, syncer)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long:  `Start the Model Context Protocol server on stdio for AI agent integration. Log in first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(syncer, version)
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd, mcpCmd)
}
