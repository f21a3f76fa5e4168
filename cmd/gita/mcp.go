package main

import (
	"github.com/spf13/cobra"

	gitamcp "github.com/anshulchahar/gita/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for coding agent integration",
	Long: `Start a Model Context Protocol (MCP) server over stdio.

The server exposes read-only content tools: unit validation, lesson chains,
sync planning and the last recorded run.

Example client configuration:

  {
    "mcpServers": {
      "gita": {
        "command": "gita",
        "args": ["mcp"],
        "env": {
          "GITA_CONTENT_DIR": "/path/to/content",
          "GITA_LOG_MODE": "nop"
        }
      }
    }
  }`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, log, err := openApp()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer a.Close()

	return gitamcp.NewServer(a, version).Run()
}
