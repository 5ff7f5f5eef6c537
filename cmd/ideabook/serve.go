package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/gorewood/ideabook/internal/config"
	ideabookmcp "github.com/gorewood/ideabook/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [path]",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run ideabook as a Model Context Protocol (MCP) server over stdio.

This exposes the idea book as MCP tools that any MCP-capable agent
environment can use. The book is the configured repository unless a path
is given.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "ideabook": {
        "command": "ideabook",
        "args": ["serve"]
      }
    }
  }

Available tools: list_chapters, show_chapter, add_idea`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := bookRoot(config.NewDefaultStore(), args)
			if err != nil {
				return err
			}
			server := ideabookmcp.NewServer(buildVersion(), root, c.logger)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
