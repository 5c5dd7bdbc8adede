package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/refparser/internal/mcpserver"
)

func newMCPCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve parse, resolve, dereference and bundle as MCP tools over stdio",
		Long: `Start an MCP (Model Context Protocol) server on stdin/stdout. The
configuration files, environment and global flags set the defaults of every
tool call. Server settings come from REFPARSER_MCP_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := g.baseOptions(cmd)
			if err != nil {
				return err
			}
			g.logger.Info().Msg("Starting MCP server on stdio")
			return mcpserver.Run(cmd.Context(), opts...)
		},
	}
}
