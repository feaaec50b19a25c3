package cmd

import (
	"github.com/huangsam/statweights/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the statweights MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents run stat weight simulations and edit the active weights via standard tools.`,
	Args:  cobra.NoArgs,
	// Setup writes nothing to stdout, which the protocol owns.
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctrl, err := newController()
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(rootCtx, cfg, ctrl)
	},
}
