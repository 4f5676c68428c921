package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/corbenferris/figjam-plantuml/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing PlantUML encode, decode, url and render tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "umlwidget MCP server started on stdio (renderer=%s)\n", cfg.Server)

		srv := mcpserver.NewServer(newRenderClient(cfg))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
