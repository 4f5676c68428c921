package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "umlwidget",
	Short: "Edit, encode and render PlantUML diagrams",
	Long: `umlwidget turns PlantUML source into the compact tokens used by PlantUML
rendering servers and back. It hosts diagram nodes that can be edited in a
browser or terminal with a live preview, renders diagrams in bulk, and
exposes the codec to AI agents via MCP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbose))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".umlwidget.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
