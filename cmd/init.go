package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corbenferris/figjam-plantuml/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize umlwidget configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to pick a rendering server, output format and batch patterns, and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
