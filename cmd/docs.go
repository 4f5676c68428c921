package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corbenferris/figjam-plantuml/internal/markdown"
	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
)

var (
	docsOutput string
	docsTitle  string
	docsStyle  string
)

var docsCmd = &cobra.Command{
	Use:   "docs <file.md>",
	Short: "Convert Markdown to HTML with PlantUML fences as diagram images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		source, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		body, err := markdown.ToHTML(source, markdown.Options{
			Server: cfg.Server,
			Format: plantuml.Format(cfg.Format),
			Style:  docsStyle,
		})
		if err != nil {
			return err
		}

		title := docsTitle
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		page, err := markdown.Page(title, body)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), docsOutput, page)
	},
}

func init() {
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "output file (default stdout)")
	docsCmd.Flags().StringVar(&docsTitle, "title", "", "page title (default: file name)")
	docsCmd.Flags().StringVar(&docsStyle, "style", "github", "code highlighting style")
	rootCmd.AddCommand(docsCmd)
}
