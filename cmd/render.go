package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
)

var (
	renderOutput string
	renderFormat string
)

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render PlantUML source through the configured server",
	Long:  `Fetches the rendered diagram for PlantUML source and writes it to --output, or stdout.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if renderFormat == "" {
			renderFormat = cfg.Format
		}
		format, err := plantuml.ParseFormat(renderFormat)
		if err != nil {
			return err
		}
		text, err := readSource(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		url, body, err := newRenderClient(cfg).Render(cmd.Context(), text, format)
		if err != nil {
			return err
		}
		slog.Debug("rendered diagram", "url", url, "bytes", len(body))
		return writeOutput(cmd.OutOrStdout(), renderOutput, []byte(body))
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (default stdout)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "output format (svg, png, txt; default from config)")
	rootCmd.AddCommand(renderCmd)
}
