package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corbenferris/figjam-plantuml/internal/batch"
	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
	"github.com/corbenferris/figjam-plantuml/internal/progress"
)

var (
	batchPatterns    []string
	batchExcludes    []string
	batchOut         string
	batchFormat      string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch [root]",
	Short: "Render every diagram under a directory",
	Long: `Renders .puml/.plantuml files and the plantuml fences of Markdown
documents under root (default "."). A document's Nth diagram is written
as name.N.<format>.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		if !cmd.Flags().Changed("pattern") {
			batchPatterns = cfg.Batch.Include
		}
		if !cmd.Flags().Changed("exclude") {
			batchExcludes = cfg.Batch.Exclude
		}
		if !cmd.Flags().Changed("out") {
			batchOut = cfg.Batch.OutDir
		}
		if !cmd.Flags().Changed("concurrency") {
			batchConcurrency = cfg.Batch.MaxConcurrency
		}
		if batchFormat == "" {
			batchFormat = cfg.Format
		}
		format, err := plantuml.ParseFormat(batchFormat)
		if err != nil {
			return err
		}

		res, err := batch.Run(cmd.Context(), batch.Options{
			Root:        root,
			Patterns:    batchPatterns,
			Exclude:     batchExcludes,
			OutDir:      batchOut,
			Format:      format,
			Concurrency: batchConcurrency,
			Client:      newRenderClient(cfg),
			Reporter:    progress.NewReporter(),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, o := range res.Outputs {
			fmt.Fprintf(out, "  %s -> %s\n", o.Source, o.Path)
		}
		for _, f := range res.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "  FAILED %s\n", f.Error())
		}
		fmt.Fprintf(out, "Rendered %d diagrams", len(res.Outputs))
		if len(res.Failures) > 0 {
			fmt.Fprintf(out, ", %d failed\n", len(res.Failures))
			return fmt.Errorf("%d diagrams failed to render", len(res.Failures))
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringSliceVar(&batchPatterns, "pattern", nil, "include glob patterns (default from config)")
	batchCmd.Flags().StringSliceVar(&batchExcludes, "exclude", nil, "exclude glob patterns (default from config)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "output directory (default: next to each source)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "", "output format (svg, png, txt; default from config)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel requests (default from config)")
	rootCmd.AddCommand(batchCmd)
}
