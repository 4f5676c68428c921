package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
)

var urlFormat string

var encodeCmd = &cobra.Command{
	Use:   "encode [file|-]",
	Short: "Encode PlantUML source into a URL token",
	Long:  `Compresses PlantUML source and prints the token used in PlantUML server URLs. Reads stdin when no file is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		token, err := plantuml.Encode(text)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode <token|url>",
	Short: "Decode a URL token back into PlantUML source",
	Long:  `Decodes a PlantUML server token. A full rendering URL is accepted too; its last path segment is decoded.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := args[0]
		if i := strings.LastIndex(token, "/"); i >= 0 {
			token = token[i+1:]
		}
		text, err := plantuml.Decode(token)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var urlCmd = &cobra.Command{
	Use:   "url [file|-]",
	Short: "Print the rendering URL for PlantUML source",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		format, err := plantuml.ParseFormat(urlFormat)
		if err != nil {
			return err
		}
		text, err := readSource(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		url, err := plantuml.FormatURL(text, cfg.Server, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

func init() {
	urlCmd.Flags().StringVar(&urlFormat, "format", "svg", "output format (svg, png, txt)")
	rootCmd.AddCommand(encodeCmd, decodeCmd, urlCmd)
}
