package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/corbenferris/figjam-plantuml/internal/store"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Manage stored diagram nodes",
}

var nodesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List diagram nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, nodes, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		list, err := nodes.List(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUPDATED\tFIRST LINE")
		for _, n := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\n", n.ID, n.UpdatedAt.Local().Format("2006-01-02 15:04"), firstLine(n.State.Text))
		}
		return w.Flush()
	},
}

var nodesDeleteCmd = &cobra.Command{
	Use:   "delete <node-id>",
	Short: "Delete a diagram node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, nodes, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := nodes.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted node %s\n", args[0])
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge-cache",
	Short: "Drop every cached rendering",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, _, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		n, err := store.NewCachedFetcher(database, nil, nil).Purge(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dropped %d cached renderings\n", n)
		return nil
	},
}

// firstLine returns the first line of text that is not a @startuml marker.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "@startuml") {
			return line
		}
	}
	return ""
}

func init() {
	nodesCmd.AddCommand(nodesListCmd, nodesDeleteCmd, cachePurgeCmd)
	rootCmd.AddCommand(nodesCmd)
}
