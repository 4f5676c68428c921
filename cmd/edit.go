package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corbenferris/figjam-plantuml/internal/session"
	"github.com/corbenferris/figjam-plantuml/internal/store"
	"github.com/corbenferris/figjam-plantuml/internal/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit [node-id]",
	Short: "Edit a diagram node in the terminal",
	Long:  `Opens a terminal editor for the node with a live preview URL. Without an id a new node holding the default diagram is created.`,
	Args:  cobra.MaximumNArgs(1),
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

		ctx := cmd.Context()
		var node *store.Node
		if len(args) == 1 {
			node, err = nodes.Get(ctx, args[0])
		} else {
			node, err = nodes.Create(ctx, session.DefaultState(cfg.Server))
		}
		if err != nil {
			return err
		}

		// The alternate screen owns the terminal, so logs go to a file.
		logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "edit.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening edit log: %w", err)
		}
		defer logFile.Close()
		logger := newLogger(logFile, verbose).With("node", node.ID)

		m := tui.New(tui.Options{
			Title:    "PlantUML · " + node.ID,
			Server:   cfg.Server,
			Initial:  node.State,
			Fetcher:  store.NewCachedFetcher(database, newRenderClient(cfg), logger),
			Debounce: cfg.Debounce(),
			Logger:   logger,
			Commit: func(ctx context.Context, state session.State) error {
				return nodes.Put(ctx, node.ID, state)
			},
		})
		if err := tui.Run(m); err != nil {
			return err
		}

		switch {
		case m.Committed():
			fmt.Fprintf(cmd.OutOrStdout(), "Updated node %s\n", node.ID)
		case m.Cancelled():
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
