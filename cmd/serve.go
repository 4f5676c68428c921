package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corbenferris/figjam-plantuml/internal/events"
	"github.com/corbenferris/figjam-plantuml/internal/host"
	"github.com/corbenferris/figjam-plantuml/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the diagram editor host",
	Long:  `Serves diagram nodes over HTTP: a browser editor at /nodes/{id}/edit with a live preview, a websocket event channel, and a JSON API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("port") {
			servePort = cfg.Host.Port
		}

		database, nodes, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		logger := slog.Default()
		srv := host.New(host.Config{
			Port:         servePort,
			AllowAll:     cfg.Host.AllowAllOrigins,
			RenderServer: cfg.Server,
			Debounce:     cfg.Debounce(),
		}, nodes, store.NewCachedFetcher(database, newRenderClient(cfg), logger), logger)

		srv.Events().On(events.UpdateUML, func(ev events.Event) {
			logger.Info("diagram committed", "bytes", len(ev.Payload))
		})

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "umlwidget %s starting on port %d\n", Version, servePort)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", database.Path())
		fmt.Fprintf(os.Stderr, "  Renderer: %s\n", cfg.Server)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8765, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}
