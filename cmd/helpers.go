package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/corbenferris/figjam-plantuml/internal/config"
	"github.com/corbenferris/figjam-plantuml/internal/db"
	"github.com/corbenferris/figjam-plantuml/internal/render"
	"github.com/corbenferris/figjam-plantuml/internal/store"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `umlwidget init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger writes human-readable structured logs to w. Stdout stays free
// for command output and the MCP protocol.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newRenderClient(cfg *config.Config) *render.Client {
	return render.NewClient(cfg.Server, cfg.RequestTimeout())
}

// openStore opens the node database under the configured data directory.
// The caller closes the returned DB.
func openStore(cfg *config.Config) (*db.DB, *store.Store, error) {
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return database, store.New(database), nil
}

// readSource reads diagram source from the file named by args[0], or from
// in when no file or "-" is given.
func readSource(in io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

// writeOutput writes data to path, or to out when path is empty or "-".
func writeOutput(out io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
