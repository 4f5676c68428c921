package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corbenferris/figjam-plantuml/internal/db"
	"github.com/corbenferris/figjam-plantuml/internal/render"
)

// CachedFetcher serves rendered markup from the render_cache table and only
// asks the wrapped fetcher on a miss. A rendering URL fully determines its
// output, so entries never expire. Failed fetches are not cached.
type CachedFetcher struct {
	db     *db.DB
	next   render.Fetcher
	logger *slog.Logger
}

// NewCachedFetcher wraps next with a cache stored in d.
func NewCachedFetcher(d *db.DB, next render.Fetcher, logger *slog.Logger) *CachedFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedFetcher{db: d, next: next, logger: logger}
}

// Fetch implements render.Fetcher.
func (c *CachedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body string
	err := c.db.QueryRowContext(ctx, `SELECT body FROM render_cache WHERE url = ?`, url).Scan(&body)
	switch {
	case err == nil:
		c.logger.Debug("render cache hit", "url", url)
		return body, nil
	case !errors.Is(err, sql.ErrNoRows):
		c.logger.Warn("render cache lookup failed", "error", err)
	}

	body, err = c.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO render_cache (url, body) VALUES (?, ?)`, url, body,
	); err != nil {
		c.logger.Warn("render cache write failed", "error", err)
	}
	return body, nil
}

// Purge empties the cache and reports how many entries were dropped.
func (c *CachedFetcher) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM render_cache`)
	if err != nil {
		return 0, fmt.Errorf("purging render cache: %w", err)
	}
	return res.RowsAffected()
}
