package config

import (
	"path/filepath"
	"time"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
)

// DefaultIncludes are the glob patterns batch rendering picks up by default.
var DefaultIncludes = []string{
	"**/*.puml",
	"**/*.plantuml",
	"**/*.md",
}

// DefaultExcludes are glob patterns excluded from batch rendering by default.
var DefaultExcludes = []string{
	"vendor/**",
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server:                plantuml.DefaultServer,
		Format:                string(plantuml.FormatSVG),
		DebounceMS:            500,
		RequestTimeoutSeconds: 30,
		DataDir:               ".umlwidget",
		Host: HostConfig{
			Port:            8765,
			AllowAllOrigins: false,
		},
		Batch: BatchConfig{
			Include:        append([]string(nil), DefaultIncludes...),
			Exclude:        append([]string(nil), DefaultExcludes...),
			OutDir:         "",
			MaxConcurrency: 4,
		},
	}
}

// Debounce returns the preview debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// RequestTimeout returns the per-request timeout for the rendering service.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// DatabasePath returns the location of the node store inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "widget.db")
}
