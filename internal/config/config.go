package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "UMLWIDGET_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (UMLWIDGET_*). Nested keys use a double
// underscore: UMLWIDGET_HOST__PORT sets host.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps UMLWIDGET_HOST__PORT to host.port.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server is required")
	}
	u, err := url.Parse(c.Server)
	if err != nil {
		return fmt.Errorf("invalid server %q: %w", c.Server, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server %q: scheme must be http or https", c.Server)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server %q: missing host", c.Server)
	}

	if _, err := plantuml.ParseFormat(c.Format); err != nil {
		return err
	}

	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms must be non-negative")
	}

	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Host.Port < 0 || c.Host.Port > 65535 {
		return fmt.Errorf("host.port %d out of range", c.Host.Port)
	}

	if c.Batch.MaxConcurrency < 0 {
		return fmt.Errorf("batch.max_concurrency must be non-negative")
	}

	return nil
}
