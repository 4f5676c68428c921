package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to umlwidget! Let's configure your diagrams.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Rendering server.
	serverPrompt := promptui.Prompt{
		Label:   "PlantUML rendering server",
		Default: plantuml.DefaultServer,
		Validate: func(s string) error {
			probe := DefaultConfig()
			probe.Server = strings.TrimSpace(s)
			return probe.Validate()
		},
	}
	server, err := serverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	cfg.Server = strings.TrimRight(strings.TrimSpace(server), "/")

	// 2. Output format for batch rendering.
	formatPrompt := promptui.Select{
		Label: "Output format for batch rendering",
		Items: []string{
			"svg — scalable, embeddable in documents",
			"png — raster image",
			"txt — ASCII art",
		},
	}
	formatIdx, _, err := formatPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("format selection: %w", err)
	}
	formats := []plantuml.Format{plantuml.FormatSVG, plantuml.FormatPNG, plantuml.FormatTXT}
	cfg.Format = string(formats[formatIdx])

	// 3. Editor host port.
	portPrompt := promptui.Prompt{
		Label:   "Editor host port",
		Default: strconv.Itoa(cfg.Host.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("port must be between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Host.Port, _ = strconv.Atoi(portStr)

	// 4. Include patterns.
	includePrompt := promptui.Prompt{
		Label:   "Batch include patterns (comma-separated globs)",
		Default: strings.Join(DefaultIncludes, ","),
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	cfg.Batch.Include = splitAndTrim(includeStr)

	// 5. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Batch.Exclude = append(append([]string{}, DefaultExcludes...), splitAndTrim(excludeStr)...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace,
// dropping empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
