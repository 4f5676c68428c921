package config

// Config is the top-level umlwidget configuration, corresponding to .umlwidget.yml.
type Config struct {
	Server                string      `yaml:"server" koanf:"server"`
	Format                string      `yaml:"format" koanf:"format"`
	DebounceMS            int         `yaml:"debounce_ms" koanf:"debounce_ms"`
	RequestTimeoutSeconds int         `yaml:"request_timeout_seconds" koanf:"request_timeout_seconds"`
	DataDir               string      `yaml:"data_dir" koanf:"data_dir"`
	Host                  HostConfig  `yaml:"host" koanf:"host"`
	Batch                 BatchConfig `yaml:"batch" koanf:"batch"`
}

// HostConfig holds settings for the HTTP editor host.
type HostConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// BatchConfig holds settings for rendering diagram files in bulk.
type BatchConfig struct {
	Include        []string `yaml:"include" koanf:"include"`
	Exclude        []string `yaml:"exclude" koanf:"exclude"`
	OutDir         string   `yaml:"out_dir" koanf:"out_dir"`
	MaxConcurrency int      `yaml:"max_concurrency" koanf:"max_concurrency"`
}
