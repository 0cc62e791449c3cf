package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const ServeConfigFile = "devserve.yaml"

// ServeConfig contains the tunable server parameters.
// These can be overridden via devserve.yaml in the working directory.
type ServeConfig struct {
	ShutdownTimeout  time.Duration `yaml:"shutdownTimeout"`  // Graceful shutdown budget (default: 5s)
	DebounceDuration time.Duration `yaml:"debounceDuration"` // File watcher debounce (default: 300ms)

	LiveReload bool   `yaml:"liveReload"` // Serve /_devserve/events and watch the root (default: true)
	Gzip       bool   `yaml:"gzip"`       // Compress responses for gzip-capable clients (default: true)
	LogLevel   string `yaml:"logLevel"`   // debug, info, warn or error (default: info)
}

// DefaultServeConfig returns the default tunables
func DefaultServeConfig() *ServeConfig {
	return &ServeConfig{
		ShutdownTimeout:  5 * time.Second,
		DebounceDuration: 300 * time.Millisecond,
		LiveReload:       true,
		Gzip:             true,
		LogLevel:         "info",
	}
}

// LoadServeConfig loads tunables from devserve.yaml.
// Returns defaults if the file doesn't exist or doesn't parse.
func LoadServeConfig() *ServeConfig {
	return LoadServeConfigFrom(ServeConfigFile)
}

func LoadServeConfigFrom(path string) *ServeConfig {
	cfg := DefaultServeConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultServeConfig()
	}

	cfg.validate()

	return cfg
}

// validate clamps values into usable bounds
func (c *ServeConfig) validate() {
	if c.ShutdownTimeout < 1*time.Second {
		c.ShutdownTimeout = 1 * time.Second
	}
	if c.ShutdownTimeout > 60*time.Second {
		c.ShutdownTimeout = 60 * time.Second
	}
	if c.DebounceDuration < 10*time.Millisecond {
		c.DebounceDuration = 10 * time.Millisecond
	}
	if c.DebounceDuration > 5*time.Second {
		c.DebounceDuration = 5 * time.Second
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
}
