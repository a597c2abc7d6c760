// Package config loads and validates the dirpost run configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the immutable run configuration assembled from defaults,
// an optional TOML file, and CLI flags, in that precedence order.
type Config struct {
	Directory  string
	Host       string
	Port       int
	Reverse    bool
	LogLevel   string
	NoProgress bool
}

func Default() Config {
	return Config{
		Directory: ".",
		Port:      5555,
		LogLevel:  "info",
	}
}

type fileConfig struct {
	Directory  string `toml:"directory"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Reverse    bool   `toml:"reverse"`
	LogLevel   string `toml:"log_level"`
	NoProgress bool   `toml:"no_progress"`
}

// Load merges the keys defined in a TOML file onto base. Keys absent
// from the file keep their base values.
func Load(path string, base Config) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	cfg := base
	if meta.IsDefined("directory") {
		cfg.Directory = strings.TrimSpace(raw.Directory)
	}
	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("reverse") {
		cfg.Reverse = raw.Reverse
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("no_progress") {
		cfg.NoProgress = raw.NoProgress
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Directory) == "" {
		return fmt.Errorf("config missing directory")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config port out of range: %d", c.Port)
	}
	return nil
}
