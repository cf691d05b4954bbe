package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultAPIURL = "http://localhost:8000"

	// Dwell times for the status label pacing queue. Reference-data
	// imports pace slower than the device matching stream.
	DefaultImportDwell   = 2000 * time.Millisecond
	DefaultMatchingDwell = 1000 * time.Millisecond
)

// Config holds the console settings, merged from
// ~/.vulnconsole/config.yaml and the environment.
type Config struct {
	APIURL            string        `yaml:"api_url"`
	ImportDwellMs     int           `yaml:"import_dwell_ms"`
	MatchingDwellMs   int           `yaml:"matching_dwell_ms"`
	StreamIdleSeconds int           `yaml:"stream_idle_seconds"`
	LogLevel          string        `yaml:"log_level"`
	StreamIdleTimeout time.Duration `yaml:"-"`
}

// HomeDir returns the console state directory, creating it if needed.
func HomeDir() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	home := filepath.Join(dir, ".vulnconsole")
	if _, err := os.Stat(home); os.IsNotExist(err) {
		if err := os.MkdirAll(home, 0o755); err != nil {
			return "", err
		}
	}

	return home, nil
}

// Load reads the yaml configuration and applies environment overrides.
// A missing config file or .env is not an error.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:   defaultAPIURL,
		LogLevel: "info",
	}

	if home, err := HomeDir(); err == nil {
		data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				logrus.Warnf("ignoring malformed config.yaml: %v", err)
			}
		}
	}

	if url := os.Getenv("VULNCONSOLE_API_URL"); url != "" {
		cfg.APIURL = url
	}
	if lvl := os.Getenv("VULNCONSOLE_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}

	if cfg.StreamIdleSeconds > 0 {
		cfg.StreamIdleTimeout = time.Duration(cfg.StreamIdleSeconds) * time.Second
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	return cfg
}

// ImportDwell returns the pacing interval for reference-data imports.
func (c *Config) ImportDwell() time.Duration {
	if c.ImportDwellMs > 0 {
		return time.Duration(c.ImportDwellMs) * time.Millisecond
	}
	return DefaultImportDwell
}

// MatchingDwell returns the pacing interval for device matching.
func (c *Config) MatchingDwell() time.Duration {
	if c.MatchingDwellMs > 0 {
		return time.Duration(c.MatchingDwellMs) * time.Millisecond
	}
	return DefaultMatchingDwell
}
