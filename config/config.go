// Package config loads the server configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the whole server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Compliance ComplianceConfig `yaml:"compliance"`
	Sweep      SweepConfig      `yaml:"sweep"`
}

// ServerConfig is the HTTP listener.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig is the SQLite store.
type DatabaseConfig struct {
	// Path of the database file; ":memory:" for an in-memory database.
	Path string `yaml:"path"`
}

// ComplianceConfig selects the labor-law rule set. RulesFile wins over Preset.
type ComplianceConfig struct {
	Preset    string `yaml:"preset"`
	RulesFile string `yaml:"rules_file"`
	// Workers bounds the per-employee fan-out of a sweep; 0 = unbounded.
	Workers int `yaml:"workers"`
}

// SweepConfig is the periodic compliance sweep.
type SweepConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"-"`
	IntervalRaw string        `yaml:"interval"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Sweep.Enabled = true
	_ = cfg.validateAndNormalize()
	return cfg
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port out of range: %d", c.Server.Port)
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	if c.Database.Path == "" {
		c.Database.Path = "roster.db"
	}

	if c.Compliance.Preset == "" && c.Compliance.RulesFile == "" {
		c.Compliance.Preset = "fr-labor-code"
	}
	if c.Compliance.Workers < 0 {
		return fmt.Errorf("config: compliance.workers must not be negative")
	}

	interval, err := parseDurationAllowEmpty(c.Sweep.IntervalRaw)
	if err != nil {
		return fmt.Errorf("config: sweep.interval: %w", err)
	}
	if interval == 0 {
		interval = time.Hour
	}
	c.Sweep.Interval = interval

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", raw)
	}
	return d, nil
}

// RulesDocument returns the contents of the configured rules file, or ""
// when a preset is used.
func (c ComplianceConfig) RulesDocument() (string, error) {
	if c.RulesFile == "" {
		return "", nil
	}
	b, err := os.ReadFile(c.RulesFile)
	if err != nil {
		return "", fmt.Errorf("config: read rules file %s: %w", c.RulesFile, err)
	}
	return string(b), nil
}
