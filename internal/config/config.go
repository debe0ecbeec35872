package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the daemonless CLI looks for configuration
const DefaultPath = "/etc/shredsafe/config.yaml"

type ShredCfg struct {
	Iterations int  `yaml:"iterations" json:"iterations"`   // Zero+random passes per file (default: 3)
	SafeMode   bool `yaml:"safe_mode" json:"safe_mode"`     // Force one-byte blocks regardless of memory
	Recursive  bool `yaml:"recursive" json:"recursive"`     // Permit descending into directories
	Remove     bool `yaml:"remove" json:"remove"`           // Unlink files after a successful shred
	Verbose    bool `yaml:"verbose" json:"verbose"`         // Progress and diagnostic messages
}

type SafetyCfg struct {
	AllowedRoots   []string `yaml:"allowed_roots" json:"allowed_roots"`     // Empty means any non-protected path
	ProtectedPaths []string `yaml:"protected_paths" json:"protected_paths"` // Extra paths the validator must refuse
}

type ThrottleCfg struct {
	MaxSpeedMBps float64 `yaml:"max_speed_mbps" json:"max_speed_mbps"` // 0 disables throttling
}

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"` // 0 disables the metrics server
}

type LoggingCfg struct {
	Dir          string `yaml:"dir" json:"dir"`
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type DatabaseCfg struct {
	Path string `yaml:"path" json:"path"` // SQLite shred history; empty disables auditing
}

type Config struct {
	Shred      ShredCfg      `yaml:"shred" json:"shred"`
	Safety     SafetyCfg     `yaml:"safety" json:"safety"`
	Throttle   ThrottleCfg   `yaml:"throttle" json:"throttle"`
	Prometheus PrometheusCfg `yaml:"prometheus" json:"prometheus"`
	Logging    LoggingCfg    `yaml:"logging" json:"logging"`
	Database   DatabaseCfg   `yaml:"database" json:"database"`
}

var (
	errBadIterations = errors.New("shred.iterations must be between 1 and 64")
	errBadSpeed      = errors.New("throttle.max_speed_mbps must be between 0 and 1000")
	errBadPort       = errors.New("prometheus.port must be between 0 and 65535")
	errBadRotation   = errors.New("logging.rotation_days cannot be negative")
	errBadRoot       = errors.New("safety roots and protected paths must be absolute")
)

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist. A present-but-invalid file is an error, never a
// silent fallback.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Shred.Iterations == 0 {
		c.Shred.Iterations = 3
	}
	if c.Logging.RotationDays == 0 {
		c.Logging.RotationDays = 30
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "/var/log/shredsafe"
	}
}

func (c *Config) validateAndDefault() error {
	c.applyDefaults()

	if c.Shred.Iterations < 1 || c.Shred.Iterations > 64 {
		return fmt.Errorf("%w, got %d", errBadIterations, c.Shred.Iterations)
	}
	if c.Throttle.MaxSpeedMBps < 0 || c.Throttle.MaxSpeedMBps > 1000 {
		return fmt.Errorf("%w, got %g", errBadSpeed, c.Throttle.MaxSpeedMBps)
	}
	if c.Prometheus.Port < 0 || c.Prometheus.Port > 65535 {
		return fmt.Errorf("%w, got %d", errBadPort, c.Prometheus.Port)
	}
	if c.Logging.RotationDays < 0 {
		return fmt.Errorf("%w, got %d", errBadRotation, c.Logging.RotationDays)
	}

	for _, p := range append(append([]string{}, c.Safety.AllowedRoots...), c.Safety.ProtectedPaths...) {
		if p == "" || !filepath.IsAbs(p) {
			return fmt.Errorf("%w: %q", errBadRoot, p)
		}
	}

	return nil
}
