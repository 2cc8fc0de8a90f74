// Package config loads the encoder configuration from YAML.
//
// The same document travels to the Follower process through its environment,
// so both roles agree on pacing and timeouts without further plumbing.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ModeProcess runs the Follower as a separate process woken by signals.
	ModeProcess = "process"
	// ModeThread runs the Follower as a goroutine woken over channels.
	ModeThread = "thread"
)

const defaultConfigYAML = `# twincoder configuration
mode: process

log:
  level: info   # debug, info, warn, error
  format: text  # text, json

# Minimum delay between the starts of two phases of the same role. 0 disables pacing.
pace: 0s

# Upper bound for waiting on the other role. 0 waits forever.
phase_timeout: 0s

archive:
  format: none  # none, zstd, lz4
  rate: 0       # bytes per second, 0 is unlimited
`

// Duration is a time.Duration written as a Go duration string ("1.5s").
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// LogConfig selects the log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ArchiveConfig configures the compressed sidecar.
type ArchiveConfig struct {
	Format string `yaml:"format"`
	Rate   int64  `yaml:"rate"`
}

// Config is the encoder configuration.
type Config struct {
	Mode         string        `yaml:"mode"`
	Log          LogConfig     `yaml:"log"`
	Pace         Duration      `yaml:"pace"`
	PhaseTimeout Duration      `yaml:"phase_timeout"`
	Archive      ArchiveConfig `yaml:"archive"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Mode) == "" {
		c.Mode = ModeProcess
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "info"
	}
	if strings.TrimSpace(c.Log.Format) == "" {
		c.Log.Format = "text"
	}
	if strings.TrimSpace(c.Archive.Format) == "" {
		c.Archive.Format = "none"
	}
}

func (c *Config) normalize() {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Archive.Format = strings.ToLower(strings.TrimSpace(c.Archive.Format))
}

// DefaultYAML returns the commented default configuration document.
func DefaultYAML() string {
	return defaultConfigYAML
}

// Load reads the YAML file at path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document, fills unset keys with defaults and
// validates the result.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	cfg.applyDefaults()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeProcess, ModeThread:
	default:
		errs = append(errs, fmt.Errorf("mode %q: want %s or %s", c.Mode, ModeProcess, ModeThread))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	switch c.Archive.Format {
	case "none", "zstd", "lz4":
	default:
		errs = append(errs, fmt.Errorf("archive.format %q: want none, zstd or lz4", c.Archive.Format))
	}
	if c.Pace < 0 {
		errs = append(errs, errors.New("pace must not be negative"))
	}
	if c.PhaseTimeout < 0 {
		errs = append(errs, errors.New("phase_timeout must not be negative"))
	}
	if c.Archive.Rate < 0 {
		errs = append(errs, errors.New("archive.rate must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
