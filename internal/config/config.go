package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration of the bletext CLI.
type Config struct {
	Logger LoggerConfig `yaml:"logger"`
	Output OutputConfig `yaml:"output"`
	Filter FilterConfig `yaml:"filter"`
}

// LoggerConfig controls diagnostic logging.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Output string `yaml:"output"` // stderr, stdout or a file path
}

// OutputConfig controls how formatted lines are written.
type OutputConfig struct {
	PeerPrefix bool `yaml:"peer_prefix"` // prefix lines with "<role> <ADDRESS>: "
	Strict     bool `yaml:"strict"`      // fail on the first invalid event instead of skipping it
	Redact     bool `yaml:"redact"`      // mask pairing keys (ltk, irk, passkey, ...)
}

// FilterConfig selects events by label prefix (e.g. GAP_EVT_ADV_REPORT).
// Exclude wins over include; an empty include list keeps everything.
type FilterConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Defaults returns a Config with every field set to its default.
func Defaults() *Config {
	return &Config{
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads a YAML config file. A missing file yields the defaults.
// Environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that apply further
// overrides (such as command-line flags) and validate afterwards.
func Read(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	ApplyEnvOverrides(cfg)
	return cfg, nil
}

// ApplyEnvOverrides applies BLETEXT_* environment variables to cfg.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BLETEXT_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("BLETEXT_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("BLETEXT_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("BLETEXT_OUTPUT_PEER_PREFIX"); v != "" {
		cfg.Output.PeerPrefix = isTrue(v)
	}
	if v := os.Getenv("BLETEXT_OUTPUT_STRICT"); v != "" {
		cfg.Output.Strict = isTrue(v)
	}
	if v := os.Getenv("BLETEXT_OUTPUT_REDACT"); v != "" {
		cfg.Output.Redact = isTrue(v)
	}
	if v := os.Getenv("BLETEXT_FILTER_INCLUDE"); v != "" {
		cfg.Filter.Include = SplitList(v)
	}
	if v := os.Getenv("BLETEXT_FILTER_EXCLUDE"); v != "" {
		cfg.Filter.Exclude = SplitList(v)
	}
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// SplitList splits a comma-separated list, dropping empty entries
func SplitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
