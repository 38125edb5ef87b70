package resock

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with human-readable durations ("1s", "500ms").
// Pointer fields distinguish "omitted" from zero so defaults apply.
type fileConfig struct {
	AutomaticOpen        *bool    `yaml:"automatic_open"`
	ReconnectInterval    string   `yaml:"reconnect_interval"`
	MaxReconnectInterval string   `yaml:"max_reconnect_interval"`
	ReconnectDecay       *float64 `yaml:"reconnect_decay"`
	TimeoutInterval      string   `yaml:"timeout_interval"`
	MaxReconnectAttempts int      `yaml:"max_reconnect_attempts"`
	Debug                bool     `yaml:"debug"`
}

// LoadConfig reads a YAML config file, expands ${VAR} environment variables,
// applies defaults for omitted fields, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	cfg := DefaultConfig()
	if fc.AutomaticOpen != nil {
		cfg.AutomaticOpen = *fc.AutomaticOpen
	}
	if fc.ReconnectDecay != nil {
		cfg.ReconnectDecay = *fc.ReconnectDecay
	}
	cfg.MaxReconnectAttempts = fc.MaxReconnectAttempts
	cfg.Debug = fc.Debug

	if err := setDuration(&cfg.ReconnectInterval, fc.ReconnectInterval, "reconnect_interval"); err != nil {
		return nil, err
	}
	if err := setDuration(&cfg.MaxReconnectInterval, fc.MaxReconnectInterval, "max_reconnect_interval"); err != nil {
		return nil, err
	}
	if err := setDuration(&cfg.TimeoutInterval, fc.TimeoutInterval, "timeout_interval"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func setDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", field, err)
	}
	*dst = d
	return nil
}
