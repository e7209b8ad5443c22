package config

import (
	"fmt"
	"os"

	"PcapDelta/internal/engine/filter"

	"gopkg.in/yaml.v3"
)

// CorrelatorConfig holds the settings of the correlation engine itself.
type CorrelatorConfig struct {
	// Filter lists byte constraints applied to raw frames before parsing.
	Filter []filter.Constraint `yaml:"filter"`
	// PrintSamples controls per-packet console output. The final summary is
	// printed regardless.
	PrintSamples bool `yaml:"print_samples"`
}

// ClickHouseConfig holds the connection settings for the ClickHouse sink.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Run labels the rows written for this invocation, so several runs can
	// share the tables.
	Run string `yaml:"run"`
}

// NATSConfig holds the settings for the NATS sink.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// SinksConfig groups the optional result sinks.
type SinksConfig struct {
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Correlator CorrelatorConfig `yaml:"correlator"`
	Sinks      SinksConfig      `yaml:"sinks"`
}

// Default returns the configuration used when no config file is given:
// no filter, per-packet printing on, no optional sinks.
func Default() *Config {
	return &Config{
		Correlator: CorrelatorConfig{PrintSamples: true},
	}
}

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return cfg, nil
}
