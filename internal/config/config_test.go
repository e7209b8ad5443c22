package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
correlator:
  filter:
    - offset: 23
      value: 6
  print_samples: false
sinks:
  clickhouse:
    enabled: true
    host: "ch.example.com"
    port: 9000
    database: "metrics"
  nats:
    enabled: true
    nats_url: "nats://broker:4222"
    subject: "latency.samples"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if len(cfg.Correlator.Filter) != 1 {
		t.Fatalf("Expected 1 filter constraint, got %d", len(cfg.Correlator.Filter))
	}
	if c := cfg.Correlator.Filter[0]; c.Offset != 23 || c.Value != 6 {
		t.Errorf("Filter constraint = %+v, want {Offset:23 Value:6}", c)
	}
	if cfg.Correlator.PrintSamples {
		t.Error("print_samples: false should be honored")
	}
	if !cfg.Sinks.ClickHouse.Enabled || cfg.Sinks.ClickHouse.Host != "ch.example.com" {
		t.Errorf("ClickHouse config not loaded: %+v", cfg.Sinks.ClickHouse)
	}
	if !cfg.Sinks.NATS.Enabled || cfg.Sinks.NATS.URL != "nats://broker:4222" {
		t.Errorf("NATS config not loaded: %+v", cfg.Sinks.NATS)
	}
}

func TestLoadConfig_DefaultsApply(t *testing.T) {
	// print_samples is on by default and stays on when the file omits it.
	path := writeConfig(t, `
correlator:
  filter: []
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Correlator.PrintSamples {
		t.Error("PrintSamples should default to true when omitted")
	}
	if cfg.Sinks.ClickHouse.Enabled || cfg.Sinks.NATS.Enabled {
		t.Error("Optional sinks should be disabled by default")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadConfig should fail on a missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "correlator: [not: a: mapping")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig should fail on malformed YAML")
	}
}
