package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	WorkerCount int `env:"AXIS_TEST_WORKER_COUNT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.WorkerCount != 123 {
		t.Fatalf("expected default worker count 123, got %d", cfg.WorkerCount)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("AXIS_TEST_WORKER_COUNT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
