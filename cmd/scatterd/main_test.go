package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.GRPCAddr != ":9090" || cfg.LogLevel != "info" {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigInline(t *testing.T) {
	cfg, err := loadConfig("", "log_level: debug\nseed: 9\n")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Seed != 9 {
		t.Errorf("Expected inline values, got log_level=%s seed=%d", cfg.LogLevel, cfg.Seed)
	}

	if _, err := loadConfig("", "log_level: loud\n"); err == nil {
		t.Error("Expected invalid inline config to fail")
	}
}

func TestLoadConfigFileWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scatterd.yaml")
	if err := os.WriteFile(path, []byte("seed: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, "seed: 9\n")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Seed != 3 {
		t.Errorf("Expected seed from file, got %d", cfg.Seed)
	}
}
