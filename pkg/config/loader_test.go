package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lgpang/smash/internal/scatter"
	"github.com/lgpang/smash/internal/xsection"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("../../config/config.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected log_level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.CollisionTerm.ElasticCrossSection != -1 {
		t.Errorf("Expected parametrized elastic cross section, got %f", cfg.CollisionTerm.ElasticCrossSection)
	}
	if cfg.Server.GRPCAddr != ":9090" || cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("Unexpected server addresses %+v", cfg.Server)
	}
	if cfg.Batch == nil {
		t.Fatal("Batch should not be nil")
	}
	if cfg.Batch.Projectile != "p" || cfg.Batch.SqrtS != 2.3 || cfg.Batch.Events != 1000 {
		t.Errorf("Unexpected batch %+v", cfg.Batch)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoadConfigFromTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "log_level: debug\nseed: 42\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Seed != 42 {
		t.Errorf("Unexpected config %+v", cfg)
	}
}

func TestScatterOptions(t *testing.T) {
	ct := Default().CollisionTerm
	ct.Included2to2 = []string{"elastic", "nn_to_nr"}
	ct.NNbarTreatment = "resonances"
	ct.ElasticCrossSection = 12

	opts, err := ct.ScatterOptions()
	if err != nil {
		t.Fatalf("ScatterOptions: %v", err)
	}
	if !opts.Included.Has(xsection.ReactionElastic) || !opts.Included.Has(xsection.ReactionNNToNR) {
		t.Errorf("Expected elastic and nn_to_nr, got %s", opts.Included)
	}
	if opts.Included.Has(xsection.ReactionNNToDR) {
		t.Errorf("nn_to_dr should not be included")
	}
	if opts.NNbar != scatter.NNbarResonances {
		t.Errorf("Expected resonances treatment, got %s", opts.NNbar)
	}
	if opts.ElasticParameter != 12 || !opts.TwoToOne || !opts.Strings || opts.LowSNNCut != 1.98 {
		t.Errorf("Unexpected options %+v", opts)
	}
}

func TestDefaultScatterOptionsMatchEngineDefaults(t *testing.T) {
	opts, err := Default().CollisionTerm.ScatterOptions()
	if err != nil {
		t.Fatalf("ScatterOptions: %v", err)
	}
	if opts != scatter.DefaultOptions() {
		t.Errorf("Expected %+v, got %+v", scatter.DefaultOptions(), opts)
	}
}
