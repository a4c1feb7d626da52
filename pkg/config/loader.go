package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/lgpang/smash/internal/scatter"
	"github.com/lgpang/smash/internal/xsection"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ScatterOptions converts the collision term into channel options
func (c CollisionTerm) ScatterOptions() (scatter.Options, error) {
	included, err := xsection.ParseReactions(c.Included2to2)
	if err != nil {
		return scatter.Options{}, err
	}
	nnbar, err := scatter.ParseNNbarTreatment(c.NNbarTreatment)
	if err != nil {
		return scatter.Options{}, err
	}
	return scatter.Options{
		ElasticParameter: c.ElasticCrossSection,
		TwoToOne:         c.TwoToOne,
		Included:         included,
		LowSNNCut:        c.LowSNNCut,
		Strings:          c.Strings,
		NNbar:            nnbar,
	}, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if err := validateCollisionTerm(&cfg.CollisionTerm); err != nil {
		return fmt.Errorf("collision_term validation failed: %w", err)
	}

	if strings.TrimSpace(cfg.Server.GRPCAddr) == "" && strings.TrimSpace(cfg.Server.HTTPAddr) == "" {
		return fmt.Errorf("server: at least one of grpc_addr and http_addr must be set")
	}
	if cfg.Server.CallbackURL != "" {
		if err := validateCallbackURL(cfg.Server.CallbackURL); err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	if cfg.Batch != nil {
		if err := validateBatch(cfg.Batch); err != nil {
			return fmt.Errorf("batch validation failed: %w", err)
		}
	}

	return nil
}

// validateCollisionTerm validates the channel selection
func validateCollisionTerm(ct *CollisionTerm) error {
	if len(ct.Included2to2) > 0 {
		if _, err := xsection.ParseReactions(ct.Included2to2); err != nil {
			return fmt.Errorf("included_2to2: %w", err)
		}
	}
	if _, err := scatter.ParseNNbarTreatment(ct.NNbarTreatment); err != nil {
		return fmt.Errorf("nnbar_treatment: %w", err)
	}
	if ct.LowSNNCut < 0 {
		return fmt.Errorf("low_snn_cut cannot be negative, got %f", ct.LowSNNCut)
	}
	if ct.StringFormationTime < 0 {
		return fmt.Errorf("string_formation_time cannot be negative, got %f", ct.StringFormationTime)
	}
	if strings.EqualFold(strings.TrimSpace(ct.NNbarTreatment), "strings") && !ct.Strings {
		return fmt.Errorf("nnbar_treatment 'strings' requires strings to be enabled")
	}
	return nil
}

// validateCallbackURL accepts absolute http and https URLs
func validateCallbackURL(raw string) error {
	u, err := url.Parse(strings.ReplaceAll(raw, "{run_id}", "run"))
	if err != nil {
		return fmt.Errorf("invalid callback_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid callback_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("invalid callback_url: missing host")
	}
	return nil
}

// validateBatch validates a batch of collisions
func validateBatch(b *Batch) error {
	if strings.TrimSpace(b.Projectile) == "" {
		return fmt.Errorf("projectile cannot be empty")
	}
	if strings.TrimSpace(b.Target) == "" {
		return fmt.Errorf("target cannot be empty")
	}
	if b.SqrtS <= 0 {
		return fmt.Errorf("sqrt_s must be positive, got %f", b.SqrtS)
	}
	if b.Events <= 0 {
		return fmt.Errorf("events must be positive, got %d", b.Events)
	}
	validArrivals := map[string]bool{
		"":         true,
		"fixed":    true,
		"constant": true,
		"uniform":  true,
		"poisson":  true,
	}
	if !validArrivals[b.Arrival] {
		return fmt.Errorf("invalid arrival type: %s (must be fixed, constant, uniform, or poisson)", b.Arrival)
	}
	if b.Window < 0 {
		return fmt.Errorf("window cannot be negative, got %f", b.Window)
	}
	return nil
}
