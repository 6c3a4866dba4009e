// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8642 {
		t.Errorf("expected default port 8642, got %d", cfg.Server.Port)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("expected default environment development, got %s", cfg.Server.Environment)
	}
	if cfg.API.DefaultPageSize != 20 {
		t.Errorf("expected default page size 20, got %d", cfg.API.DefaultPageSize)
	}
	if cfg.Database.GCDiscardRatio != 0.5 {
		t.Errorf("expected default gc discard ratio 0.5, got %g", cfg.Database.GCDiscardRatio)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CATALOG_PATH", "/tmp/products.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("expected env-overridden port 9001, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env-overridden log level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Catalog.Path != "/tmp/products.json" {
		t.Errorf("expected env-overridden catalog path, got %s", cfg.Catalog.Path)
	}
}

func TestLoad_UnmappedEnvIgnored(t *testing.T) {
	t.Setenv("SOME_RANDOM_VARIABLE", "value")

	if _, err := Load(); err != nil {
		t.Fatalf("Load() failed with unmapped env var: %v", err)
	}
}

func TestLoad_CORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(cfg.Security.CORSOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %v", cfg.Security.CORSOrigins)
	}
	if cfg.Security.CORSOrigins[0] != "https://a.example" {
		t.Errorf("expected trimmed origin, got %q", cfg.Security.CORSOrigins[0])
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7777\nlogging:\n  level: warn\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("expected file-configured port 7777, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected file-configured log level warn, got %s", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing catalog", func(c *Config) { c.Catalog.Path = "" }, true},
		{"missing db path", func(c *Config) { c.Database.Path = "" }, true},
		{"in-memory db needs no path", func(c *Config) {
			c.Database.Path = ""
			c.Database.InMemory = true
		}, false},
		{"bad gc ratio", func(c *Config) { c.Database.GCDiscardRatio = 1.5 }, true},
		{"zero origin timeout", func(c *Config) { c.Origin.Timeout = 0 }, true},
		{"max page below default", func(c *Config) { c.API.MaxPageSize = 5 }, true},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, true},
		{"rate limit disabled skips check", func(c *Config) {
			c.Security.RateLimitReqs = 0
			c.Security.RateLimitDisabled = true
		}, false},
		{"zero rate window", func(c *Config) { c.Security.RateLimitWindow = 0 * time.Second }, true},
		{"bad environment", func(c *Config) { c.Server.Environment = "staging" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
