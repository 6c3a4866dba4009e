// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

// Package config loads and validates Flowmart server configuration.
//
// Configuration is loaded via Koanf v2 with layered sources, highest
// priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml or CONFIG_PATH)
//  3. Environment variables
package config

import "time"

// Config is the root configuration for the Flowmart server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Database DatabaseConfig `koanf:"database"`
	Origin   OriginConfig   `koanf:"origin"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port is the listen port. Default: 8642
	Port int `koanf:"port"`

	// Timeout is the per-request read/write timeout for JSON endpoints.
	// Download streaming uses WriteTimeout of zero on its own route group,
	// so large transfers are not cut off.
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// CatalogConfig holds product catalog settings.
type CatalogConfig struct {
	// Path is the JSON catalog file holding products and categories.
	Path string `koanf:"path"`
}

// DatabaseConfig holds BadgerDB settings for the analytics/user store.
type DatabaseConfig struct {
	// Path is the BadgerDB directory.
	Path string `koanf:"path"`

	// InMemory runs Badger without disk persistence. Test/dev only.
	InMemory bool `koanf:"in_memory"`

	// GCInterval is how often the value-log garbage collector runs.
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCDiscardRatio is the Badger value-log GC discard ratio (0,1).
	GCDiscardRatio float64 `koanf:"gc_discard_ratio"`
}

// OriginConfig holds settings for fetching product payloads from the
// upstream object store.
type OriginConfig struct {
	// Timeout bounds a single origin fetch.
	Timeout time.Duration `koanf:"timeout"`

	// BreakerMaxFailures is the consecutive-failure count that trips the
	// circuit breaker.
	BreakerMaxFailures uint32 `koanf:"breaker_max_failures"`

	// BreakerOpenInterval is how long the breaker stays open before
	// probing the origin again.
	BreakerOpenInterval time.Duration `koanf:"breaker_open_interval"`
}

// APIConfig holds API behavior settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8642,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Catalog: CatalogConfig{
			Path: "/data/products.json",
		},
		Database: DatabaseConfig{
			Path:           "/data/flowmart",
			InMemory:       false,
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Origin: OriginConfig{
			Timeout:             2 * time.Minute,
			BreakerMaxFailures:  5,
			BreakerOpenInterval: 30 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
