// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package config

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrInvalidPort    = errors.New("server port must be between 1 and 65535")
	ErrMissingCatalog = errors.New("catalog path is required")
	ErrMissingDBPath  = errors.New("database path is required unless in-memory mode is enabled")
)

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Server.Port)
	}

	if c.Catalog.Path == "" {
		return ErrMissingCatalog
	}

	if c.Database.Path == "" && !c.Database.InMemory {
		return ErrMissingDBPath
	}

	if c.Database.GCDiscardRatio <= 0 || c.Database.GCDiscardRatio >= 1 {
		return fmt.Errorf("database gc_discard_ratio must be in (0,1), got %g", c.Database.GCDiscardRatio)
	}

	if c.Origin.Timeout <= 0 {
		return errors.New("origin timeout must be positive")
	}

	if c.API.DefaultPageSize < 1 {
		return errors.New("api default_page_size must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api max_page_size (%d) must be >= default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return errors.New("security rate_limit_reqs must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return errors.New("security rate_limit_window must be positive")
		}
	}

	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("server environment must be development or production, got %q", c.Server.Environment)
	}

	return nil
}
