// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package api

import (
	"time"

	"github.com/flowmart/flowmart/internal/catalog"
	"github.com/flowmart/flowmart/internal/config"
	"github.com/flowmart/flowmart/internal/origin"
	"github.com/flowmart/flowmart/internal/store"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	store     *store.Store
	origin    *origin.Client
	startTime time.Time
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(cfg *config.Config, cat *catalog.Catalog, st *store.Store, org *origin.Client) *Handler {
	return &Handler{
		cfg:       cfg,
		catalog:   cat,
		store:     st,
		origin:    org,
		startTime: time.Now(),
	}
}
