// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package api

import (
	"net/http"
	"time"
)

// healthStatus is the payload of GET /api/v1/health.
type healthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	CatalogLoaded  bool    `json:"catalog_loaded"`
	CatalogSize    int     `json:"catalog_size"`
	StoreConnected bool    `json:"store_connected"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// Version is the server version reported by health endpoints.
const Version = "1.0.0"

// Health handles GET /api/v1/health with full dependency status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	catalogLoaded := h.catalog != nil && h.catalog.Len() > 0
	storeConnected := h.store != nil

	status := "healthy"
	if !catalogLoaded || !storeConnected {
		status = "degraded"
	}

	NewResponseWriter(w, r).Success(healthStatus{
		Status:         status,
		Version:        Version,
		CatalogLoaded:  catalogLoaded,
		CatalogSize:    h.catalog.Len(),
		StoreConnected: storeConnected,
		UptimeSeconds:  time.Since(h.startTime).Seconds(),
	})
}

// HealthLive handles GET /api/v1/health/live (Kubernetes liveness).
// Returns 200 whenever the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready (Kubernetes readiness).
// Ready means the catalog is loaded and the store is open.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.catalog == nil || h.catalog.Len() == 0 || h.store == nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeInternalError, "Not ready")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
