// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowmart/flowmart/internal/middleware"
)

// Router assembles the HTTP surface from a handler and middleware factory.
type Router struct {
	handler *Handler
	mw      *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	return &Router{handler: handler, mw: mw}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so it can be used with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.mw.CORS()) // global so OPTIONS preflight is handled everywhere

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.mw.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Catalog API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/products", router.handler.Products)
		r.Get("/products/{productId}", router.handler.ProductByID)
		r.Get("/products/{productId}/stats", router.handler.ProductStats)
		r.Get("/categories", router.handler.Categories)
		r.Get("/users/lookup", router.handler.UserLookup)
	})

	// ========================
	// Download Proxy and Sinks
	// ========================
	// Top-level paths match what download clients call; the proxy route
	// streams large payloads and is instrumented separately from the
	// JSON endpoints.
	r.Route("/downloads", func(r chi.Router) {
		r.Use(router.mw.RateLimit())

		r.Get("/{productId}", router.handler.DownloadProduct)
		r.With(chiMiddleware(middleware.PrometheusMetrics)).
			Post("/track", router.handler.TrackDownload)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Post("/capture", router.handler.CaptureUser)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
