// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

// Package main is the entry point for the Flowmart gateway server.
//
// Flowmart serves a digital-product marketplace: a JSON product catalog,
// a streaming download proxy in front of the origin object store, and
// BadgerDB-backed download and user analytics.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config file, environment (Koanf v2)
//  2. Catalog: product/category JSON loaded into memory
//  3. Store: BadgerDB for download events and captured users
//  4. Origin client: circuit-breaker-protected fetches from the object store
//  5. Supervisor tree: Badger GC loop and the HTTP server under suture
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults.
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests within the shutdown
// timeout, and closes the store.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowmart/flowmart/internal/api"
	"github.com/flowmart/flowmart/internal/catalog"
	"github.com/flowmart/flowmart/internal/config"
	"github.com/flowmart/flowmart/internal/logging"
	"github.com/flowmart/flowmart/internal/origin"
	"github.com/flowmart/flowmart/internal/store"
	"github.com/flowmart/flowmart/internal/supervisor"
	"github.com/flowmart/flowmart/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet; the default logger reports this.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("catalog_path", cfg.Catalog.Path).
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Msg("Starting Flowmart gateway")

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load product catalog")
	}
	logging.Info().
		Int("products", len(cat.Products())).
		Int("categories", len(cat.Categories())).
		Msg("Catalog loaded")

	st, err := store.Open(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open analytics store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing analytics store")
		}
	}()

	originClient := origin.New(&cfg.Origin)

	handler := api.NewHandler(cfg, cat, st, originClient)
	router := api.NewRouter(handler, api.NewChiMiddleware(&cfg.Security))

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     router.Setup(),
		ReadTimeout: cfg.Server.Timeout,
		// WriteTimeout stays zero so large download streams are not cut off;
		// JSON endpoints are bounded by the middleware and client behavior.
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// zerolog drives the supervisor's slog-based event hook through the
	// adapter handler.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(services.NewBadgerGCService(st, cfg.Database.GCInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
		if err := <-errCh; err != nil && err != context.Canceled {
			logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		}
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			logging.Fatal().Err(err).Msg("Supervisor tree failed")
		}
	}

	logging.Info().Msg("Flowmart gateway stopped")
}
