// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

// Package store persists download analytics events and captured user
// records in BadgerDB. Events are append-only documents; user records are
// upserted by lower-cased email. JSON documents are encoded with
// goccy/go-json.
package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/flowmart/flowmart/internal/config"
	"github.com/flowmart/flowmart/internal/logging"
)

// Key prefixes for BadgerDB storage.
const (
	downloadKeyPrefix        = "download:"
	downloadProductKeyPrefix = "download_product:"
	userKeyPrefix            = "user:"
)

// Sentinel errors.
var (
	ErrUserNotFound = errors.New("user not found")
)

// Store wraps a BadgerDB instance holding the analytics and user
// collections.
type Store struct {
	db             *badger.DB
	gcDiscardRatio float64
}

// Open opens (or creates) the store at the configured path.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(badgerLogger{logging.With().Str("component", "badger").Logger()})
	if cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", cfg.Path, err)
	}

	ratio := cfg.GCDiscardRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}

	return &Store{db: db, gcDiscardRatio: ratio}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunGC runs one round of Badger value-log garbage collection. Returns
// badger.ErrNoRewrite when there was nothing to collect; callers treat
// that as a clean no-op.
func (s *Store) RunGC() error {
	return s.db.RunValueLogGC(s.gcDiscardRatio)
}

// badgerLogger adapts zerolog to badger.Logger. Badger's INFO chatter is
// demoted to debug.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.log.Error().Msgf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.log.Warn().Msgf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.log.Debug().Msgf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.log.Debug().Msgf(format, args...) }
