// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package services

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/flowmart/flowmart/internal/logging"
)

// GarbageCollector matches the store's value-log GC entry point.
type GarbageCollector interface {
	RunGC() error
}

// BadgerGCService periodically runs Badger value-log garbage collection.
// Badger does not reclaim value-log space on its own; a ticker loop like
// this one is the documented pattern.
type BadgerGCService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewBadgerGCService creates the GC loop. interval defaults to 10 minutes.
func NewBadgerGCService(gc GarbageCollector, interval time.Duration) *BadgerGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &BadgerGCService{
		gc:       gc,
		interval: interval,
		name:     "badger-gc",
	}
}

// Serve implements suture.Service. ErrNoRewrite means a GC round found
// nothing to collect and is not an error; on a successful rewrite the
// round is repeated immediately, since more garbage is often available.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for {
				err := s.gc.RunGC()
				if errors.Is(err, badger.ErrNoRewrite) {
					break
				}
				if err != nil {
					logging.Warn().Err(err).Msg("Badger value-log GC failed")
					break
				}
				logging.Debug().Msg("Badger value-log GC reclaimed space")
			}
		}
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *BadgerGCService) String() string {
	return s.name
}
