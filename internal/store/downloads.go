// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/flowmart/flowmart/internal/metrics"
)

// DownloadEvent is one append-only download analytics record. There is no
// update or delete path.
type DownloadEvent struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	DownloadedAt time.Time `json:"downloaded_at"`
	UserAgent    string    `json:"user_agent,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
}

// TrackDownload appends a download event. The event ID and timestamp are
// assigned here; callers supply only the product correlation data.
func (s *Store) TrackDownload(ctx context.Context, productID, userAgent, ipAddress string) (*DownloadEvent, error) {
	if productID == "" {
		return nil, fmt.Errorf("track download: product id is required")
	}

	event := &DownloadEvent{
		ID:           uuid.New().String(),
		ProductID:    productID,
		DownloadedAt: time.Now().UTC(),
		UserAgent:    userAgent,
		IPAddress:    ipAddress,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal download event: %w", err)
	}

	start := time.Now()
	err = s.db.Update(func(txn *badger.Txn) error {
		// Primary document plus a per-product index entry for counting.
		eventKey := []byte(downloadKeyPrefix + event.ID)
		if err := txn.Set(eventKey, data); err != nil {
			return fmt.Errorf("set event: %w", err)
		}

		indexKey := []byte(downloadProductKeyPrefix + event.ProductID + ":" + event.ID)
		if err := txn.Set(indexKey, nil); err != nil {
			return fmt.Errorf("set product index: %w", err)
		}

		return nil
	})
	metrics.ObserveStoreOp("track_download", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return event, nil
}

// ProductDownloadCount returns the number of tracked download events for
// the given product.
func (s *Store) ProductDownloadCount(ctx context.Context, productID string) (int64, error) {
	var count int64

	start := time.Now()
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := []byte(downloadProductKeyPrefix + productID + ":")
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	metrics.ObserveStoreOp("download_count", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count downloads for %s: %w", productID, err)
	}

	return count, nil
}
