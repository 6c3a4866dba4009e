// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/flowmart/flowmart/internal/metrics"
)

// UserDownload is one entry in a user's download history.
type UserDownload struct {
	ProductID    string    `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// UserRecord is a captured-email user document, keyed by lower-cased,
// trimmed email. The downloads list is append-only.
type UserRecord struct {
	Email             string         `json:"email"`
	FirstDownloadDate time.Time      `json:"first_download_date"`
	LastDownloadDate  time.Time      `json:"last_download_date"`
	DownloadCount     int            `json:"download_count"`
	Downloads         []UserDownload `json:"downloads"`
	CreatedAt         time.Time      `json:"created_at"`
}

// NormalizeEmail lowers and trims an email for use as the user key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CaptureUser upserts the user record for the given email: an existing
// record gets its counter bumped and the download appended to history; a
// missing record is created with count 1. Returns true when the user is
// new.
func (s *Store) CaptureUser(ctx context.Context, email, productID, productTitle string) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return false, fmt.Errorf("capture user: email is required")
	}

	now := time.Now().UTC()
	entry := UserDownload{
		ProductID:    productID,
		ProductTitle: productTitle,
		DownloadedAt: now,
	}

	var isNewUser bool

	start := time.Now()
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(userKeyPrefix + email)

		var record UserRecord
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			isNewUser = true
			record = UserRecord{
				Email:             email,
				FirstDownloadDate: now,
				LastDownloadDate:  now,
				DownloadCount:     1,
				Downloads:         []UserDownload{entry},
				CreatedAt:         now,
			}
		case err != nil:
			return fmt.Errorf("get user: %w", err)
		default:
			isNewUser = false
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return fmt.Errorf("decode user: %w", err)
			}
			record.LastDownloadDate = now
			record.DownloadCount++
			record.Downloads = append(record.Downloads, entry)
		}

		data, err := json.Marshal(&record)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}
		return txn.Set(key, data)
	})
	metrics.ObserveStoreOp("capture_user", time.Since(start), err)
	if err != nil {
		return false, err
	}

	return isNewUser, nil
}

// UserByEmail fetches a user record. Returns ErrUserNotFound when no
// record exists for the email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	email = NormalizeEmail(email)

	var record UserRecord
	start := time.Now()
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	metrics.ObserveStoreOp("user_by_email", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return &record, nil
}
