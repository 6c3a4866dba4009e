// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/flowmart/flowmart/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(&config.DatabaseConfig{
		Path:           t.TempDir(),
		GCDiscardRatio: 0.5,
	})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	})
	return s
}

func TestTrackDownload(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	event, err := s.TrackDownload(ctx, "wf-1", "test-agent", "203.0.113.9")
	if err != nil {
		t.Fatalf("TrackDownload() failed: %v", err)
	}

	if event.ID == "" {
		t.Error("expected event ID to be assigned")
	}
	if event.ProductID != "wf-1" {
		t.Errorf("expected product_id wf-1, got %s", event.ProductID)
	}
	if event.DownloadedAt.IsZero() {
		t.Error("expected downloaded_at to be assigned")
	}
}

func TestTrackDownload_EmptyProductID(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.TrackDownload(context.Background(), "", "", ""); err == nil {
		t.Error("expected error for empty product id")
	}
}

func TestProductDownloadCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.TrackDownload(ctx, "wf-1", "", ""); err != nil {
			t.Fatalf("TrackDownload() failed: %v", err)
		}
	}
	if _, err := s.TrackDownload(ctx, "wf-2", "", ""); err != nil {
		t.Fatalf("TrackDownload() failed: %v", err)
	}

	count, err := s.ProductDownloadCount(ctx, "wf-1")
	if err != nil {
		t.Fatalf("ProductDownloadCount() failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3 for wf-1, got %d", count)
	}

	count, err = s.ProductDownloadCount(ctx, "wf-2")
	if err != nil {
		t.Fatalf("ProductDownloadCount() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1 for wf-2, got %d", count)
	}

	count, err = s.ProductDownloadCount(ctx, "wf-none")
	if err != nil {
		t.Fatalf("ProductDownloadCount() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected count 0 for untracked product, got %d", count)
	}
}

func TestCaptureUser_NewAndReturning(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	isNew, err := s.CaptureUser(ctx, "A@B.com ", "wf-1", "Invoice Sync")
	if err != nil {
		t.Fatalf("CaptureUser() failed: %v", err)
	}
	if !isNew {
		t.Error("expected first capture to report a new user")
	}

	// Lookup uses the normalized email.
	record, err := s.UserByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("UserByEmail() failed: %v", err)
	}
	if record.Email != "a@b.com" {
		t.Errorf("expected normalized email a@b.com, got %s", record.Email)
	}
	if record.DownloadCount != 1 {
		t.Errorf("expected download count 1, got %d", record.DownloadCount)
	}
	if len(record.Downloads) != 1 || record.Downloads[0].ProductID != "wf-1" {
		t.Errorf("unexpected download history: %+v", record.Downloads)
	}

	// Returning user: counter bumps, history appends, first date stays.
	isNew, err = s.CaptureUser(ctx, "a@b.com", "wf-2", "CSV Mapper")
	if err != nil {
		t.Fatalf("CaptureUser() failed: %v", err)
	}
	if isNew {
		t.Error("expected second capture to report a returning user")
	}

	record, err = s.UserByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("UserByEmail() failed: %v", err)
	}
	if record.DownloadCount != 2 {
		t.Errorf("expected download count 2, got %d", record.DownloadCount)
	}
	if len(record.Downloads) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(record.Downloads))
	}
	if record.Downloads[1].ProductTitle != "CSV Mapper" {
		t.Errorf("unexpected appended entry: %+v", record.Downloads[1])
	}
	if record.LastDownloadDate.Before(record.FirstDownloadDate) {
		t.Error("last download date must not precede first download date")
	}
}

func TestCaptureUser_EmptyEmail(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CaptureUser(context.Background(), "   ", "wf-1", "t"); err == nil {
		t.Error("expected error for empty email")
	}
}

func TestUserByEmail_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct{ in, want string }{
		{"A@B.COM", "a@b.com"},
		{"  user@example.com  ", "user@example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunGC_NoRewrite(t *testing.T) {
	s := newTestStore(t)

	// A fresh store has nothing to collect; Badger reports that as
	// ErrNoRewrite which callers treat as a clean no-op.
	if err := s.RunGC(); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		t.Errorf("RunGC() failed: %v", err)
	}
}
