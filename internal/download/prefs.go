// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package download

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// Preference keys used by the orchestrator. CapturedEmailKey holds the
// gate email; the per-product flag marks a device as already counted.
const (
	CapturedEmailKey     = "captured_email"
	DownloadedFlagPrefix = "downloaded_"
	DownloadedFlagValue  = "true"
)

// DownloadedFlagKey returns the per-product preference key.
func DownloadedFlagKey(productID string) string {
	return DownloadedFlagPrefix + productID
}

// PrefStore persists small device-local key/value preferences.
type PrefStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// FilePrefStore is a PrefStore backed by a single JSON file. Writes go
// through a temp file and rename so a crash cannot truncate the store.
type FilePrefStore struct {
	mu   sync.RWMutex
	path string
	data map[string]string
}

// OpenFilePrefStore loads (or creates) the preference file at path.
func OpenFilePrefStore(path string) (*FilePrefStore, error) {
	s := &FilePrefStore{
		path: path,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read preference file: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("failed to parse preference file: %w", err)
		}
	}
	return s, nil
}

func (s *FilePrefStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *FilePrefStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preference directory: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace preference file: %w", err)
	}
	return nil
}
