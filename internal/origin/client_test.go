// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package origin

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flowmart/flowmart/internal/config"
)

func testConfig() *config.OriginConfig {
	return &config.OriginConfig{
		Timeout:             5 * time.Second,
		BreakerMaxFailures:  3,
		BreakerOpenInterval: time.Minute,
	}
}

func TestFetch_Success(t *testing.T) {
	payload := []byte("zip-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/octet-stream" {
			t.Errorf("expected octet-stream Accept header, got %q", got)
		}
		w.Write(payload)
	}))
	defer srv.Close()

	c := New(testConfig())
	resp, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if string(body) != string(payload) {
		t.Errorf("expected payload %q, got %q", payload, body)
	}
}

func TestFetch_OriginError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(testConfig())
	_, err := c.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestFetch_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(testConfig())
	for i := 0; i < 5; i++ {
		_, err := c.Fetch(context.Background(), srv.URL)
		if err == nil {
			t.Fatal("expected failure")
		}
	}

	// After three consecutive failures the breaker is open and stops
	// reaching the origin.
	if hits != 3 {
		t.Errorf("expected 3 origin hits before the breaker opened, got %d", hits)
	}
}

func TestFetch_NetworkError(t *testing.T) {
	c := New(testConfig())

	_, err := c.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
