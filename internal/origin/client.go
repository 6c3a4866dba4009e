// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

// Package origin fetches product payloads from the upstream object store.
// Fetches run behind a circuit breaker so a failing origin sheds load
// quickly instead of tying up proxy connections.
package origin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/flowmart/flowmart/internal/config"
	"github.com/flowmart/flowmart/internal/logging"
	"github.com/flowmart/flowmart/internal/metrics"
)

// ErrUnavailable wraps breaker-open and transport failures so callers can
// distinguish origin trouble from their own errors.
var ErrUnavailable = errors.New("origin unavailable")

// Client fetches payloads from the origin object store.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
}

// New creates an origin client from configuration.
func New(cfg *config.OriginConfig) *Client {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openInterval := cfg.BreakerOpenInterval
	if openInterval <= 0 {
		openInterval = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "origin",
		Timeout: openInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Origin circuit breaker state changed")
			if to == gobreaker.StateOpen {
				metrics.OriginBreakerState.Set(1)
			} else {
				metrics.OriginBreakerState.Set(0)
			}
		},
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker[*http.Response](settings),
	}
}

// Fetch GETs the payload at url. On success the caller owns the response
// body and must close it. Non-200 origin statuses and transport failures
// count as breaker failures and are reported as ErrUnavailable.
func (c *Client) Fetch(ctx context.Context, url string) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build origin request: %w", err)
		}
		req.Header.Set("Accept", "application/octet-stream")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("origin request: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("origin returned status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}
