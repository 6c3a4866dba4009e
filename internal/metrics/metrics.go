// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

// Package metrics provides Prometheus instrumentation for the Flowmart
// server: API latency and throughput, proxy transfer volume, store
// operation performance, and sink outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowmart_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowmart_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowmart_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Download proxy metrics
	ProxyTransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowmart_proxy_transfers_total",
			Help: "Total number of proxied download transfers",
		},
		[]string{"outcome"}, // "ok", "not_found", "origin_error", "client_gone"
	)

	ProxyTransferDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowmart_proxy_transfer_duration_seconds",
			Help:    "Duration of proxied download transfers in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	ProxyBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flowmart_proxy_bytes_total",
			Help: "Total bytes streamed through the download proxy",
		},
	)

	OriginBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowmart_origin_breaker_open",
			Help: "1 when the origin circuit breaker is open, 0 otherwise",
		},
	)

	// Sink metrics
	DownloadsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowmart_downloads_tracked_total",
			Help: "Total download events recorded by the tracking sink",
		},
		[]string{"product_id"},
	)

	UsersCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowmart_users_captured_total",
			Help: "Total user-capture upserts",
		},
		[]string{"new_user"}, // "true" or "false"
	)

	// Store metrics
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowmart_store_op_duration_seconds",
			Help:    "Duration of BadgerDB store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowmart_store_op_errors_total",
			Help: "Total BadgerDB store operation errors",
		},
		[]string{"operation"},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// ObserveStoreOp records one store operation outcome.
func ObserveStoreOp(operation string, duration time.Duration, err error) {
	StoreOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreOpErrors.WithLabelValues(operation).Inc()
	}
}
