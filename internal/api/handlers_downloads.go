// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/flowmart/flowmart/internal/catalog"
	"github.com/flowmart/flowmart/internal/logging"
	"github.com/flowmart/flowmart/internal/metrics"
	"github.com/flowmart/flowmart/internal/validation"
)

// DownloadProduct handles GET /downloads/{productId}: it streams the
// product payload from the origin object store to the client with an
// attachment disposition. The response body is opaque bytes; all JSON
// error responses happen before the first payload byte is written.
func (h *Handler) DownloadProduct(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	productID := chi.URLParam(r, "productId")

	product, err := h.catalog.Product(productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			metrics.ProxyTransfersTotal.WithLabelValues("not_found").Inc()
			rw.NotFound("Product not found")
			return
		}
		rw.InternalError("Failed to load product")
		return
	}

	start := time.Now()
	resp, err := h.origin.Fetch(r.Context(), product.DownloadURL)
	if err != nil {
		metrics.ProxyTransfersTotal.WithLabelValues("origin_error").Inc()
		rw.ExternalServiceError("origin", err)
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/zip"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", product.FileName))
	if cl := resp.ContentLength; cl >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(cl, 10))
	}

	written, err := io.Copy(w, resp.Body)
	metrics.ProxyBytesTotal.Add(float64(written))
	metrics.ProxyTransferDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// Headers are already sent; all we can do is log and count it.
		metrics.ProxyTransfersTotal.WithLabelValues("client_gone").Inc()
		logging.Ctx(r.Context()).Warn().
			Err(err).
			Str("product_id", productID).
			Int64("bytes_written", written).
			Msg("Download transfer aborted mid-stream")
		return
	}

	metrics.ProxyTransfersTotal.WithLabelValues("ok").Inc()
	logging.Ctx(r.Context()).Info().
		Str("product_id", productID).
		Int64("bytes", written).
		Msg("Download transfer complete")
}

// TrackDownload handles POST /downloads/track: it appends a download
// analytics event. UserAgent and IP fall back to the request's own
// headers when the body omits them.
func (h *Handler) TrackDownload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req TrackDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Fields())
		return
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}
	ipAddress := req.IPAddress
	if ipAddress == "" {
		// chi's RealIP middleware rewrites RemoteAddr from
		// X-Forwarded-For / X-Real-IP when present.
		ipAddress = r.RemoteAddr
	}

	event, err := h.store.TrackDownload(r.Context(), req.ProductID, userAgent, ipAddress)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	metrics.DownloadsTracked.WithLabelValues(req.ProductID).Inc()
	logging.Ctx(r.Context()).Info().
		Str("product_id", req.ProductID).
		Str("event_id", event.ID).
		Msg("Download tracked")

	rw.Success(map[string]interface{}{
		"product_id": event.ProductID,
	})
}
