// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/flowmart/flowmart/internal/validation"
)

// TrackDownloadRequest is the body of POST /downloads/track. UserAgent
// and IPAddress are optional; absent values fall back to the request's
// own headers.
type TrackDownloadRequest struct {
	ProductID string `json:"productId" validate:"required"`
	UserAgent string `json:"userAgent" validate:"omitempty,max=1024"`
	IPAddress string `json:"ipAddress" validate:"omitempty,max=64"`
}

// CaptureUserRequest is the body of POST /users/capture. The email check
// is the gate's deliberately minimal contains-'@' rule.
type CaptureUserRequest struct {
	Email        string `json:"email" validate:"required,gated_email"`
	ProductID    string `json:"productId" validate:"required"`
	ProductTitle string `json:"productTitle" validate:"required"`
}

// ProductListQuery holds the parsed query parameters of GET /api/v1/products.
type ProductListQuery struct {
	Search   string `validate:"omitempty,max=256"`
	Category string `validate:"omitempty,max=64"`
	Sort     string `validate:"omitempty,oneof=name-asc name-desc date-newest date-oldest downloads-desc"`
	Limit    int    `validate:"min=1"`
	Offset   int    `validate:"min=0"`
}

// parseProductListQuery extracts and validates list parameters, applying
// the configured default and maximum page sizes.
func (h *Handler) parseProductListQuery(r *http.Request) (*ProductListQuery, error) {
	q := r.URL.Query()

	query := &ProductListQuery{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Limit:    h.cfg.API.DefaultPageSize,
		Offset:   0,
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("limit must be an integer")
		}
		query.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("offset must be an integer")
		}
		query.Offset = offset
	}

	if query.Limit > h.cfg.API.MaxPageSize {
		query.Limit = h.cfg.API.MaxPageSize
	}

	if verr := validation.ValidateStruct(query); verr != nil {
		return nil, verr
	}
	return query, nil
}
