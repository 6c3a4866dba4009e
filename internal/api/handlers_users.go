// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/flowmart/flowmart/internal/logging"
	"github.com/flowmart/flowmart/internal/metrics"
	"github.com/flowmart/flowmart/internal/store"
	"github.com/flowmart/flowmart/internal/validation"
)

// CaptureUser handles POST /users/capture: it upserts the user record
// for the submitted email and appends the download to its history.
func (h *Handler) CaptureUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CaptureUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Fields())
		return
	}

	isNewUser, err := h.store.CaptureUser(r.Context(), req.Email, req.ProductID, req.ProductTitle)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	metrics.UsersCaptured.WithLabelValues(strconv.FormatBool(isNewUser)).Inc()
	logging.Ctx(r.Context()).Info().
		Str("product_id", req.ProductID).
		Bool("new_user", isNewUser).
		Msg("Email captured")

	rw.Success(map[string]interface{}{
		"is_new_user": isNewUser,
	})
}

// UserLookup handles GET /api/v1/users/lookup?email=...
func (h *Handler) UserLookup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	email := r.URL.Query().Get("email")
	if email == "" {
		rw.BadRequest("email query parameter is required")
		return
	}

	record, err := h.store.UserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			rw.NotFound("User not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	rw.Success(record)
}
