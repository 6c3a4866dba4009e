// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowmart/flowmart/internal/catalog"
)

// productView is a catalog product with the live tracked download count
// layered onto the shipped counter.
type productView struct {
	catalog.Product
	// TrackedDownloads is the number of download events recorded by the
	// tracking sink for this product on this server.
	TrackedDownloads int64 `json:"trackedDownloads"`
}

// Products handles GET /api/v1/products with search, category, sort, and
// pagination query parameters.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query, err := h.parseProductListQuery(r)
	if err != nil {
		rw.ValidationError(err.Error(), nil)
		return
	}

	products := catalog.Filter(h.catalog.Products(), query.Search, query.Category)
	if query.Sort != "" {
		products = catalog.Sort(products, catalog.SortOption(query.Sort))
	}

	total := int64(len(products))
	start := query.Offset
	if start > len(products) {
		start = len(products)
	}
	end := start + query.Limit
	if end > len(products) {
		end = len(products)
	}
	page := products[start:end]

	rw.SuccessWithPagination(page, &PaginationMeta{
		Total:   total,
		Count:   len(page),
		Offset:  query.Offset,
		Limit:   query.Limit,
		HasMore: int64(end) < total,
	})
}

// ProductByID handles GET /api/v1/products/{productId}, joining the live
// tracked download count onto the catalog record.
func (h *Handler) ProductByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	productID := chi.URLParam(r, "productId")

	product, err := h.catalog.Product(productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			rw.NotFound("Product not found")
			return
		}
		rw.InternalError("Failed to load product")
		return
	}

	tracked, err := h.store.ProductDownloadCount(r.Context(), productID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(productView{Product: *product, TrackedDownloads: tracked})
}

// ProductStats handles GET /api/v1/products/{productId}/stats.
func (h *Handler) ProductStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	productID := chi.URLParam(r, "productId")

	if _, err := h.catalog.Product(productID); err != nil {
		rw.NotFound("Product not found")
		return
	}

	count, err := h.store.ProductDownloadCount(r.Context(), productID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(map[string]interface{}{
		"product_id":     productID,
		"download_count": count,
	})
}

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.catalog.Categories())
}
