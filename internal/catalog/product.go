// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

// Package catalog supplies the product catalog: an ordered, read-only
// collection of downloadable products and their categories, loaded from a
// JSON file at startup. The catalog is the correlation source for every
// downstream store; product IDs are unique within one catalog.
package catalog

import "time"

// Product is a downloadable marketplace asset.
type Product struct {
	// ID is globally unique within the catalog and is the correlation key
	// used by the download proxy and the analytics store.
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Thumbnail   string `json:"thumbnail"`

	// DownloadURL locates the payload on the origin object store.
	DownloadURL string `json:"downloadUrl"`

	// FileName is the suggested client-side file name.
	FileName string `json:"fileName"`

	DateAdded time.Time `json:"dateAdded"`

	// Downloads is the cumulative download counter shipped with the
	// catalog. Live tracked counts are layered on top by the store.
	Downloads int      `json:"downloads"`
	Tags      []string `json:"tags"`
	Version   string   `json:"version"`
	FileSize  string   `json:"fileSize"`

	// Extended details, all optional.
	Platform            string `json:"platform,omitempty"`
	Requirements        string `json:"requirements,omitempty"`
	Author              string `json:"author,omitempty"`
	LastUpdated         string `json:"lastUpdated,omitempty"`
	Changelog           string `json:"changelog,omitempty"`
	InstallInstructions string `json:"installInstructions,omitempty"`
}

// Category groups products for filtering.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// SortOption selects a product ordering.
type SortOption string

// Supported sort options.
const (
	SortNameAsc       SortOption = "name-asc"
	SortNameDesc      SortOption = "name-desc"
	SortDateNewest    SortOption = "date-newest"
	SortDateOldest    SortOption = "date-oldest"
	SortDownloadsDesc SortOption = "downloads-desc"
)

// Valid reports whether s is a recognized sort option.
func (s SortOption) Valid() bool {
	switch s {
	case SortNameAsc, SortNameDesc, SortDateNewest, SortDateOldest, SortDownloadsDesc:
		return true
	}
	return false
}
