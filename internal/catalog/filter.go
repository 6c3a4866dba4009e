// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package catalog

import (
	"sort"
	"strings"
)

// Filter returns the products matching the search query and category.
// The query matches title, description, or any tag, case-insensitively.
// An empty query matches everything; category "" or "all" matches every
// category.
func Filter(products []Product, query, category string) []Product {
	filtered := products

	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		matched := make([]Product, 0, len(filtered))
		for _, p := range filtered {
			if matchesQuery(&p, q) {
				matched = append(matched, p)
			}
		}
		filtered = matched
	}

	if category != "" && category != "all" {
		matched := make([]Product, 0, len(filtered))
		for _, p := range filtered {
			if p.Category == category {
				matched = append(matched, p)
			}
		}
		filtered = matched
	}

	return filtered
}

func matchesQuery(p *Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Sort returns a sorted copy of products. Unrecognized options return the
// input order unchanged.
func Sort(products []Product, option SortOption) []Product {
	sorted := make([]Product, len(products))
	copy(sorted, products)

	switch option {
	case SortNameAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Title) < strings.ToLower(sorted[j].Title)
		})
	case SortNameDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Title) > strings.ToLower(sorted[j].Title)
		})
	case SortDateNewest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].DateAdded.After(sorted[j].DateAdded)
		})
	case SortDateOldest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].DateAdded.Before(sorted[j].DateAdded)
		})
	case SortDownloadsDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Downloads > sorted[j].Downloads
		})
	}

	return sorted
}
