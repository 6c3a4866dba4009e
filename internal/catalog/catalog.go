// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// ErrProductNotFound is returned when a product ID is not in the catalog.
var ErrProductNotFound = errors.New("product not found")

// Catalog holds the loaded product and category collections. It is
// immutable after Load and safe for concurrent readers.
type Catalog struct {
	products   []Product
	categories []Category
	byID       map[string]*Product
}

// catalogFile mirrors the JSON catalog layout on disk.
type catalogFile struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
}

// Load reads and indexes the catalog JSON file. Duplicate product IDs are
// rejected since the ID is the correlation key for every downstream store.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog from raw JSON.
func Parse(data []byte) (*Catalog, error) {
	var cf catalogFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		products:   cf.Products,
		categories: cf.Categories,
		byID:       make(map[string]*Product, len(cf.Products)),
	}
	for i := range c.products {
		p := &c.products[i]
		if p.ID == "" {
			return nil, fmt.Errorf("catalog product %q has empty id", p.Title)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog has duplicate product id %q", p.ID)
		}
		c.byID[p.ID] = p
	}
	return c, nil
}

// Products returns the catalog's products in their original order.
// The returned slice must not be modified.
func (c *Catalog) Products() []Product {
	return c.products
}

// Categories returns the catalog's categories.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// Product returns the product with the given ID.
func (c *Catalog) Product(id string) (*Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}
