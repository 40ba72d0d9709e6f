// Package catalog holds the locally cached Lightspeed item registry, keyed
// by UPC (or a synthetic key for UPC-less items), against which parsed
// invoice items are resolved.
package catalog

import (
	"log/slog"

	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// Cache is the in-memory identifier → catalog entry mapping. It is owned by
// the single execution goroutine of a run; no locking.
type Cache struct {
	entries map[string]entity.CatalogEntry
	logger  *slog.Logger
}

func New(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[string]entity.CatalogEntry),
		logger:  logger,
	}
}

// Put stores an entry under its identifier key.
func (c *Cache) Put(key string, e entity.CatalogEntry) {
	c.entries[key] = e
}

// ByUPC looks an entry up by UPC. A miss is definitive for UPC-carrying
// items: resolution never falls back to SKU.
func (c *Cache) ByUPC(upc string) (entity.CatalogEntry, bool) {
	e, ok := c.entries[upc]
	return e, ok
}

// FindBySKU scans the cache for an entry whose manufacturer or canonical SKU
// equals sku. The cache is keyed by UPC only, so this is O(n) by design;
// SKU-only vendors (Randolph, QuadSource) pay the scan.
func (c *Cache) FindBySKU(sku string) (entity.CatalogEntry, bool) {
	if sku == "" {
		return entity.CatalogEntry{}, false
	}
	for _, e := range c.entries {
		if e.ManufacturerSKU == sku || e.SKU == sku {
			return e, true
		}
	}
	return entity.CatalogEntry{}, false
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Entries exposes the underlying mapping for persistence and reporting.
func (c *Cache) Entries() map[string]entity.CatalogEntry {
	return c.entries
}
