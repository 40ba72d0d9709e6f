package reconcile

import (
	"log/slog"

	"github.com/meeplemtl/invoice-scanner/internal/catalog"
	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// Resolution pairs an invoice line with the catalog entry it resolved to.
type Resolution struct {
	Item  entity.LineItem
	Entry entity.CatalogEntry
}

// Result partitions merged line items by resolution outcome.
type Result struct {
	Resolved  []Resolution
	Unmatched []entity.LineItem
	Skipped   []entity.LineItem
}

// Resolve looks each line item up in the catalog cache. Items carrying a UPC
// are resolved by UPC alone; a UPC miss is final even when the item also has
// a SKU, since a UPC absent from the catalog means the product itself is
// absent, not mislabeled. SKU-only items fall back to the linear SKU scan.
// Items with no identifier at all are skipped.
func Resolve(cache *catalog.Cache, items []entity.LineItem, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}
	var res Result
	for _, item := range items {
		if !item.Actionable() {
			logger.Warn("line item has no identifier, skipping", "name", item.Name)
			res.Skipped = append(res.Skipped, item)
			continue
		}
		if item.UPC != "" {
			entry, ok := cache.ByUPC(item.UPC)
			if !ok {
				res.Unmatched = append(res.Unmatched, item)
				continue
			}
			res.Resolved = append(res.Resolved, Resolution{Item: item, Entry: entry})
			continue
		}
		entry, ok := cache.FindBySKU(item.SKU)
		if !ok {
			res.Unmatched = append(res.Unmatched, item)
			continue
		}
		res.Resolved = append(res.Resolved, Resolution{Item: item, Entry: entry})
	}
	logger.Info("resolution complete",
		"resolved", len(res.Resolved),
		"unmatched", len(res.Unmatched),
		"skipped", len(res.Skipped),
	)
	return res
}
