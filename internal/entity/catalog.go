package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CatalogEntry is one item from the Lightspeed catalog as held in the local
// cache. Entries are keyed by UPC when present, otherwise by a synthetic key
// derived from the item id so UPC-less items stay discoverable by SKU scan.
type CatalogEntry struct {
	ItemID          int             `json:"itemID"`
	Description     string          `json:"description"`
	SKU             string          `json:"sku,omitempty"`
	ManufacturerSKU string          `json:"manufacturerSKU,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DefaultCost     decimal.Decimal `json:"defaultCost"`
	CategoryID      int             `json:"categoryID,omitempty"`
	Archived        bool            `json:"archived,omitempty"`
	Tags            []string        `json:"tag,omitempty"`
}

// SyntheticKey is the cache key used for entries without a UPC.
func SyntheticKey(itemID int) string {
	return fmt.Sprintf("ITEM_%d", itemID)
}
