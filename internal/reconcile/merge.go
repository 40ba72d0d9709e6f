// Package reconcile turns parsed invoices into a single actionable order:
// it merges line items across documents, resolves identifiers against the
// catalog cache, and queues what the catalog does not know about.
package reconcile

import (
	"fmt"

	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// Merge combines the line items of several invoices into one list. Items
// sharing an identifier are collapsed into a single line whose quantity is
// the sum; all other fields come from the first occurrence. Output order is
// first-appearance order, so repeated runs over the same documents produce
// the same list.
func Merge(invoices []*entity.Invoice) []entity.LineItem {
	keyed := make(map[string]int)
	var out []entity.LineItem
	pos := 0

	for _, inv := range invoices {
		if inv == nil {
			continue
		}
		for _, item := range inv.Items {
			key := mergeKey(item, pos)
			pos++
			if idx, ok := keyed[key]; ok {
				out[idx].Quantity += item.Quantity
				continue
			}
			keyed[key] = len(out)
			out = append(out, item)
		}
	}
	return out
}

// mergeKey prefers SKU over UPC so the same product ordered from two vendors
// under different UPC printings still collapses when the SKU matches.
// Identifier-less items get a positional key and never merge.
func mergeKey(li entity.LineItem, pos int) string {
	if li.SKU != "" {
		return "sku:" + li.SKU
	}
	if li.UPC != "" {
		return "upc:" + li.UPC
	}
	return fmt.Sprintf("pos:%d", pos)
}
