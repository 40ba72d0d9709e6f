package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/meeplemtl/invoice-scanner/internal/catalog"
	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

func seedCache() *catalog.Cache {
	c := catalog.New(nil)
	c.Put("3558380077531", entity.CatalogEntry{
		ItemID:          101,
		Description:     "CATAN Extension Marins",
		ManufacturerSKU: "ASM04567",
		Price:           decimal.NewFromFloat(45.99),
	})
	c.Put(entity.SyntheticKey(202), entity.CatalogEntry{
		ItemID:          202,
		Description:     "Décode Montréal",
		ManufacturerSKU: "RAN-042",
		Price:           decimal.NewFromFloat(19.99),
	})
	return c
}

func TestResolveByUPC(t *testing.T) {
	t.Parallel()

	res := Resolve(seedCache(), []entity.LineItem{
		item("", "3558380077531", "CATAN Extension Marins", 2, "45.99"),
	}, nil)

	if len(res.Resolved) != 1 || len(res.Unmatched) != 0 {
		t.Fatalf("resolved=%d unmatched=%d, want 1/0", len(res.Resolved), len(res.Unmatched))
	}
	if res.Resolved[0].Entry.ItemID != 101 {
		t.Errorf("ItemID = %d, want 101", res.Resolved[0].Entry.ItemID)
	}
}

func TestResolveBySKUScan(t *testing.T) {
	t.Parallel()

	res := Resolve(seedCache(), []entity.LineItem{
		item("RAN-042", "", "Décode Montréal", 1, "19.99"),
	}, nil)

	if len(res.Resolved) != 1 {
		t.Fatalf("resolved=%d, want 1", len(res.Resolved))
	}
	if res.Resolved[0].Entry.ItemID != 202 {
		t.Errorf("ItemID = %d, want 202", res.Resolved[0].Entry.ItemID)
	}
}

func TestResolveUPCMissNeverFallsBackToSKU(t *testing.T) {
	t.Parallel()

	// The SKU is present in the catalog, but the item carries a UPC the
	// catalog lacks. UPC wins and the item stays unmatched.
	res := Resolve(seedCache(), []entity.LineItem{
		item("ASM04567", "9999999999999", "CATAN Extension Marins", 2, "45.99"),
	}, nil)

	if len(res.Resolved) != 0 {
		t.Fatalf("resolved=%d, want 0", len(res.Resolved))
	}
	if len(res.Unmatched) != 1 {
		t.Fatalf("unmatched=%d, want 1", len(res.Unmatched))
	}
	if res.Unmatched[0].UPC != "9999999999999" {
		t.Errorf("unmatched UPC = %q", res.Unmatched[0].UPC)
	}
}

func TestResolveSkipsIdentifierless(t *testing.T) {
	t.Parallel()

	res := Resolve(seedCache(), []entity.LineItem{
		item("", "", "Frais de manutention", 1, "5.00"),
	}, nil)

	if len(res.Skipped) != 1 || len(res.Resolved) != 0 || len(res.Unmatched) != 0 {
		t.Fatalf("skipped=%d resolved=%d unmatched=%d, want 1/0/0",
			len(res.Skipped), len(res.Resolved), len(res.Unmatched))
	}
}

func TestResolveEndToEndMergedDocuments(t *testing.T) {
	t.Parallel()

	docs := []*entity.Invoice{
		{Items: []entity.LineItem{item("", "3558380077531", "CATAN Extension Marins", 3, "45.99")}},
		{Items: []entity.LineItem{item("", "3558380077531", "CATAN Extension Marins", 2, "45.99")}},
		{Items: []entity.LineItem{item("RAN-042", "", "Décode Montréal", 1, "19.99")}},
	}
	res := Resolve(seedCache(), Merge(docs), nil)

	if len(res.Resolved) != 2 {
		t.Fatalf("resolved=%d, want 2", len(res.Resolved))
	}
	if res.Resolved[0].Item.Quantity != 5 {
		t.Errorf("merged quantity = %v, want 5", res.Resolved[0].Item.Quantity)
	}
	if res.Resolved[1].Entry.ItemID != 202 {
		t.Errorf("second resolution ItemID = %d, want 202", res.Resolved[1].Entry.ItemID)
	}
}
