package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/meeplemtl/invoice-scanner/internal/common"
	"github.com/meeplemtl/invoice-scanner/internal/entity"
	"github.com/meeplemtl/invoice-scanner/internal/lightspeed"
)

func sampleEntry(id int, desc, sku string) entity.CatalogEntry {
	return entity.CatalogEntry{
		ItemID:          id,
		Description:     desc,
		ManufacturerSKU: sku,
		Price:           decimal.NewFromFloat(45.99),
		DefaultCost:     decimal.NewFromFloat(27.50),
		CategoryID:      17,
	}
}

func TestCacheByUPC(t *testing.T) {
	t.Parallel()

	c := New(nil)
	c.Put("3558380077531", sampleEntry(101, "CATAN Extension Marins", "ASM04567"))

	e, ok := c.ByUPC("3558380077531")
	if !ok {
		t.Fatal("expected hit for known UPC")
	}
	if e.ItemID != 101 {
		t.Errorf("ItemID = %d, want 101", e.ItemID)
	}
	if _, ok := c.ByUPC("0000000000000"); ok {
		t.Error("expected miss for unknown UPC")
	}
}

func TestCacheFindBySKU(t *testing.T) {
	t.Parallel()

	c := New(nil)
	c.Put("3558380077531", sampleEntry(101, "CATAN Extension Marins", "ASM04567"))
	withCustom := sampleEntry(102, "Wingspan", "")
	withCustom.SKU = "STM900"
	c.Put(entity.SyntheticKey(102), withCustom)

	tests := []struct {
		name   string
		sku    string
		wantID int
		wantOK bool
	}{
		{"manufacturer sku", "ASM04567", 101, true},
		{"custom sku", "STM900", 102, true},
		{"unknown", "NOPE123", 0, false},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := c.FindBySKU(tt.sku)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && e.ItemID != tt.wantID {
				t.Errorf("ItemID = %d, want %d", e.ItemID, tt.wantID)
			}
		})
	}
}

func TestCacheSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "upc_itemid_map.json")

	c := New(nil)
	c.Put("3558380077531", sampleEntry(101, "CATAN Extension Marins", "ASM04567"))
	c.Put(entity.SyntheticKey(102), sampleEntry(102, "Wingspan", "STM900"))
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := New(nil)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("Len = %d, want 2", loaded.Len())
	}
	e, ok := loaded.ByUPC("3558380077531")
	if !ok {
		t.Fatal("round trip lost UPC entry")
	}
	if e.Description != "CATAN Extension Marins" || e.ItemID != 101 {
		t.Errorf("round trip altered entry: %+v", e)
	}
	if !e.Price.Equal(decimal.NewFromFloat(45.99)) {
		t.Errorf("Price = %s, want 45.99", e.Price)
	}
	if _, ok := loaded.ByUPC(entity.SyntheticKey(102)); !ok {
		t.Error("round trip lost synthetic-key entry")
	}
}

func TestCacheSaveBacksUpPrevious(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "upc_itemid_map.json")

	c := New(nil)
	c.Put("0850024976000", sampleEntry(7, "Cascadia", "FLA001"))
	if err := c.Save(path); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := c.Save(path); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	backups := 0
	for _, de := range entries {
		if strings.Contains(de.Name(), ".backup_") {
			backups++
		}
	}
	if backups != 1 {
		t.Errorf("backup files = %d, want 1", backups)
	}
}

func TestCacheLoadMissingFile(t *testing.T) {
	t.Parallel()

	c := New(nil)
	err := c.Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCacheLoadRejectsInvalidShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"truncated`},
		{"entry missing itemID", `{"123456789012": {"description": "Orphan"}}`},
		{"entry wrong type", `{"123456789012": "Orphan"}`},
		{"top level array", `[{"itemID": 1, "description": "x"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			c := New(nil)
			if err := c.Load(path); err == nil {
				t.Fatal("expected load to fail")
			}
		})
	}
}

func TestEntryFromItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		item    lightspeed.Item
		wantKey string
		wantOK  bool
	}{
		{
			name: "upc keyed",
			item: lightspeed.Item{
				ItemID:          "101",
				UPC:             "3558380077531",
				Description:     "CATAN Extension Marins",
				CustomSku:       "CAT-MAR",
				ManufacturerSku: "ASM04567",
				DefaultCost:     "27.50",
				Price:           "45.99",
				CategoryID:      "17",
			},
			wantKey: "3558380077531",
			wantOK:  true,
		},
		{
			name: "synthetic key when upc empty",
			item: lightspeed.Item{
				ItemID:      "202",
				Description: "Mystery Mini",
				SystemSku:   "210000000202",
			},
			wantKey: "ITEM_202",
			wantOK:  true,
		},
		{
			name:   "unusable without id",
			item:   lightspeed.Item{Description: "No id"},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, entry, ok := entryFromItem(tt.item)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
			if tt.item.SystemSku != "" && entry.SKU != tt.item.SystemSku {
				t.Errorf("SKU = %q, want systemSku fallback %q", entry.SKU, tt.item.SystemSku)
			}
		})
	}
}
