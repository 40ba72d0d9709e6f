package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/meeplemtl/invoice-scanner/internal/entity"
	"github.com/meeplemtl/invoice-scanner/internal/reconcile"
)

func TestOrderReviewXLSX(t *testing.T) {
	t.Parallel()

	result := reconcile.Result{
		Resolved: []reconcile.Resolution{
			{
				Item: entity.LineItem{
					UPC:       "3558380077531",
					Name:      "CATAN Extension Marins",
					Quantity:  5,
					UnitPrice: decimal.NewFromFloat(45.99),
				},
				Entry: entity.CatalogEntry{ItemID: 101, Description: "CATAN Extension Marins"},
			},
		},
		Unmatched: []entity.LineItem{
			{SKU: "RAN-042", Name: "Décode Montréal", Quantity: 1, UnitPrice: decimal.NewFromFloat(19.99)},
		},
	}

	raw, err := NewService(nil).OrderReviewXLSX(result)
	if err != nil {
		t.Fatalf("OrderReviewXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	desc, err := f.GetCellValue("Order", "D2")
	if err != nil {
		t.Fatal(err)
	}
	if desc != "CATAN Extension Marins" {
		t.Errorf("Order!D2 = %q", desc)
	}
	total, err := f.GetCellValue("Order", "G2")
	if err != nil {
		t.Fatal(err)
	}
	if total != "229.95" {
		t.Errorf("Order!G2 = %q, want 229.95", total)
	}

	id, err := f.GetCellValue("Unmatched", "A2")
	if err != nil {
		t.Fatal(err)
	}
	if id != "RAN-042" {
		t.Errorf("Unmatched!A2 = %q", id)
	}
	kind, err := f.GetCellValue("Unmatched", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if kind != "SKU" {
		t.Errorf("Unmatched!B2 = %q, want SKU", kind)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("short", 140); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	long := truncate("abcdefghij", 5)
	if long != "abcd…" {
		t.Errorf("truncate = %q", long)
	}
}
