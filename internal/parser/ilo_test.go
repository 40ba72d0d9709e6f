package parser

import (
	"testing"
)

const iloInvoice = `Distribution ÎLO
www.ilo307.com
Facture - FC10234
Date
2025-04-02
Votre nº de commande WEB-555
ILO-001 Pandemic Legacy Saison 2 12.00 3 3 0 37,99
ILO-002 Azul Pavillon (FR) 10.00 2 0 2 29,99
ILO-003 Les Aventuriers du Rail 8.00 5 4 1 44,50
`

func TestILOInvoice(t *testing.T) {
	t.Parallel()

	inv, err := NewILO(nil).Parse(iloInvoice)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inv.InvoiceNumber != "FC10234" {
		t.Errorf("invoice number = %q", inv.InvoiceNumber)
	}
	if inv.InvoiceDate != "2025-04-02" {
		t.Errorf("invoice date = %q", inv.InvoiceDate)
	}
	if inv.PONumber != "WEB-555" {
		t.Errorf("po number = %q", inv.PONumber)
	}

	// ILO-002 shipped 0 units and must be excluded.
	if len(inv.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(inv.Items))
	}
	first := inv.Items[0]
	if first.SKU != "ILO-001" {
		t.Errorf("sku = %q", first.SKU)
	}
	if first.Quantity != 3 || first.QuantityShipped != 3 || first.QuantityOrdered != 3 || first.QuantityBackordered != 0 {
		t.Errorf("quantities: %+v", first)
	}
	if !first.UnitPrice.Equal(mustDecimal(t, "37.99")) {
		t.Errorf("unit price = %v", first.UnitPrice)
	}

	second := inv.Items[1]
	if second.SKU != "ILO-003" || second.QuantityShipped != 4 || second.QuantityBackordered != 1 {
		t.Errorf("second item: %+v", second)
	}
}

func TestILOShippedZeroAlwaysExcluded(t *testing.T) {
	t.Parallel()

	text := "ILO-100 Carcassonne 5.00 10 0 10 24,99\n"
	inv, err := NewILO(nil).Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(inv.Items) != 0 {
		t.Fatalf("items = %d, want 0 (shipped=0)", len(inv.Items))
	}
}

func TestILOAccentedNames(t *testing.T) {
	t.Parallel()

	text := "ILO-200 La Fête étrange à Québec 6.00 1 1 0 52,00\n"
	inv, err := NewILO(nil).Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(inv.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(inv.Items))
	}
	if inv.Items[0].QuantityShipped != 1 {
		t.Errorf("shipped = %d", inv.Items[0].QuantityShipped)
	}
}
