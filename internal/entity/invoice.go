package entity

import (
	"github.com/shopspring/decimal"
)

// Distributor identifies which vendor layout an invoice was parsed with.
type Distributor string

const (
	DistributorAsmodee    Distributor = "Asmodee"
	DistributorUniversal  Distributor = "Universal"
	DistributorILO        Distributor = "ILO"
	DistributorRandolph   Distributor = "Randolph"
	DistributorQuadSource Distributor = "QuadSource"
	DistributorUnknown    Distributor = ""
)

// LineItem is a single parsed invoice line.
//
// Quantity may be fractional: Randolph reports quantities in French decimal
// format ("2,00"). The ordered/shipped/backordered triplet is only populated
// for vendors that report partial fulfillment (ÎLO).
type LineItem struct {
	SKU                 string          `json:"sku,omitempty"`
	UPC                 string          `json:"upc,omitempty"`
	Name                string          `json:"name"`
	Quantity            float64         `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	QuantityOrdered     int             `json:"quantity_ordered,omitempty"`
	QuantityShipped     int             `json:"quantity_shipped,omitempty"`
	QuantityBackordered int             `json:"quantity_backordered,omitempty"`
}

// Actionable reports whether the item carries an identifier that can be
// reconciled against the catalog.
func (li LineItem) Actionable() bool {
	return li.SKU != "" || li.UPC != ""
}

// Identifier returns the item's catalog identifier, preferring UPC.
func (li LineItem) Identifier() string {
	if li.UPC != "" {
		return li.UPC
	}
	return li.SKU
}

// Invoice is the structured result of parsing one document's text.
// It is immutable once produced by a parser.
type Invoice struct {
	Distributor   Distributor `json:"distributor"`
	InvoiceNumber string      `json:"invoice_number,omitempty"`
	InvoiceDate   string      `json:"invoice_date,omitempty"`
	PONumber      string      `json:"po_number,omitempty"`
	Items         []LineItem  `json:"items"`
}
