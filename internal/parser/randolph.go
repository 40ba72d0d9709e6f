package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// Randolph parses Groupe Randolph invoices. An item block is keyed by a
// bracketed code; the quantity follows on the next line in French decimal
// format ("2,00") and the unit price two lines later with four fraction
// digits, sharing its line with a trailing MSRP value that is ignored.
// Bracket codes starting with "Frais" are delivery fees, not products.
type Randolph struct {
	logger *slog.Logger
}

func NewRandolph(logger *slog.Logger) *Randolph {
	return &Randolph{logger: orDefault(logger)}
}

var (
	randolphInvoiceNoRe = regexp.MustCompile(`Facture\s*:\s*(INV/\d{4}/\d{2}/\d+)`)
	randolphDateRe      = regexp.MustCompile(`Date de la facture\s*:\s*(\d{4}-\d{2}-\d{2})`)

	bracketCodeRe     = regexp.MustCompile(`\[([A-Za-z0-9\s\-]+)\]`)
	commaQuantityRe   = regexp.MustCompile(`^(\d+,\d{2})$`)
	commaUnitPriceRe  = regexp.MustCompile(`^(\d+,\d{4})`)
	feeCodePrefix     = "Frais"
	randolphStopWords = []string{"Sous-total", "Total"}
)

func (p *Randolph) Distributor() entity.Distributor {
	return entity.DistributorRandolph
}

func (p *Randolph) Parse(text string) (*entity.Invoice, error) {
	text = normalizeText(text)
	inv := &entity.Invoice{Distributor: entity.DistributorRandolph}

	if m := randolphInvoiceNoRe.FindStringSubmatch(text); m != nil {
		inv.InvoiceNumber = m[1]
	}
	if m := randolphDateRe.FindStringSubmatch(text); m != nil {
		inv.InvoiceDate = m[1]
	}

	lines := Lines(text)
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if loc := bracketCodeRe.FindStringSubmatchIndex(line); loc != nil {
			if item, ok := p.buildItem(lines, i, loc); ok {
				p.logger.Debug("parsed item",
					"distributor", inv.Distributor,
					"sku", item.SKU,
					"quantity", item.Quantity,
					"unit_price", item.UnitPrice)
				inv.Items = append(inv.Items, item)
			}
		}

		if p.summaryReached(line) {
			break
		}
	}
	return inv, nil
}

// buildItem reads the bracketed-code block anchored at lines[i]. Quantity and
// unit price live on the two following lines; a malformed or missing field
// leaves the defaults (quantity 1, price 0) standing, matching how sparse
// these invoices can be.
func (p *Randolph) buildItem(lines []string, i int, loc []int) (entity.LineItem, bool) {
	line := lines[i]
	sku := strings.TrimSpace(line[loc[2]:loc[3]])
	if sku == "" || strings.HasPrefix(sku, feeCodePrefix) {
		return entity.LineItem{}, false
	}
	name := strings.TrimSpace(line[loc[1]:])

	quantity := 1.0
	if i+1 < len(lines) {
		if m := commaQuantityRe.FindStringSubmatch(lines[i+1]); m != nil {
			if q, err := commaFloat(m[1]); err == nil {
				quantity = q
			}
		}
	}

	price := decimal.Zero
	if i+2 < len(lines) {
		if m := commaUnitPriceRe.FindStringSubmatch(lines[i+2]); m != nil {
			if v, err := commaDecimal(m[1]); err == nil {
				price = v
			}
		}
	}

	return entity.LineItem{
		SKU:       sku,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: price,
	}, true
}

func (p *Randolph) summaryReached(line string) bool {
	for _, w := range randolphStopWords {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}
