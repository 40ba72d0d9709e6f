package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// Universal parses Universal Distribution invoices. An item block is keyed by
// a leading 12–13 digit UPC line, followed by the SKU, wrapped description
// lines, and a fixed run of trailing fields each on its own line: tax rate,
// "UNIT" marker, quantity, unit price, extended total.
type Universal struct {
	logger *slog.Logger
}

func NewUniversal(logger *slog.Logger) *Universal {
	return &Universal{logger: orDefault(logger)}
}

var (
	universalInvoiceNoRe = regexp.MustCompile(`Invoice\s*No[:\s]*\n?(SINV-\d+)`)
	universalDateRe      = regexp.MustCompile(`Date[:\s]*\n?(\d{4}-\d{2}-\d{2})`)

	taxRateLineRe    = regexp.MustCompile(`^\d+\.\d{2}$`)
	priceOnlyLineRe  = regexp.MustCompile(`^\$(\d+\.\d{2})$`)
	universalDescCap = 8
)

func (p *Universal) Distributor() entity.Distributor {
	return entity.DistributorUniversal
}

func (p *Universal) Parse(text string) (*entity.Invoice, error) {
	inv := &entity.Invoice{Distributor: entity.DistributorUniversal}

	if m := universalInvoiceNoRe.FindStringSubmatch(text); m != nil {
		inv.InvoiceNumber = m[1]
	}
	if m := universalDateRe.FindStringSubmatch(text); m != nil {
		inv.InvoiceDate = m[1]
	}

	lines := Lines(text)
	for i := 0; i < len(lines); {
		item, next, ok := p.scanItem(lines, i)
		if !ok {
			i++
			continue
		}
		p.logger.Debug("parsed item",
			"distributor", inv.Distributor,
			"sku", item.SKU,
			"upc", item.UPC,
			"quantity", item.Quantity,
			"unit_price", item.UnitPrice)
		inv.Items = append(inv.Items, item)
		i = next
	}
	return inv, nil
}

func (p *Universal) scanItem(lines []string, start int) (entity.LineItem, int, bool) {
	var (
		upc    string
		sku    string
		descs  []string
		taxIdx = -1
	)

	for state := seekingItemStart; ; {
		switch state {
		case seekingItemStart:
			if !upcLineRe.MatchString(lines[start]) || start+2 >= len(lines) {
				return entity.LineItem{}, 0, false
			}
			upc = lines[start]
			sku = lines[start+1]
			state = consumingDescription

		case consumingDescription:
			for j := start + 2; j < min(start+2+universalDescCap, len(lines)); j++ {
				if taxRateLineRe.MatchString(lines[j]) {
					taxIdx = j
					break
				}
				// Running into the next item's UPC means this block never
				// reached its field run; treat it as malformed.
				if upcLineRe.MatchString(lines[j]) {
					return entity.LineItem{}, 0, false
				}
				descs = append(descs, lines[j])
			}
			if taxIdx < 0 || len(descs) == 0 {
				return entity.LineItem{}, 0, false
			}
			state = extractingNumericFields

		case extractingNumericFields:
			// Fixed field run: tax rate, UNIT, quantity, unit price, total.
			if taxIdx+3 >= len(lines) || lines[taxIdx+1] != "UNIT" {
				return entity.LineItem{}, 0, false
			}
			qty, err := strconv.Atoi(lines[taxIdx+2])
			if err != nil {
				return entity.LineItem{}, 0, false
			}
			m := priceOnlyLineRe.FindStringSubmatch(lines[taxIdx+3])
			if m == nil {
				return entity.LineItem{}, 0, false
			}
			price, err := decimal.NewFromString(m[1])
			if err != nil {
				return entity.LineItem{}, 0, false
			}
			next := taxIdx + 4
			if next < len(lines) && priceOnlyLineRe.MatchString(lines[next]) {
				next++ // extended total, not needed
			}
			return entity.LineItem{
				SKU:       sku,
				UPC:       upc,
				Name:      strings.Join(descs, " "),
				Quantity:  float64(qty),
				UnitPrice: price,
			}, next, true
		}
	}
}
