package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// Asmodee parses Asmodee Canada invoices. An item block is a bare quantity
// line, an "EA" unit marker, a SKU line, then 1–3 wrapped description lines
// terminated by a line starting with "$". The first following $-amount is the
// unit price and the first 12–13 digit line after it is the UPC (optional).
type Asmodee struct {
	logger *slog.Logger
}

func NewAsmodee(logger *slog.Logger) *Asmodee {
	return &Asmodee{logger: orDefault(logger)}
}

var (
	asmodeeInvoiceNoRe = regexp.MustCompile(`N\s*[°o]*\s*de\s*facture\s*\n?(\S+)`)
	asmodeeDateRe      = regexp.MustCompile(`Date de facture\s*\n?(\d{4}-\d{2}-\d{2})`)
	asmodeePORe        = regexp.MustCompile(`# de bon de Commande\s*(\S+)`)

	bareQuantityRe = regexp.MustCompile(`^\d+$`)
	dollarAmountRe = regexp.MustCompile(`^\$(\d+\.\d{2})`)
	upcLineRe      = regexp.MustCompile(`^\d{12,13}$`)
)

func (p *Asmodee) Distributor() entity.Distributor {
	return entity.DistributorAsmodee
}

func (p *Asmodee) Parse(text string) (*entity.Invoice, error) {
	text = normalizeText(text)
	inv := &entity.Invoice{Distributor: entity.DistributorAsmodee}

	if m := asmodeeInvoiceNoRe.FindStringSubmatch(text); m != nil {
		inv.InvoiceNumber = m[1]
	}
	if m := asmodeeDateRe.FindStringSubmatch(text); m != nil {
		inv.InvoiceDate = m[1]
	}
	if m := asmodeePORe.FindStringSubmatch(text); m != nil {
		inv.PONumber = m[1]
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

// scanItem tries to read one item block beginning at start. It reports false
// when start is not an item block or the block is malformed; the caller then
// advances by one line and keeps scanning.
func (p *Asmodee) scanItem(lines []string, start int) (entity.LineItem, int, bool) {
	var (
		qty      int
		sku      string
		descs    []string
		price    decimal.Decimal
		priceIdx = -1
		upc      string
		upcIdx   = -1
	)
	descStart := start + 3

	for state := seekingItemStart; ; {
		switch state {
		case seekingItemStart:
			if !bareQuantityRe.MatchString(lines[start]) || start+1 >= len(lines) || lines[start+1] != "EA" {
				return entity.LineItem{}, 0, false
			}
			n, err := strconv.Atoi(lines[start])
			if err != nil {
				return entity.LineItem{}, 0, false
			}
			qty = n
			if start+2 < len(lines) {
				sku = lines[start+2]
			}
			state = consumingDescription

		case consumingDescription:
			for j := descStart; j < min(start+7, len(lines)); j++ {
				if strings.HasPrefix(lines[j], "$") {
					break
				}
				descs = append(descs, lines[j])
			}
			state = extractingNumericFields

		case extractingNumericFields:
			numStart := descStart + len(descs)
			for j := numStart; j < min(start+10, len(lines)); j++ {
				if m := dollarAmountRe.FindStringSubmatch(lines[j]); m != nil {
					v, err := decimal.NewFromString(m[1])
					if err != nil {
						return entity.LineItem{}, 0, false
					}
					price = v
					priceIdx = j
					break
				}
			}
			upcStart := numStart
			if priceIdx >= 0 {
				upcStart = priceIdx + 1
			}
			for j := upcStart; j < min(start+15, len(lines)); j++ {
				if upcLineRe.MatchString(lines[j]) {
					upc = lines[j]
					upcIdx = j
					break
				}
			}

			next := numStart
			if priceIdx >= 0 {
				next = priceIdx + 1
			}
			if upcIdx >= 0 {
				next = upcIdx + 1
			}
			name := strings.Join(strings.Fields(strings.Join(descs, " ")), " ")
			return entity.LineItem{
				SKU:       sku,
				UPC:       upc,
				Name:      name,
				Quantity:  float64(qty),
				UnitPrice: price,
			}, next, true
		}
	}
}
