package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// QuadSource parses Quad Source Canada invoices. An item block starts with a
// part-number-shaped token (letters plus digits or hyphens); the description
// wraps across the following lines, serial numbers included, until a strict
// four-field numeric line carrying quantity, backorder, unit price and
// extended price. The first summary keyword anywhere stops the whole scan.
type QuadSource struct {
	logger *slog.Logger
}

func NewQuadSource(logger *slog.Logger) *QuadSource {
	return &QuadSource{logger: orDefault(logger)}
}

var (
	quadInvoiceNoRe = regexp.MustCompile(`NUMBER\s+(\d+)`)
	quadDateRe      = regexp.MustCompile(`DATE\s+([A-Za-z]+\s+\d+,\s+\d{4})`)

	partNumberRe   = regexp.MustCompile(`^([A-Z0-9\-\.]{5,})`)
	hasLetterRe    = regexp.MustCompile(`[A-Z]`)
	hasDigitRe     = regexp.MustCompile(`[0-9]`)
	quadNumericRe  = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s+(\d+\.\d{1,2})\s+(\d+\.\d{1,2})\s*$`)
	quadStopWords  = []string{"SUBTOTAL", "TOTAL", "BALANCE", "HST", "GST", "CANADIAN", "FREIGHT"}
	quadSkipPrefix = []string{
		"INVOICE", "NUMBER", "CUSTOMER", "QUAD SOURCE", "HTTP", "BILL TO",
		"SHIP TO", "DATE", "ORDER", "REQ.", "BO", "PRICE", "EXTENDED",
		"PART NUMBER", "DESCRIPTION",
	}
)

func (p *QuadSource) Distributor() entity.Distributor {
	return entity.DistributorQuadSource
}

func (p *QuadSource) Parse(text string) (*entity.Invoice, error) {
	inv := &entity.Invoice{Distributor: entity.DistributorQuadSource}

	if m := quadInvoiceNoRe.FindStringSubmatch(text); m != nil {
		inv.InvoiceNumber = m[1]
	}
	if m := quadDateRe.FindStringSubmatch(text); m != nil {
		inv.InvoiceDate = parseQuadDate(m[1])
	}

	lines := Lines(text)
	for i := 0; i < len(lines); {
		line := lines[i]
		upper := strings.ToUpper(line)

		if containsAny(upper, quadStopWords) {
			break
		}
		if hasAnyPrefix(upper, quadSkipPrefix) {
			i++
			continue
		}

		item, consumed, ok := p.scanItem(lines, i)
		if ok {
			p.logger.Debug("parsed item",
				"distributor", inv.Distributor,
				"sku", item.SKU,
				"quantity", item.Quantity,
				"unit_price", item.UnitPrice)
			inv.Items = append(inv.Items, item)
		}
		i += consumed + 1
	}
	return inv, nil
}

// scanItem reads one part-number block starting at lines[i]. consumed is the
// number of extra lines the block used beyond the first; the caller advances
// past them whether or not the block produced an item.
func (p *QuadSource) scanItem(lines []string, i int) (entity.LineItem, int, bool) {
	var (
		part  string
		descs []string
		qty   = -1
		back  int
		price decimal.Decimal
	)
	j := 0

	for state := seekingItemStart; ; {
		switch state {
		case seekingItemStart:
			m := partNumberRe.FindStringSubmatch(lines[i])
			if m == nil {
				return entity.LineItem{}, 0, false
			}
			part = m[1]
			if !hasLetterRe.MatchString(part) ||
				!(hasDigitRe.MatchString(part) || strings.Contains(part, "-")) {
				return entity.LineItem{}, 0, false
			}
			if rest := strings.TrimSpace(lines[i][len(part):]); rest != "" {
				descs = append(descs, rest)
			}
			state = consumingDescription
			j = 1

		case consumingDescription:
			if i+j >= len(lines) || j >= 10 {
				return entity.LineItem{}, j, false
			}
			next := lines[i+j]
			if quadNumericRe.MatchString(next) {
				state = extractingNumericFields
				continue
			}
			// Continuation line, unless it looks like the next part number.
			if !partNumberRe.MatchString(next) {
				descs = append(descs, next)
			}
			j++

		case extractingNumericFields:
			m := quadNumericRe.FindStringSubmatch(lines[i+j])
			q, err := strconv.Atoi(m[1])
			if err != nil {
				return entity.LineItem{}, j, false
			}
			b, err := strconv.Atoi(m[2])
			if err != nil {
				return entity.LineItem{}, j, false
			}
			v, err := decimal.NewFromString(m[3])
			if err != nil {
				return entity.LineItem{}, j, false
			}
			qty, back, price = q, b, v

			name := strings.TrimSpace(strings.Join(descs, " "))
			if name == "" {
				return entity.LineItem{}, j, false
			}
			return entity.LineItem{
				SKU:                 part,
				Name:                name,
				Quantity:            float64(qty),
				UnitPrice:           price,
				QuantityBackordered: back,
			}, j, true
		}
	}
}

func parseQuadDate(s string) string {
	for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
