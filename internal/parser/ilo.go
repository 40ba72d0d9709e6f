package parser

import (
	"log/slog"
	"regexp"
	"strconv"

	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// ILO parses ÎLO invoices. Item rows are single lines: SKU, accented name,
// a throwaway decimal, the ordered/shipped/backordered integer triplet, and a
// comma-decimal unit price. Rows with a shipped quantity of zero are dropped
// (backordered-only lines never make it into the order).
type ILO struct {
	logger *slog.Logger
}

func NewILO(logger *slog.Logger) *ILO {
	return &ILO{logger: orDefault(logger)}
}

var (
	iloInvoiceNoRe = regexp.MustCompile(`Facture\s*-\s*\n?(FC\d+)`)
	iloDateRe      = regexp.MustCompile(`Date\s*\n?(\d{4}-\d{2}-\d{2})`)
	iloPORe        = regexp.MustCompile(`Votre nº de commande\s*(\S+)`)

	iloItemRe = regexp.MustCompile(`(?m)(?P<sku>[A-Z0-9\-]+)\s+(?P<name>[A-Za-z0-9 :\-\(\)\[\]'/éÉèÈàÀêÊçÇ]+)\s+\d+\.\d{2}\s+(?P<ordered>\d+)\s+(?P<shipped>\d+)\s+(?P<backordered>\d+)\s+(?P<price>\d{1,3},\d{2})`)
)

func (p *ILO) Distributor() entity.Distributor {
	return entity.DistributorILO
}

func (p *ILO) Parse(text string) (*entity.Invoice, error) {
	text = normalizeText(text)
	inv := &entity.Invoice{Distributor: entity.DistributorILO}

	if m := iloInvoiceNoRe.FindStringSubmatch(text); m != nil {
		inv.InvoiceNumber = m[1]
	}
	if m := iloDateRe.FindStringSubmatch(text); m != nil {
		inv.InvoiceDate = m[1]
	}
	if m := iloPORe.FindStringSubmatch(text); m != nil {
		inv.PONumber = m[1]
	}

	names := iloItemRe.SubexpNames()
	for _, m := range iloItemRe.FindAllStringSubmatch(text, -1) {
		g := map[string]string{}
		for i, n := range names {
			if n != "" {
				g[n] = m[i]
			}
		}
		item, ok := p.buildItem(g)
		if !ok {
			continue
		}
		p.logger.Debug("parsed item",
			"distributor", inv.Distributor,
			"sku", item.SKU,
			"shipped", item.QuantityShipped,
			"unit_price", item.UnitPrice)
		inv.Items = append(inv.Items, item)
	}
	return inv, nil
}

func (p *ILO) buildItem(g map[string]string) (entity.LineItem, bool) {
	ordered, err := strconv.Atoi(g["ordered"])
	if err != nil {
		return entity.LineItem{}, false
	}
	shipped, err := strconv.Atoi(g["shipped"])
	if err != nil {
		return entity.LineItem{}, false
	}
	backordered, err := strconv.Atoi(g["backordered"])
	if err != nil {
		return entity.LineItem{}, false
	}
	if shipped == 0 {
		return entity.LineItem{}, false
	}
	price, err := commaDecimal(g["price"])
	if err != nil {
		return entity.LineItem{}, false
	}
	return entity.LineItem{
		SKU:                 g["sku"],
		Name:                trimmed(g["name"]),
		Quantity:            float64(shipped),
		UnitPrice:           price,
		QuantityOrdered:     ordered,
		QuantityShipped:     shipped,
		QuantityBackordered: backordered,
	}, true
}
