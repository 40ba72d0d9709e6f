package parser

import (
	"strings"

	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// distributorMarkers are checked in order; the first match wins. Order
// matters because the marker strings are not guaranteed disjoint — a vendor
// name can show up in another vendor's free text.
var distributorMarkers = []struct {
	distributor entity.Distributor
	substrings  []string
}{
	{entity.DistributorAsmodee, []string{"Asmodee Canada"}},
	{entity.DistributorUniversal, []string{"Invoice No: SINV", "universaldist.com"}},
	{entity.DistributorILO, []string{"ilo307.com", "ÎLO", "Île"}},
	{entity.DistributorRandolph, []string{"Groupe Randolph", "Randolph"}},
	{entity.DistributorQuadSource, []string{"Quad Source", "QUAD SOURCE"}},
}

// Detect inspects raw text for distributor-identifying markers and returns
// the tag of the parser to invoke. ErrUnrecognized is a terminal condition
// for the document, not an exception: the caller reports and skips it.
func Detect(text string) (entity.Distributor, error) {
	text = normalizeText(text)
	for _, m := range distributorMarkers {
		for _, s := range m.substrings {
			if strings.Contains(text, s) {
				return m.distributor, nil
			}
		}
	}
	return entity.DistributorUnknown, ErrUnrecognized
}
