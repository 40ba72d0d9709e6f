package parser

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Lines turns a raw extracted text blob into the ordered sequence of
// non-empty, trimmed lines that the line-cursor parsers scan over.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// normalizeText folds the text into NFC form. PDF extractors emit accented
// characters in either composed or decomposed form depending on the producing
// tool, and the French-language invoices (ÎLO, Randolph) need a stable form
// for marker and pattern matching.
func normalizeText(text string) string {
	return norm.NFC.String(text)
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// commaFloat parses a French-format decimal ("2,00" → 2.0).
func commaFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

// commaDecimal parses a French-format decimal into an exact amount.
func commaDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.Replace(s, ",", ".", 1))
}
