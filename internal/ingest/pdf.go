// Package ingest discovers invoice PDFs and extracts their text, one line
// per visual row, which is the shape the vendor parsers expect.
package ingest

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/meeplemtl/invoice-scanner/internal/common"
)

// ExtractText pulls the text of every page of a PDF. Words on the same
// visual row are joined with single spaces and rows become lines, preserving
// the layout the vendor parsers key on.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", common.NewAppError("PDF_OPEN_FAILED", "cannot open pdf", err)
	}
	defer f.Close()

	var sb strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", common.NewAppError("PDF_TEXT_FAILED", "cannot extract page text", err)
		}
		for _, row := range rows {
			var words []string
			for _, word := range row.Content {
				if w := strings.TrimSpace(word.S); w != "" {
					words = append(words, w)
				}
			}
			if len(words) > 0 {
				sb.WriteString(strings.Join(words, " "))
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String(), nil
}
