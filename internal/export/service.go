package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/meeplemtl/invoice-scanner/internal/reconcile"
)

// Service produces XLSX bytes for order review before submission.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// OrderReviewXLSX returns a workbook with one sheet of resolved order lines
// and one of unmatched items, so the operator can eyeball the order before
// it is submitted.
func (s *Service) OrderReviewXLSX(result reconcile.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const orderSheet = "Order"
	const unmatchedSheet = "Unmatched"

	idx, err := f.NewSheet(orderSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(unmatchedSheet); err != nil {
		return nil, err
	}
	_ = f.DeleteSheet("Sheet1")

	write := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	orderHeaders := []string{"Item ID", "SKU", "UPC", "Description", "Quantity", "Unit Cost", "Line Total"}
	for i, h := range orderHeaders {
		write(orderSheet, i+1, 1, h)
	}
	row := 2
	for _, res := range result.Resolved {
		qty := decimal.NewFromFloat(res.Item.Quantity)
		write(orderSheet, 1, row, res.Entry.ItemID)
		write(orderSheet, 2, row, res.Item.SKU)
		write(orderSheet, 3, row, res.Item.UPC)
		write(orderSheet, 4, row, truncate(res.Entry.Description, 140))
		write(orderSheet, 5, row, res.Item.Quantity)
		write(orderSheet, 6, row, res.Item.UnitPrice.StringFixed(2))
		write(orderSheet, 7, row, res.Item.UnitPrice.Mul(qty).StringFixed(2))
		row++
	}

	unmatchedHeaders := []string{"Identifier", "Kind", "Name", "Quantity", "Unit Cost"}
	for i, h := range unmatchedHeaders {
		write(unmatchedSheet, i+1, 1, h)
	}
	row = 2
	for _, item := range result.Unmatched {
		kind := "UPC"
		if reconcile.IsSKU(item.Identifier()) {
			kind = "SKU"
		}
		write(unmatchedSheet, 1, row, item.Identifier())
		write(unmatchedSheet, 2, row, kind)
		write(unmatchedSheet, 3, row, truncate(item.Name, 140))
		write(unmatchedSheet, 4, row, item.Quantity)
		write(unmatchedSheet, 5, row, item.UnitPrice.StringFixed(2))
		row++
	}

	_ = f.SetColWidth(orderSheet, "A", "A", 10)
	_ = f.SetColWidth(orderSheet, "B", "C", 18)
	_ = f.SetColWidth(orderSheet, "D", "D", 48)
	_ = f.SetColWidth(orderSheet, "E", "G", 12)
	_ = f.SetColWidth(unmatchedSheet, "A", "A", 18)
	_ = f.SetColWidth(unmatchedSheet, "C", "C", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"resolved_rows", len(result.Resolved),
		"unmatched_rows", len(result.Unmatched),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
