// Package parser extracts structured invoices from the text of distributor
// PDF documents. Each distributor has its own loosely formatted layout, so
// each gets its own parser; all implement the same contract and are selected
// by the detector.
//
// The line-cursor parsers share a scanning discipline: seek an item-start
// signature, consume description continuation lines, then extract the numeric
// fields. A malformed item block is skipped and scanning resumes at the next
// line; it never aborts the document.
package parser

import (
	"errors"
	"log/slog"

	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

// Parser converts one document's extracted text into an Invoice.
type Parser interface {
	Distributor() entity.Distributor
	Parse(text string) (*entity.Invoice, error)
}

// ErrUnrecognized is returned by Detect when no distributor marker is found.
// The caller reports it and skips the document; it is not fatal to a batch.
var ErrUnrecognized = errors.New("distributor not recognized")

// ErrNoItems is returned when a parser recognizes the layout but finds no
// item blocks at all.
var ErrNoItems = errors.New("no items found in invoice")

// scanState names the phases of the shared line-cursor discipline. Keeping
// the phase explicit keeps each vendor's transition predicates testable.
type scanState int

const (
	seekingItemStart scanState = iota
	consumingDescription
	extractingNumericFields
)

// For returns the parser for a detected distributor tag.
func For(d entity.Distributor, logger *slog.Logger) (Parser, error) {
	switch d {
	case entity.DistributorAsmodee:
		return NewAsmodee(logger), nil
	case entity.DistributorUniversal:
		return NewUniversal(logger), nil
	case entity.DistributorILO:
		return NewILO(logger), nil
	case entity.DistributorRandolph:
		return NewRandolph(logger), nil
	case entity.DistributorQuadSource:
		return NewQuadSource(logger), nil
	default:
		return nil, ErrUnrecognized
	}
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
