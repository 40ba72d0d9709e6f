// Package history records scan runs, the invoices they parsed, and the
// orders they submitted in a local sqlite database for later review.
package history

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/meeplemtl/invoice-scanner/internal/common"
	"github.com/meeplemtl/invoice-scanner/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	invoices INTEGER NOT NULL DEFAULT 0,
	resolved INTEGER NOT NULL DEFAULT 0,
	unmatched INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS invoices (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(id),
	source_file TEXT NOT NULL,
	distributor TEXT NOT NULL,
	invoice_number TEXT,
	invoice_date TEXT,
	po_number TEXT,
	items INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(id),
	order_id INTEGER NOT NULL,
	vendor_id INTEGER NOT NULL,
	lines_created INTEGER NOT NULL,
	lines_failed INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
`

// Store persists run history. It is safe for the sequential single-writer
// use this application makes of it.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open history database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, common.WrapError(err, "initialize history schema")
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun opens a run record and returns its id.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", common.WrapError(err, "record run start")
	}
	return id, nil
}

// FinishRun closes a run record with its outcome counts.
func (s *Store) FinishRun(ctx context.Context, runID string, invoices, resolved, unmatched int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, invoices = ?, resolved = ?, unmatched = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), invoices, resolved, unmatched, runID)
	return common.WrapError(err, "record run finish")
}

// RecordInvoice stores one parsed invoice under a run.
func (s *Store) RecordInvoice(ctx context.Context, runID, sourceFile string, inv *entity.Invoice) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invoices (id, run_id, source_file, distributor, invoice_number, invoice_date, po_number, items)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, sourceFile,
		string(inv.Distributor), inv.InvoiceNumber, inv.InvoiceDate, inv.PONumber, len(inv.Items))
	return common.WrapError(err, "record invoice")
}

// RecordOrder stores one submitted purchase order under a run.
func (s *Store) RecordOrder(ctx context.Context, runID string, orderID, vendorID, linesCreated, linesFailed int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (id, run_id, order_id, vendor_id, lines_created, lines_failed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, orderID, vendorID, linesCreated, linesFailed,
		time.Now().UTC().Format(time.RFC3339))
	return common.WrapError(err, "record order")
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID         string
	StartedAt  string
	FinishedAt string
	Invoices   int
	Resolved   int
	Unmatched  int
}

// RecentRuns lists the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, ''), invoices, resolved, unmatched
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, common.WrapError(err, "list runs")
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Invoices, &r.Resolved, &r.Unmatched); err != nil {
			return nil, common.WrapError(err, "scan run row")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
