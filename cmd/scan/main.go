// Command scan parses every invoice PDF in a directory, reconciles the
// merged order against the local catalog cache, queues unmatched items, and
// writes an order-review workbook. With -watch it keeps running and picks up
// new PDFs as they land.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/meeplemtl/invoice-scanner/internal/catalog"
	"github.com/meeplemtl/invoice-scanner/internal/common"
	"github.com/meeplemtl/invoice-scanner/internal/entity"
	"github.com/meeplemtl/invoice-scanner/internal/export"
	"github.com/meeplemtl/invoice-scanner/internal/history"
	"github.com/meeplemtl/invoice-scanner/internal/ingest"
	"github.com/meeplemtl/invoice-scanner/internal/parser"
	"github.com/meeplemtl/invoice-scanner/internal/reconcile"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// parseFile turns one PDF into an invoice, or nil when the document is not a
// recognized vendor layout. Parse failures are reported but never stop the
// run; the remaining documents still get processed.
func parseFile(path string, logger *slog.Logger) *entity.Invoice {
	text, err := ingest.ExtractText(path)
	if err != nil {
		logger.Error("pdf extraction failed", "file", path, "error", err)
		return nil
	}
	dist, err := parser.Detect(text)
	if err != nil {
		logger.Warn("unrecognized document, skipping", "file", path)
		return nil
	}
	p, err := parser.For(dist, logger)
	if err != nil {
		logger.Error("no parser for distributor", "file", path, "distributor", dist)
		return nil
	}
	inv, err := p.Parse(text)
	if err != nil {
		logger.Error("invoice parse failed", "file", path, "distributor", dist, "error", err)
		return nil
	}
	logger.Info("invoice parsed",
		"file", path,
		"distributor", inv.Distributor,
		"invoice_number", inv.InvoiceNumber,
		"items", len(inv.Items),
	)
	return inv
}

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "", "invoice directory (defaults to INVOICE_DIR)")
	out := flag.String("out", "order_review.xlsx", "order-review workbook path")
	watch := flag.Bool("watch", false, "watch the directory for new PDFs instead of a one-shot scan")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	invoiceDir := cfg.Files.InvoiceDir
	if *dir != "" {
		invoiceDir = *dir
	}

	cache := catalog.New(logger)
	if err := cache.Load(cfg.Files.CacheFile); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printError("Error: no catalog cache at %s; run build-cache first\n", cfg.Files.CacheFile)
		} else {
			printError("Error: %v\n", err)
		}
		os.Exit(1)
	}
	logger.Info("catalog cache ready", "entries", cache.Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := history.Open(cfg.Files.HistoryDB, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	queue := reconcile.NewQueue(cfg.Files.QueueFile, logger)

	if *watch {
		runWatch(ctx, invoiceDir, cache, queue, logger)
		return
	}

	runID, err := store.BeginRun(ctx)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	files, err := ingest.ListPDFs(invoiceDir)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		printError("Error: no PDF invoices under %s\n", invoiceDir)
		os.Exit(1)
	}

	var invoices []*entity.Invoice
	for _, path := range files {
		inv := parseFile(path, logger)
		if inv == nil {
			continue
		}
		invoices = append(invoices, inv)
		if err := store.RecordInvoice(ctx, runID, path, inv); err != nil {
			logger.Warn("history record failed", "file", path, "error", err)
		}
	}

	result := reconcile.Resolve(cache, reconcile.Merge(invoices), logger)
	for _, item := range result.Unmatched {
		if err := queue.Append(item); err != nil {
			logger.Error("queue append failed", "identifier", item.Identifier(), "error", err)
		}
	}

	raw, err := export.NewService(logger).OrderReviewXLSX(result)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, raw, 0644); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	if err := store.FinishRun(ctx, runID, len(invoices), len(result.Resolved), len(result.Unmatched)); err != nil {
		logger.Warn("history finish failed", "error", err)
	}
	logger.Info("scan complete",
		"invoices", len(invoices),
		"resolved", len(result.Resolved),
		"unmatched", len(result.Unmatched),
		"review", *out,
	)
}

// runWatch processes PDFs as they appear. Each document is parsed and
// resolved on its own; unmatched items accumulate in the queue.
func runWatch(ctx context.Context, dir string, cache *catalog.Cache, queue *reconcile.Queue, logger *slog.Logger) {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:     dir,
		Debounce: 2 * time.Second,
	}, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("watching for invoices", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-events:
			if !ok {
				return
			}
			inv := parseFile(path, logger)
			if inv == nil {
				continue
			}
			result := reconcile.Resolve(cache, reconcile.Merge([]*entity.Invoice{inv}), logger)
			for _, item := range result.Unmatched {
				if err := queue.Append(item); err != nil {
					logger.Error("queue append failed", "identifier", item.Identifier(), "error", err)
				}
			}
		case err, ok := <-errs:
			if ok && err != nil {
				logger.Error("watch error", "error", err)
			}
		}
	}
}
