// Command create-po parses the invoices in a directory and submits one
// purchase order per distributor to Lightspeed. Items the catalog does not
// know about are queued for process-missing instead of blocking the order.
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

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/meeplemtl/invoice-scanner/internal/catalog"
	"github.com/meeplemtl/invoice-scanner/internal/common"
	"github.com/meeplemtl/invoice-scanner/internal/entity"
	"github.com/meeplemtl/invoice-scanner/internal/history"
	"github.com/meeplemtl/invoice-scanner/internal/ingest"
	"github.com/meeplemtl/invoice-scanner/internal/lightspeed"
	"github.com/meeplemtl/invoice-scanner/internal/parser"
	"github.com/meeplemtl/invoice-scanner/internal/reconcile"
	"github.com/meeplemtl/invoice-scanner/internal/submit"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "", "invoice directory (defaults to INVOICE_DIR)")
	shipStr := flag.String("ship", "0", "shipping cost to put on each order header")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	shipCost, err := decimal.NewFromString(*shipStr)
	if err != nil {
		printError("Error: invalid -ship value %q\n", *shipStr)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	invoiceDir := cfg.Files.InvoiceDir
	if *dir != "" {
		invoiceDir = *dir
	}

	vendors, err := common.LoadVendors(cfg.Files.VendorsFile)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
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

	creds, err := lightspeed.LoadCredentials(cfg.Lightspeed.TokenFile)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	client := lightspeed.NewClient(lightspeed.Config{
		AccountID:    cfg.Lightspeed.AccountID,
		ClientID:     cfg.Lightspeed.ClientID,
		ClientSecret: cfg.Lightspeed.ClientSecret,
		APIBase:      cfg.Lightspeed.APIBase,
		TokenURL:     cfg.Lightspeed.TokenURL,
		TokenFile:    cfg.Lightspeed.TokenFile,
		Timeout:      cfg.Lightspeed.HTTPTimeout,
	}, creds, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := history.Open(cfg.Files.HistoryDB, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

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

	// One order per distributor, so invoices are grouped before merging.
	byDistributor := make(map[entity.Distributor][]*entity.Invoice)
	var order []entity.Distributor
	total := 0
	for _, path := range files {
		inv := parseInvoice(path, logger)
		if inv == nil {
			continue
		}
		if _, seen := byDistributor[inv.Distributor]; !seen {
			order = append(order, inv.Distributor)
		}
		byDistributor[inv.Distributor] = append(byDistributor[inv.Distributor], inv)
		if err := store.RecordInvoice(ctx, runID, path, inv); err != nil {
			logger.Warn("history record failed", "file", path, "error", err)
		}
		total++
	}

	queue := reconcile.NewQueue(cfg.Files.QueueFile, logger)
	driver := submit.NewDriver(client, submit.Config{
		ShopID:    cfg.Lightspeed.ShopID,
		LineDelay: cfg.Pacing.LineDelay,
	}, logger)

	resolved, unmatched := 0, 0
	for _, dist := range order {
		vendor, ok := vendors[string(dist)]
		if !ok {
			printError("Error: no vendor mapping for %s in %s\n", dist, cfg.Files.VendorsFile)
			os.Exit(1)
		}
		result := reconcile.Resolve(cache, reconcile.Merge(byDistributor[dist]), logger)
		resolved += len(result.Resolved)
		unmatched += len(result.Unmatched)
		for _, item := range result.Unmatched {
			if err := queue.Append(item); err != nil {
				logger.Error("queue append failed", "identifier", item.Identifier(), "error", err)
			}
		}
		if len(result.Resolved) == 0 {
			logger.Warn("nothing to order", "distributor", dist)
			continue
		}

		report, err := driver.Submit(ctx, vendor.VendorID, result.Resolved, shipCost)
		if err != nil {
			printError("Error: order for %s failed: %v\n", dist, err)
			os.Exit(1)
		}
		if err := store.RecordOrder(ctx, runID, report.OrderID, vendor.VendorID, len(report.Created), len(report.Failed)); err != nil {
			logger.Warn("history record failed", "order_id", report.OrderID, "error", err)
		}
		for _, failed := range report.Failed {
			printError("Warning: line %q not added to order %d: %v\n",
				failed.Resolution.Item.Name, report.OrderID, failed.Err)
		}
	}

	if err := store.FinishRun(ctx, runID, total, resolved, unmatched); err != nil {
		logger.Warn("history finish failed", "error", err)
	}
	logger.Info("purchase orders complete",
		"invoices", total,
		"distributors", len(order),
		"resolved", resolved,
		"unmatched", unmatched,
	)
}

func parseInvoice(path string, logger *slog.Logger) *entity.Invoice {
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
		return nil
	}
	inv, err := p.Parse(text)
	if err != nil {
		logger.Error("invoice parse failed", "file", path, "distributor", dist, "error", err)
		return nil
	}
	return inv
}
