// Command process-missing drains the unmatched-item queue: each identifier
// is checked against the remote catalog and, when truly absent, created as a
// new item with the vendor's defaults. Processed rows leave the queue;
// failures stay for the next attempt.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/meeplemtl/invoice-scanner/internal/catalog"
	"github.com/meeplemtl/invoice-scanner/internal/common"
	"github.com/meeplemtl/invoice-scanner/internal/entity"
	"github.com/meeplemtl/invoice-scanner/internal/lightspeed"
	"github.com/meeplemtl/invoice-scanner/internal/reconcile"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()

	vendorName := flag.String("vendor", "", "distributor whose defaults new items get (required)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *vendorName == "" {
		printError("Error: -vendor is required\n")
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	vendors, err := common.LoadVendors(cfg.Files.VendorsFile)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	vendor, ok := vendors[*vendorName]
	if !ok {
		printError("Error: no vendor mapping for %q in %s\n", *vendorName, cfg.Files.VendorsFile)
		os.Exit(1)
	}

	queued, err := reconcile.ReadQueue(cfg.Files.QueueFile)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			logger.Info("queue file does not exist, nothing to do", "path", cfg.Files.QueueFile)
			return
		}
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if len(queued) == 0 {
		logger.Info("queue is empty, nothing to do")
		return
	}

	cache := catalog.New(logger)
	if err := cache.Load(cfg.Files.CacheFile); err != nil && !errors.Is(err, common.ErrNotFound) {
		printError("Error: %v\n", err)
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

	var remaining []reconcile.QueuedItem
	created, found := 0, 0
	for _, row := range queued {
		if err := ctx.Err(); err != nil {
			remaining = append(remaining, row)
			continue
		}
		switch err := processRow(ctx, client, cache, vendor, row, logger); {
		case err == nil:
			created++
		case errors.Is(err, errAlreadyExists):
			found++
		default:
			logger.Error("queue row failed", "identifier", row.Identifier, "error", err)
			remaining = append(remaining, row)
		}
	}

	if err := cache.Save(cfg.Files.CacheFile); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if err := rewriteQueue(cfg.Files.QueueFile, remaining); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("queue processed",
		"rows", len(queued),
		"created", created,
		"already_existed", found,
		"remaining", len(remaining),
	)
}

var errAlreadyExists = errors.New("item already in remote catalog")

// processRow resolves one queued identifier. UPCs are checked remotely
// first, since the local cache may simply be stale; SKUs have no reliable
// remote lookup and go straight to creation.
func processRow(ctx context.Context, client *lightspeed.Client, cache *catalog.Cache, vendor common.Vendor, row reconcile.QueuedItem, logger *slog.Logger) error {
	isSKU := reconcile.IsSKU(row.Identifier)

	if !isSKU {
		items, err := client.ItemsByUPC(ctx, row.Identifier)
		if err != nil {
			return common.WrapError(err, "remote lookup")
		}
		if len(items) > 0 {
			id, convErr := strconv.Atoi(items[0].ItemID)
			if convErr == nil {
				cache.Put(row.Identifier, entity.CatalogEntry{
					ItemID:      id,
					Description: items[0].Description,
				})
			}
			logger.Info("item already existed remotely", "upc", row.Identifier, "item_id", items[0].ItemID)
			return errAlreadyExists
		}
	}

	payload := lightspeed.NewItemPayload(row.Name, "0",
		vendor.VendorID, vendor.CategoryID, vendor.TaxClassID, vendor.NewTagID)
	if isSKU {
		payload.ManufacturerSku = row.Identifier
	} else {
		payload.UPC = row.Identifier
	}

	itemID, err := client.CreateItem(ctx, payload)
	if err != nil {
		return common.WrapError(err, "create item")
	}

	entry := entity.CatalogEntry{
		ItemID:      itemID,
		Description: row.Name,
		CategoryID:  vendor.CategoryID,
		Tags:        []string{"New"},
	}
	key := row.Identifier
	if isSKU {
		entry.ManufacturerSKU = row.Identifier
		key = entity.SyntheticKey(itemID)
	}
	cache.Put(key, entry)
	logger.Info("item created", "identifier", row.Identifier, "item_id", itemID)
	return nil
}

// rewriteQueue replaces the queue file with the rows that still need work.
func rewriteQueue(path string, rows []reconcile.QueuedItem) error {
	if len(rows) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return common.WrapError(err, "remove drained queue")
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return common.WrapError(err, "rewrite queue")
	}
	defer f.Close()
	for _, row := range rows {
		if _, err := fmt.Fprintf(f, "%s\t%s\n", row.Identifier, row.Name); err != nil {
			return common.WrapError(err, "rewrite queue")
		}
	}
	return nil
}
