// Command build-cache pulls the full Lightspeed item catalog into the local
// cache file. Run it before the first scan and whenever the store's catalog
// has drifted.
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

	"github.com/meeplemtl/invoice-scanner/internal/catalog"
	"github.com/meeplemtl/invoice-scanner/internal/common"
	"github.com/meeplemtl/invoice-scanner/internal/lightspeed"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()

	out := flag.String("out", "", "cache file path (defaults to CATALOG_CACHE_FILE)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	cachePath := cfg.Files.CacheFile
	if *out != "" {
		cachePath = *out
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

	previous := catalog.New(logger)
	prevCount := 0
	if err := previous.Load(cachePath); err == nil {
		prevCount = previous.Len()
	} else if !errors.Is(err, common.ErrNotFound) {
		logger.Warn("previous cache unreadable, rebuilding from scratch", "error", err)
	}

	cache := catalog.New(logger)
	fetched, err := cache.FetchAll(ctx, client, catalog.FetchConfig{
		PageSize:            cfg.Pacing.PageSize,
		PageDelay:           cfg.Pacing.PageDelay,
		RateLimitBackoff:    cfg.Pacing.RateLimitBackoff,
		MaxRateLimitRetries: cfg.Pacing.MaxRateLimitRetries,
	})
	if err != nil {
		// A partial cache is worse than the previous full one, so keep the
		// old file and report the failure.
		printError("Error: catalog fetch incomplete after %d items: %v\n", fetched, err)
		os.Exit(1)
	}

	if err := cache.Save(cachePath); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("catalog cache rebuilt",
		"path", cachePath,
		"entries", cache.Len(),
		"previous_entries", prevCount,
		"delta", cache.Len()-prevCount,
	)
}
