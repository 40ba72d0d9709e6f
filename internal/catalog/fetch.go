package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meeplemtl/invoice-scanner/internal/common"
	"github.com/meeplemtl/invoice-scanner/internal/entity"
	"github.com/meeplemtl/invoice-scanner/internal/lightspeed"
)

// FetchConfig is the pacing and retry policy for a full catalog fetch.
type FetchConfig struct {
	PageSize            int
	PageDelay           time.Duration
	RateLimitBackoff    time.Duration
	MaxRateLimitRetries int
}

// FetchAll walks every page of the remote item listing and loads the entries
// into the cache. Rate-limited pages are retried up to MaxRateLimitRetries
// times with a fixed backoff; any other failure, or retry exhaustion, stops
// the walk and returns the error alongside whatever was fetched so far. The
// partial cache remains usable.
func (c *Cache) FetchAll(ctx context.Context, client *lightspeed.Client, fc FetchConfig) (int, error) {
	pageURL := client.FirstItemsURL(fc.PageSize)
	added := 0
	page := 0

	for pageURL != "" {
		page++
		items, next, count, err := c.fetchPage(ctx, client, pageURL, fc)
		if err != nil {
			return added, common.WrapError(err, fmt.Sprintf("fetch catalog page %d", page))
		}
		for _, it := range items {
			key, entry, ok := entryFromItem(it)
			if !ok {
				c.logger.Warn("skipping item without usable id", "description", it.Description)
				continue
			}
			c.Put(key, entry)
			added++
		}
		c.logger.Info("catalog page fetched", "page", page, "items", len(items), "total_reported", count)

		pageURL = next
		if pageURL != "" && fc.PageDelay > 0 {
			if err := sleepCtx(ctx, fc.PageDelay); err != nil {
				return added, err
			}
		}
	}
	return added, nil
}

func (c *Cache) fetchPage(ctx context.Context, client *lightspeed.Client, pageURL string, fc FetchConfig) ([]lightspeed.Item, string, int, error) {
	retries := 0
	for {
		items, next, count, err := client.ListItemsPage(ctx, pageURL)
		if err == nil {
			return items, next, count, nil
		}
		if !lightspeed.IsRateLimited(err) || retries >= fc.MaxRateLimitRetries {
			return nil, "", 0, err
		}
		retries++
		c.logger.Warn("rate limited, backing off",
			"url", pageURL,
			"attempt", retries,
			"backoff", fc.RateLimitBackoff.String(),
		)
		if serr := sleepCtx(ctx, fc.RateLimitBackoff); serr != nil {
			return nil, "", 0, serr
		}
	}
}

// entryFromItem converts a wire item into a cache entry and its key. Items
// without a parseable id are unusable and reported false. UPC-less items get
// a synthetic key so they remain reachable by SKU scan.
func entryFromItem(it lightspeed.Item) (string, entity.CatalogEntry, bool) {
	id, err := strconv.Atoi(it.ItemID)
	if err != nil || id == 0 {
		return "", entity.CatalogEntry{}, false
	}
	entry := entity.CatalogEntry{
		ItemID:          id,
		Description:     it.Description,
		SKU:             it.CustomSku,
		ManufacturerSKU: it.ManufacturerSku,
		Price:           decimalOrZero(it.ShopPrice()),
		DefaultCost:     decimalOrZero(it.DefaultCost),
		Archived:        it.Archived == "true",
		Tags:            it.TagNames(),
	}
	if cat, err := strconv.Atoi(it.CategoryID); err == nil {
		entry.CategoryID = cat
	}
	if entry.SKU == "" {
		entry.SKU = it.SystemSku
	}

	key := it.UPC
	if key == "" {
		key = entity.SyntheticKey(id)
	}
	return key, entry, true
}

func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
