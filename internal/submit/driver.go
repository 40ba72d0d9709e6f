// Package submit drives purchase-order creation against the Lightspeed API
// from a resolved, merged order.
package submit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meeplemtl/invoice-scanner/internal/common"
	"github.com/meeplemtl/invoice-scanner/internal/lightspeed"
	"github.com/meeplemtl/invoice-scanner/internal/reconcile"
)

// Config is the submission policy for one run.
type Config struct {
	ShopID    int
	LineDelay time.Duration
}

// FailedLine records a line that could not be added to the order.
type FailedLine struct {
	Resolution reconcile.Resolution
	Err        error
}

// Report summarizes one submission.
type Report struct {
	OrderID int
	Created []reconcile.Resolution
	Failed  []FailedLine
}

// Driver submits orders sequentially, pacing line creation to stay under the
// API rate limit.
type Driver struct {
	client *lightspeed.Client
	cfg    Config
	logger *slog.Logger
}

func NewDriver(client *lightspeed.Client, cfg Config, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{client: client, cfg: cfg, logger: logger}
}

// Submit creates a purchase order for vendorID and adds one line per
// resolution. A failure before or during header creation aborts the whole
// run; a line failure is recorded in the report and submission moves on to
// the next line. Successful lines are followed by the configured delay.
func (d *Driver) Submit(ctx context.Context, vendorID int, resolutions []reconcile.Resolution, shipCost decimal.Decimal) (*Report, error) {
	shop, err := d.client.GetShop(ctx, d.cfg.ShopID)
	if err != nil {
		return nil, common.WrapError(err, "fetch shop")
	}
	if shop.IsArchived() {
		return nil, common.NewAppError("SHOP_ARCHIVED",
			fmt.Sprintf("shop %d (%s) is archived and cannot take orders", d.cfg.ShopID, shop.Name),
			common.ErrInvalidInput)
	}

	orderID, err := d.client.CreateOrder(ctx, vendorID, d.cfg.ShopID, shipCost)
	if err != nil {
		return nil, common.WrapError(err, "create order header")
	}
	d.logger.Info("order created", "order_id", orderID, "vendor_id", vendorID, "lines", len(resolutions))

	report := &Report{OrderID: orderID}
	for _, res := range resolutions {
		line := lightspeed.OrderLine{
			Quantity:      int(math.Round(res.Item.Quantity)),
			Price:         res.Item.UnitPrice,
			OriginalPrice: res.Item.UnitPrice,
			ItemID:        res.Entry.ItemID,
			OrderID:       orderID,
		}
		if err := d.client.CreateOrderLine(ctx, line); err != nil {
			d.logger.Error("order line failed",
				"order_id", orderID,
				"item_id", res.Entry.ItemID,
				"name", res.Item.Name,
				"error", err,
			)
			report.Failed = append(report.Failed, FailedLine{Resolution: res, Err: err})
			continue
		}
		report.Created = append(report.Created, res)
		d.logger.Debug("order line added", "order_id", orderID, "item_id", res.Entry.ItemID, "quantity", line.Quantity)

		if d.cfg.LineDelay > 0 {
			t := time.NewTimer(d.cfg.LineDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return report, ctx.Err()
			case <-t.C:
			}
		}
	}
	d.logger.Info("submission finished",
		"order_id", orderID,
		"created", len(report.Created),
		"failed", len(report.Failed),
	)
	return report, nil
}
