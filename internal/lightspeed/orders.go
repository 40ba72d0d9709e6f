package lightspeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type orderPayload struct {
	VendorID int             `json:"vendorID"`
	ShopID   int             `json:"shopID"`
	ShipCost decimal.Decimal `json:"shipCost"`
}

type orderCreateResponse struct {
	Order *struct {
		OrderID flexInt `json:"orderID"`
	} `json:"Order"`
}

// flexInt decodes an integer that the API may send as either a number or a
// quoted string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

// CreateOrder creates a purchase-order header and returns its id.
func (c *Client) CreateOrder(ctx context.Context, vendorID, shopID int, shipCost decimal.Decimal) (int, error) {
	payload := orderPayload{VendorID: vendorID, ShopID: shopID, ShipCost: shipCost}
	raw, err := c.do(ctx, http.MethodPost, c.accountURL("Order.json"), nil, payload)
	if err != nil {
		return 0, err
	}
	var resp orderCreateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("decode order response: %w", err)
	}
	if resp.Order == nil {
		return 0, fmt.Errorf("order response has no Order key: %s", string(raw))
	}
	return int(resp.Order.OrderID), nil
}

// OrderLine is one purchase-order line.
type OrderLine struct {
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	NumReceived   int             `json:"numReceived"`
	ItemID        int             `json:"itemID"`
	OrderID       int             `json:"orderID"`
}

// CreateOrderLine adds one line to an existing purchase order.
func (c *Client) CreateOrderLine(ctx context.Context, line OrderLine) error {
	_, err := c.do(ctx, http.MethodPost, c.accountURL("OrderLine.json"), nil, line)
	return err
}

// Shop is the subset of the shop record needed for the archived check.
type Shop struct {
	ShopID   string `json:"shopID"`
	Name     string `json:"name"`
	Archived string `json:"archived"`
}

// IsArchived interprets the API's string boolean.
func (s Shop) IsArchived() bool {
	return strings.EqualFold(s.Archived, "true")
}

type shopResponse struct {
	Shop Shop `json:"Shop"`
}

// GetShop fetches one shop record. Archived shops cannot take purchase
// orders, so callers check before creating the header.
func (c *Client) GetShop(ctx context.Context, shopID int) (*Shop, error) {
	url := c.accountURL(fmt.Sprintf("Shop/%d.json", shopID))
	raw, err := c.do(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, err
	}
	var resp shopResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode shop response: %w", err)
	}
	return &resp.Shop, nil
}
