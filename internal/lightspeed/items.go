package lightspeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Item is the wire shape of a catalog item. The API returns every scalar
// field as a string, ids included.
type Item struct {
	ItemID          string     `json:"itemID"`
	UPC             string     `json:"upc"`
	Description     string     `json:"description"`
	CustomSku       string     `json:"customSku"`
	SystemSku       string     `json:"systemSku"`
	ManufacturerSku string     `json:"manufacturerSku"`
	DefaultCost     string     `json:"defaultCost"`
	Price           string     `json:"price"`
	Archived        string     `json:"archived"`
	CategoryID      string     `json:"categoryID"`
	ItemShops       *itemShops `json:"ItemShops,omitempty"`
	Tags            *itemTags  `json:"Tags,omitempty"`
}

// ShopPrice returns the item's price, falling back to the first per-shop
// price when the top-level field is empty.
func (it Item) ShopPrice() string {
	if it.Price != "" {
		return it.Price
	}
	if it.ItemShops != nil && len(it.ItemShops.ItemShop) > 0 {
		return it.ItemShops.ItemShop[0].Price
	}
	return ""
}

// TagNames flattens the nested tag block.
func (it Item) TagNames() []string {
	if it.Tags == nil {
		return nil
	}
	var names []string
	for _, t := range it.Tags.Tag {
		if t.Name != "" {
			names = append(names, t.Name)
		}
	}
	return names
}

type itemShops struct {
	ItemShop oneOrMany[itemShop] `json:"ItemShop"`
}

type itemShop struct {
	ShopID string `json:"shopID"`
	Price  string `json:"price"`
	QOH    string `json:"qoh"`
}

type itemTags struct {
	Tag oneOrMany[tag] `json:"Tag"`
}

type tag struct {
	TagID string `json:"tagID"`
	Name  string `json:"name"`
}

// oneOrMany absorbs the API's habit of returning a single JSON object where
// a one-element array would be expected.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*o = nil
		return nil
	}
	if b[0] == '[' {
		var many []T
		if err := json.Unmarshal(b, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}
	var one T
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*o = []T{one}
	return nil
}

type pageAttributes struct {
	Count string `json:"count"`
	Next  string `json:"next"`
}

type itemListResponse struct {
	Attributes pageAttributes  `json:"@attributes"`
	Item       oneOrMany[Item] `json:"Item"`
}

// FirstItemsURL is the entry point of the paged item listing.
func (c *Client) FirstItemsURL(pageSize int) string {
	return fmt.Sprintf("%s?limit=%d", c.accountURL("Item.json"), pageSize)
}

// ListItemsPage fetches one page of the item listing and returns the items,
// the next-page link (empty on the last page), and the total count reported
// by the API.
func (c *Client) ListItemsPage(ctx context.Context, pageURL string) ([]Item, string, int, error) {
	raw, err := c.do(ctx, http.MethodGet, pageURL, nil, nil)
	if err != nil {
		return nil, "", 0, err
	}
	var resp itemListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, "", 0, fmt.Errorf("decode item page: %w", err)
	}
	count, _ := strconv.Atoi(resp.Attributes.Count)
	return resp.Item, resp.Attributes.Next, count, nil
}

// ItemsByUPC looks a single identifier up remotely.
func (c *Client) ItemsByUPC(ctx context.Context, upc string) ([]Item, error) {
	raw, err := c.do(ctx, http.MethodGet, c.accountURL("Item.json"), url.Values{"upc": {upc}}, nil)
	if err != nil {
		return nil, err
	}
	var resp itemListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode item lookup: %w", err)
	}
	return resp.Item, nil
}

// ItemPayload is the creation request for a missing catalog item. Exactly
// one of UPC or ManufacturerSku is set, depending on the identifier kind.
type ItemPayload struct {
	DefaultCost     string      `json:"defaultCost"`
	Discountable    bool        `json:"discountable"`
	Tax             bool        `json:"tax"`
	ItemType        string      `json:"itemType"`
	Serialized      bool        `json:"serialized"`
	Description     string      `json:"description"`
	PublishToEcom   bool        `json:"publishToEcom"`
	CategoryID      int         `json:"categoryID"`
	TaxClassID      int         `json:"taxClassID"`
	DefaultVendorID int         `json:"defaultVendorID"`
	UPC             string      `json:"upc,omitempty"`
	ManufacturerSku string      `json:"manufacturerSku,omitempty"`
	Prices          pricesBlock `json:"Prices"`
	Tags            tagsBlock   `json:"Tags"`
}

type pricesBlock struct {
	ItemPrice []itemPrice `json:"ItemPrice"`
}

type itemPrice struct {
	Amount    string `json:"amount"`
	UseTypeID int    `json:"useTypeID"`
	UseType   string `json:"useType"`
}

type tagsBlock struct {
	Tag []createTag `json:"Tag"`
}

type createTag struct {
	TagID int    `json:"tagID"`
	Name  string `json:"name"`
}

// NewItemPayload builds the creation payload with the store's defaults:
// discountable, taxed, default item type, tagged "New", kept off ecom.
func NewItemPayload(description, defaultCost string, vendorID, categoryID, taxClassID, newTagID int) ItemPayload {
	return ItemPayload{
		DefaultCost:     defaultCost,
		Discountable:    true,
		Tax:             true,
		ItemType:        "default",
		Serialized:      false,
		Description:     description,
		PublishToEcom:   false,
		CategoryID:      categoryID,
		TaxClassID:      taxClassID,
		DefaultVendorID: vendorID,
		Prices: pricesBlock{
			ItemPrice: []itemPrice{{Amount: "0", UseTypeID: 1, UseType: "Default"}},
		},
		Tags: tagsBlock{
			Tag: []createTag{{TagID: newTagID, Name: "New"}},
		},
	}
}

type itemCreateResponse struct {
	Item Item `json:"Item"`
}

// CreateItem creates a catalog item and returns its id.
func (c *Client) CreateItem(ctx context.Context, payload ItemPayload) (int, error) {
	raw, err := c.do(ctx, http.MethodPost, c.accountURL("Item.json"), nil, payload)
	if err != nil {
		return 0, err
	}
	var resp itemCreateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("decode item creation response: %w", err)
	}
	id, err := strconv.Atoi(resp.Item.ItemID)
	if err != nil {
		return 0, fmt.Errorf("item creation response has no usable itemID: %w", err)
	}
	return id, nil
}
