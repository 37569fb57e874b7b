package yandexmarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"MarketSync/internal/config"
	"MarketSync/internal/domain"
	"MarketSync/internal/ports"
)

// DriverName identifies this adapter in the marketplace registry.
const DriverName = "yandex-market"

const (
	defaultBaseURL  = "https://api.partner.market.yandex.ru"
	catalogPageSize = 200

	// Request caps documented for the campaign update endpoints.
	maxStockBatch = 2000
	maxPriceBatch = 500

	// The only item type the partner API accepts for plain sellable stock.
	stockItemType = "FIT"
)

// Client implements ports.Marketplace against the Yandex Market partner API
// for a single campaign. FBS and DBS campaigns are separate instances
// sharing the OAuth token.
type Client struct {
	name        string
	baseURL     string
	token       string
	campaignID  string
	warehouseID string
	http        *http.Client
	now         func() time.Time
}

var _ ports.Marketplace = (*Client)(nil)

// NewClient builds an adapter bound to one campaign and its warehouse.
func NewClient(name string, cfg config.MarketConfig, campaignID, warehouseID string, client *http.Client) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		name:        name,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		token:       cfg.Token,
		campaignID:  campaignID,
		warehouseID: warehouseID,
		http:        client,
		now:         time.Now,
	}
}

// Name identifies the target in reports and logs.
func (c *Client) Name() string {
	return c.name
}

// BatchLimits reports the documented per-request caps.
func (c *Client) BatchLimits() domain.BatchLimits {
	return domain.BatchLimits{Stocks: maxStockBatch, Prices: maxPriceBatch}
}

type offerMappingResponse struct {
	Result struct {
		OfferMappingEntries []struct {
			Offer struct {
				ShopSKU string `json:"shopSku"`
			} `json:"offer"`
		} `json:"offerMappingEntries"`
		Paging struct {
			NextPageToken string `json:"nextPageToken"`
		} `json:"paging"`
	} `json:"result"`
}

// Catalog pages through the offer-mapping entries until the API stops
// returning a next page token.
func (c *Client) Catalog(ctx context.Context) ([]string, error) {
	pageToken := ""
	var codes []string

	for {
		query := url.Values{}
		query.Set("limit", fmt.Sprint(catalogPageSize))
		if pageToken != "" {
			query.Set("page_token", pageToken)
		}

		var page offerMappingResponse
		path := fmt.Sprintf("/campaigns/%s/offer-mapping-entries", c.campaignID)
		if err := c.do(ctx, http.MethodGet, path, query, nil, &page); err != nil {
			return nil, fmt.Errorf("offer mapping entries: %w", err)
		}

		for _, entry := range page.Result.OfferMappingEntries {
			codes = append(codes, entry.Offer.ShopSKU)
		}

		pageToken = page.Result.Paging.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return codes, nil
}

type skuStockItem struct {
	Count     int    `json:"count"`
	Type      string `json:"type"`
	UpdatedAt string `json:"updatedAt"`
}

type skuStock struct {
	SKU         string         `json:"sku"`
	WarehouseID string         `json:"warehouseId"`
	Items       []skuStockItem `json:"items"`
}

// UpdateStocks pushes one batch of warehouse stock to the campaign.
func (c *Client) UpdateStocks(ctx context.Context, records []domain.StockRecord) error {
	updatedAt := c.now().UTC().Truncate(time.Second).Format(time.RFC3339)

	skus := make([]skuStock, 0, len(records))
	for _, record := range records {
		skus = append(skus, skuStock{
			SKU:         record.Code,
			WarehouseID: c.warehouseID,
			Items: []skuStockItem{{
				Count:     record.Quantity,
				Type:      stockItemType,
				UpdatedAt: updatedAt,
			}},
		})
	}

	path := fmt.Sprintf("/campaigns/%s/offers/stocks", c.campaignID)
	if err := c.do(ctx, http.MethodPut, path, nil, map[string]any{"skus": skus}, nil); err != nil {
		return fmt.Errorf("update stocks: %w", err)
	}
	return nil
}

type offerPrice struct {
	ID    string `json:"id"`
	Price struct {
		Value      int64  `json:"value"`
		CurrencyID string `json:"currencyId"`
	} `json:"price"`
}

// UpdatePrices pushes one batch of offer prices to the campaign.
func (c *Client) UpdatePrices(ctx context.Context, records []domain.PriceRecord) error {
	offers := make([]offerPrice, 0, len(records))
	for _, record := range records {
		offer := offerPrice{ID: record.Code}
		offer.Price.Value = record.Value
		offer.Price.CurrencyID = wireCurrency(record.Currency)
		offers = append(offers, offer)
	}

	path := fmt.Sprintf("/campaigns/%s/offer-prices/updates", c.campaignID)
	if err := c.do(ctx, http.MethodPost, path, nil, map[string]any{"offers": offers}, nil); err != nil {
		return fmt.Errorf("update prices: %w", err)
	}
	return nil
}

// wireCurrency maps ISO currency codes to the partner API's enum, which
// predates the ISO code for the ruble.
func wireCurrency(currency string) string {
	if currency == "RUB" {
		return "RUR"
	}
	return currency
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, v any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("market error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
