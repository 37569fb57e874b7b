package ozon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"MarketSync/internal/config"
	"MarketSync/internal/domain"
	"MarketSync/internal/ports"
)

// DriverName identifies this adapter in the marketplace registry.
const DriverName = "ozon"

const (
	defaultBaseURL  = "https://api-seller.ozon.ru"
	catalogPageSize = 1000

	// Request caps documented for the bulk import endpoints.
	maxStockBatch = 100
	maxPriceBatch = 1000
)

// Client implements ports.Marketplace against the Ozon Seller API.
type Client struct {
	name     string
	baseURL  string
	clientID string
	apiKey   string
	http     *http.Client
}

var _ ports.Marketplace = (*Client)(nil)

// NewClient builds an adapter bound to one seller account.
func NewClient(name string, cfg config.OzonConfig, client *http.Client) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		name:     name,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		clientID: cfg.ClientID,
		apiKey:   cfg.APIKey,
		http:     client,
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

type productListResponse struct {
	Result struct {
		Items []struct {
			OfferID string `json:"offer_id"`
		} `json:"items"`
		Total  int    `json:"total"`
		LastID string `json:"last_id"`
	} `json:"result"`
}

// Catalog pages through /v2/product/list until every registered offer id is
// collected.
func (c *Client) Catalog(ctx context.Context) ([]string, error) {
	lastID := ""
	var codes []string

	for {
		payload := map[string]any{
			"filter":  map[string]any{"visibility": "ALL"},
			"last_id": lastID,
			"limit":   catalogPageSize,
		}

		var page productListResponse
		if err := c.post(ctx, "/v2/product/list", payload, &page); err != nil {
			return nil, fmt.Errorf("product list: %w", err)
		}

		for _, item := range page.Result.Items {
			codes = append(codes, item.OfferID)
		}

		lastID = page.Result.LastID
		if len(codes) >= page.Result.Total || len(page.Result.Items) == 0 {
			break
		}
	}

	return codes, nil
}

type stockItem struct {
	OfferID string `json:"offer_id"`
	Stock   int    `json:"stock"`
}

// UpdateStocks pushes one batch to /v1/product/import/stocks.
func (c *Client) UpdateStocks(ctx context.Context, records []domain.StockRecord) error {
	stocks := make([]stockItem, 0, len(records))
	for _, record := range records {
		stocks = append(stocks, stockItem{OfferID: record.Code, Stock: record.Quantity})
	}

	if err := c.post(ctx, "/v1/product/import/stocks", map[string]any{"stocks": stocks}, nil); err != nil {
		return fmt.Errorf("import stocks: %w", err)
	}
	return nil
}

type priceItem struct {
	AutoActionEnabled string `json:"auto_action_enabled"`
	CurrencyCode      string `json:"currency_code"`
	OfferID           string `json:"offer_id"`
	OldPrice          string `json:"old_price"`
	Price             string `json:"price"`
}

// UpdatePrices pushes one batch to /v1/product/import/prices. The API takes
// the price as a digit string.
func (c *Client) UpdatePrices(ctx context.Context, records []domain.PriceRecord) error {
	prices := make([]priceItem, 0, len(records))
	for _, record := range records {
		prices = append(prices, priceItem{
			AutoActionEnabled: "UNKNOWN",
			CurrencyCode:      record.Currency,
			OfferID:           record.Code,
			OldPrice:          "0",
			Price:             strconv.FormatInt(record.Value, 10),
		})
	}

	if err := c.post(ctx, "/v1/product/import/prices", map[string]any{"prices": prices}, nil); err != nil {
		return fmt.Errorf("import prices: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Client-Id", c.clientID)
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("ozon error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
