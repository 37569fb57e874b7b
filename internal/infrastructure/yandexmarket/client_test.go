package yandexmarket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MarketSync/internal/config"
	"MarketSync/internal/domain"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("market-fbs", config.MarketConfig{
		BaseURL: server.URL,
		Token:   "token-1",
	}, "42", "wh-7", server.Client())
	client.now = func() time.Time {
		return time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)
	}
	return client
}

func TestCatalogPagination(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/campaigns/42/offer-mapping-entries" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token-1" {
			t.Errorf("missing bearer token")
		}

		if r.URL.Query().Get("page_token") == "" {
			_, _ = w.Write([]byte(`{"result":{"offerMappingEntries":[{"offer":{"shopSku":"A"}},{"offer":{"shopSku":"B"}}],"paging":{"nextPageToken":"p2"}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":{"offerMappingEntries":[{"offer":{"shopSku":"C"}}],"paging":{}}}`))
	}))

	codes, err := client.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog returned error: %v", err)
	}

	want := []string{"A", "B", "C"}
	if len(codes) != len(want) {
		t.Fatalf("expected %d codes, got %d", len(want), len(codes))
	}
	for i, code := range codes {
		if code != want[i] {
			t.Fatalf("code %d: want %s, got %s", i, want[i], code)
		}
	}
}

func TestUpdateStocksPayload(t *testing.T) {
	t.Parallel()

	var captured struct {
		SKUs []struct {
			SKU         string `json:"sku"`
			WarehouseID string `json:"warehouseId"`
			Items       []struct {
				Count     int    `json:"count"`
				Type      string `json:"type"`
				UpdatedAt string `json:"updatedAt"`
			} `json:"items"`
		} `json:"skus"`
	}

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("stocks must go out as PUT, got %s", r.Method)
		}
		if r.URL.Path != "/campaigns/42/offers/stocks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{}`))
	}))

	records := []domain.StockRecord{{Code: "A", Quantity: 5}}
	if err := client.UpdateStocks(context.Background(), records); err != nil {
		t.Fatalf("UpdateStocks returned error: %v", err)
	}

	if len(captured.SKUs) != 1 {
		t.Fatalf("expected 1 sku, got %d", len(captured.SKUs))
	}
	sku := captured.SKUs[0]
	if sku.SKU != "A" || sku.WarehouseID != "wh-7" {
		t.Fatalf("unexpected sku: %+v", sku)
	}
	if len(sku.Items) != 1 || sku.Items[0].Count != 5 || sku.Items[0].Type != "FIT" {
		t.Fatalf("unexpected stock item: %+v", sku.Items)
	}
	if sku.Items[0].UpdatedAt != "2026-08-25T12:00:00Z" {
		t.Fatalf("unexpected updatedAt: %s", sku.Items[0].UpdatedAt)
	}
}

func TestUpdatePricesPayload(t *testing.T) {
	t.Parallel()

	var captured struct {
		Offers []struct {
			ID    string `json:"id"`
			Price struct {
				Value      int64  `json:"value"`
				CurrencyID string `json:"currencyId"`
			} `json:"price"`
		} `json:"offers"`
	}

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/campaigns/42/offer-prices/updates" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{}`))
	}))

	records := []domain.PriceRecord{{Code: "A", Value: 5990, Currency: "RUB"}}
	if err := client.UpdatePrices(context.Background(), records); err != nil {
		t.Fatalf("UpdatePrices returned error: %v", err)
	}

	if len(captured.Offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(captured.Offers))
	}
	offer := captured.Offers[0]
	if offer.ID != "A" || offer.Price.Value != 5990 {
		t.Fatalf("unexpected offer: %+v", offer)
	}
	if offer.Price.CurrencyID != "RUR" {
		t.Fatalf("RUB must be spelled RUR on the wire, got %s", offer.Price.CurrencyID)
	}
}

func TestErrorStatus(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))

	if _, err := client.Catalog(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestBatchLimits(t *testing.T) {
	t.Parallel()

	client := NewClient("market-fbs", config.MarketConfig{}, "42", "wh-7", nil)
	limits := client.BatchLimits()
	if limits.Stocks != 2000 || limits.Prices != 500 {
		t.Fatalf("unexpected limits: %+v", limits)
	}
}
