package domain

import "fmt"

// Reconcile joins the marketplace catalog against the supplier feed and
// returns exactly one record per catalog article, in catalog order. Articles
// missing from the feed get quantity 0, which is an explicit out-of-stock
// signal for the marketplace. Feed items that are not listed in the catalog
// produce no record.
func Reconcile(catalog []string, feed []FeedItem) []StockRecord {
	index := make(map[string]int, len(feed))
	for _, item := range feed {
		index[item.Code] = item.Quantity
	}

	records := make([]StockRecord, 0, len(catalog))
	for _, code := range catalog {
		records = append(records, StockRecord{Code: code, Quantity: index[code]})
	}
	return records
}

// DerivePrices computes one price record per feed item that is listed in the
// catalog. Items without a catalog counterpart are dropped, mirroring
// Reconcile, so prices are never uploaded for unlisted products.
func DerivePrices(catalog []string, feed []FeedItem, rule PriceRule) ([]PriceRecord, error) {
	listed := make(map[string]struct{}, len(catalog))
	for _, code := range catalog {
		listed[code] = struct{}{}
	}

	prices := make([]PriceRecord, 0, len(feed))
	for _, item := range feed {
		if _, ok := listed[item.Code]; !ok {
			continue
		}
		value, err := rule.Apply(item.RawPrice)
		if err != nil {
			return nil, fmt.Errorf("derive price for %s: %w", item.Code, err)
		}
		prices = append(prices, PriceRecord{Code: item.Code, Value: value, Currency: rule.Currency})
	}
	return prices, nil
}
