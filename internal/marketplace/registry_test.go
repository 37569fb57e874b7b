package marketplace

import (
	"context"
	"testing"

	"MarketSync/internal/domain"
	"MarketSync/internal/ports"
)

type stubMarketplace struct {
	name string
}

func (s *stubMarketplace) Name() string                               { return s.name }
func (s *stubMarketplace) Catalog(ctx context.Context) ([]string, error) { return nil, nil }
func (s *stubMarketplace) UpdateStocks(ctx context.Context, records []domain.StockRecord) error {
	return nil
}
func (s *stubMarketplace) UpdatePrices(ctx context.Context, records []domain.PriceRecord) error {
	return nil
}
func (s *stubMarketplace) BatchLimits() domain.BatchLimits { return domain.BatchLimits{} }

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("stub", func(target Target) (ports.Marketplace, error) {
		return &stubMarketplace{name: target.Name}, nil
	})

	factory, err := registry.Resolve("stub")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	adapter, err := factory(Target{Name: "stub-main"})
	if err != nil {
		t.Fatalf("factory returned error: %v", err)
	}
	if adapter.Name() != "stub-main" {
		t.Fatalf("unexpected adapter name: %s", adapter.Name())
	}
}

func TestRegistryUnknownDriver(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	if _, err := registry.Resolve("missing"); err == nil {
		t.Fatal("expected error for unregistered driver")
	}
}
