package ports

import (
	"context"
	"time"

	"MarketSync/internal/domain"
)

// StockFeed pulls the current remnants list from the supplier.
type StockFeed interface {
	Fetch(ctx context.Context) ([]domain.FeedItem, error)
}

// Marketplace is one seller account (or campaign) to synchronize. Catalog
// pages through the listing endpoint until exhausted; the update methods
// accept batches no larger than BatchLimits allows.
type Marketplace interface {
	Name() string
	Catalog(ctx context.Context) ([]string, error)
	UpdateStocks(ctx context.Context, records []domain.StockRecord) error
	UpdatePrices(ctx context.Context, records []domain.PriceRecord) error
	BatchLimits() domain.BatchLimits
}

// RunRepository persists run reports for audit. It is write-only: a run
// never reads a previous report back.
type RunRepository interface {
	SaveRun(ctx context.Context, report domain.RunReport) error
}

// Notifier delivers run digests to an operator channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when sync runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
