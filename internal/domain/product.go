package domain

import (
	"time"

	"github.com/google/uuid"
)

// FeedItem is one row of the supplier remnants feed after quantity
// normalization. The raw price string is kept as-is; pricing rules decide
// how to read it.
type FeedItem struct {
	Code     string
	Quantity int
	RawPrice string
}

// StockRecord is the reconciled stock level for one catalog article.
type StockRecord struct {
	Code     string
	Quantity int
}

// PriceRecord is a derived price in whole currency units.
type PriceRecord struct {
	Code     string
	Value    int64
	Currency string
}

// BatchLimits carries the documented per-request caps of a marketplace's
// bulk-update endpoints.
type BatchLimits struct {
	Stocks int
	Prices int
}

// TargetReport aggregates what one marketplace target received during a run.
type TargetReport struct {
	Target      string
	CatalogSize int
	Stocks      int
	InStock     int
	Prices      int
}

// RunReport describes one full synchronization pass for audit and digests.
type RunReport struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	FeedSize   int
	Targets    []TargetReport
}
