package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"MarketSync/internal/domain"
	"MarketSync/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Repository and Notifier are optional.
type PipelineDeps struct {
	Feed       ports.StockFeed
	Targets    []ports.Marketplace
	Rule       domain.PriceRule
	Repository ports.RunRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline implements the stock/price synchronization workflow.
type Pipeline struct {
	feed       ports.StockFeed
	targets    []ports.Marketplace
	rule       domain.PriceRule
	repository ports.RunRepository
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		feed:       deps.Feed,
		targets:    deps.Targets,
		rule:       deps.Rule,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
	}
}

// Run performs one full synchronization pass: the feed is fetched once, then
// every target gets its catalog reconciled against it and the resulting
// stock and price batches uploaded. The first error aborts the run; a rerun
// recomputes everything from scratch, so partial uploads self-correct.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	if p.feed == nil {
		return nil
	}

	report := domain.RunReport{ID: uuid.New(), StartedAt: now.UTC()}

	items, err := p.feed.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}
	report.FeedSize = len(items)
	p.debug("feed fetched", "items", len(items))

	for _, target := range p.targets {
		targetReport, err := p.syncTarget(ctx, target, items)
		if err != nil {
			return fmt.Errorf("sync %s: %w", target.Name(), err)
		}
		report.Targets = append(report.Targets, targetReport)
	}

	report.FinishedAt = time.Now().UTC()

	if p.repository != nil {
		if err := p.repository.SaveRun(ctx, report); err != nil {
			return fmt.Errorf("save run report: %w", err)
		}
	}

	if p.notifier == nil {
		return nil
	}
	return p.notifier.PublishDigest(ctx, buildDigest(report))
}

func (p *Pipeline) syncTarget(ctx context.Context, target ports.Marketplace, items []domain.FeedItem) (domain.TargetReport, error) {
	catalog, err := target.Catalog(ctx)
	if err != nil {
		return domain.TargetReport{}, fmt.Errorf("fetch catalog: %w", err)
	}

	stocks := domain.Reconcile(catalog, items)
	prices, err := domain.DerivePrices(catalog, items, p.rule)
	if err != nil {
		return domain.TargetReport{}, err
	}

	limits := target.BatchLimits()
	for _, batch := range chunk(stocks, limits.Stocks) {
		if err := target.UpdateStocks(ctx, batch); err != nil {
			return domain.TargetReport{}, fmt.Errorf("update stocks: %w", err)
		}
	}
	for _, batch := range chunk(prices, limits.Prices) {
		if err := target.UpdatePrices(ctx, batch); err != nil {
			return domain.TargetReport{}, fmt.Errorf("update prices: %w", err)
		}
	}

	inStock := 0
	for _, record := range stocks {
		if record.Quantity > 0 {
			inStock++
		}
	}

	p.debug("target synced",
		"target", target.Name(),
		"catalog", len(catalog),
		"in_stock", inStock,
		"prices", len(prices))

	return domain.TargetReport{
		Target:      target.Name(),
		CatalogSize: len(catalog),
		Stocks:      len(stocks),
		InStock:     inStock,
		Prices:      len(prices),
	}, nil
}

// chunk splits a batch into slices of at most size elements. A non-positive
// size means the whole batch goes out in one request.
func chunk[T any](list []T, size int) [][]T {
	if len(list) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{list}
	}

	batches := make([][]T, 0, (len(list)+size-1)/size)
	for start := 0; start < len(list); start += size {
		end := min(start+size, len(list))
		batches = append(batches, list[start:end])
	}
	return batches
}

func buildDigest(report domain.RunReport) string {
	digest := fmt.Sprintf("Sync %s: %d feed items, took %s\n",
		report.ID,
		report.FeedSize,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Second))

	for _, target := range report.Targets {
		digest += fmt.Sprintf("- %s: catalog %d, in stock %d, prices %d\n",
			target.Target,
			target.CatalogSize,
			target.InStock,
			target.Prices)
	}

	return digest
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
