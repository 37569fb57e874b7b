package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"MarketSync/internal/config"
	"MarketSync/internal/domain"
	"MarketSync/internal/infrastructure/casio"
	"MarketSync/internal/infrastructure/ozon"
	"MarketSync/internal/infrastructure/scheduler"
	"MarketSync/internal/infrastructure/storage"
	"MarketSync/internal/infrastructure/telegram"
	"MarketSync/internal/infrastructure/yandexmarket"
	"MarketSync/internal/logging"
	"MarketSync/internal/marketplace"
	"MarketSync/internal/ports"
	"MarketSync/internal/usecase"
)

// Application wires config to the pipeline and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	db        *sql.DB
}

// New builds a runnable application instance. Optional collaborators (run
// journal, notifier, scheduler) are wired only when configured.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := marketplace.NewRegistry()
	registry.Register(ozon.DriverName, func(target marketplace.Target) (ports.Marketplace, error) {
		return ozon.NewClient(target.Name, cfg.Ozon, nil), nil
	})
	registry.Register(yandexmarket.DriverName, func(target marketplace.Target) (ports.Marketplace, error) {
		if target.CampaignID == "" {
			return nil, fmt.Errorf("target %s: campaign id is required", target.Name)
		}
		return yandexmarket.NewClient(target.Name, cfg.Market, target.CampaignID, target.WarehouseID, nil), nil
	})

	targets := make([]ports.Marketplace, 0, len(cfg.Targets))
	for _, tc := range cfg.Targets {
		factory, err := registry.Resolve(tc.Driver)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", tc.Name, err)
		}
		target, err := factory(marketplace.Target{
			Name:        tc.Name,
			CampaignID:  tc.CampaignID,
			WarehouseID: tc.WarehouseID,
		})
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	markup, err := decimal.NewFromString(cfg.Pricing.Markup)
	if err != nil {
		return nil, fmt.Errorf("pricing markup %q: %w", cfg.Pricing.Markup, err)
	}
	rule := domain.PriceRule{Currency: cfg.Pricing.Currency, Markup: markup}

	feed := casio.NewFeedClient(cfg.Feed, nil, baseLogger.With("component", "feed"))

	var db *sql.DB
	var repository ports.RunRepository
	if cfg.Database.DSN != "" {
		db, err = storage.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("run journal: %w", err)
		}
		repository = storage.NewRunRepository(db)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Feed:       feed,
		Targets:    targets,
		Rule:       rule,
		Repository: repository,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	application := &Application{cfg: cfg, pipeline: pipeline, db: db}

	if every := cfg.Scheduler.Every(); every > 0 {
		driver := scheduler.NewIntervalScheduler(every)
		application.scheduler = usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))
	}

	return application, nil
}

// Run executes a single sync pass, or keeps re-running on the configured
// interval until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	if a.scheduler == nil {
		return a.pipeline.Run(ctx, time.Now())
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
