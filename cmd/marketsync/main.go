package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"MarketSync/internal/app"
	"MarketSync/internal/config"
	"MarketSync/internal/logging"
)

func main() {
	ctx := context.Background()

	// Credentials live in the environment; a local .env is a convenience.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("wiring failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		logger.Error("sync failed", "error", err)
		os.Exit(1)
	}
}
