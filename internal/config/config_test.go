package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Feed.ArchiveURL == "" {
		t.Fatal("default archive url must be set")
	}
	if cfg.Feed.PreambleRows != 17 {
		t.Fatalf("expected 17 preamble rows, got %d", cfg.Feed.PreambleRows)
	}
	if cfg.Pricing.Currency != "RUB" {
		t.Fatalf("expected RUB default currency, got %s", cfg.Pricing.Currency)
	}
	if len(cfg.Targets) != 3 {
		t.Fatalf("expected 3 default targets, got %d", len(cfg.Targets))
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OZON_CLIENT_ID", "client-9")
	t.Setenv("OZON_API_KEY", "key-9")
	t.Setenv("MARKET_TOKEN", "token-9")
	t.Setenv("FBS_CAMPAIGN_ID", "1001")
	t.Setenv("FBS_WAREHOUSE_ID", "wh-1")
	t.Setenv("DBS_CAMPAIGN_ID", "1002")

	cfg := Load()

	if cfg.Ozon.ClientID != "client-9" || cfg.Ozon.APIKey != "key-9" {
		t.Fatalf("ozon credentials not applied: %+v", cfg.Ozon)
	}
	if cfg.Market.Token != "token-9" {
		t.Fatalf("market token not applied: %+v", cfg.Market)
	}

	byName := map[string]TargetConfig{}
	for _, target := range cfg.Targets {
		byName[target.Name] = target
	}
	if byName["market-fbs"].CampaignID != "1001" || byName["market-fbs"].WarehouseID != "wh-1" {
		t.Fatalf("fbs target not overridden: %+v", byName["market-fbs"])
	}
	if byName["market-dbs"].CampaignID != "1002" {
		t.Fatalf("dbs target not overridden: %+v", byName["market-dbs"])
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
logging:
  level: debug
scheduler:
  interval: 6h
pricing:
  currency: RUB
  markup: "1.2"
feed:
  archiveUrl: https://example.org/remnants.zip
  preambleRows: 3
targets:
  - name: ozon
    driver: ozon
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MARKETSYNC_CONFIG", path)

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %s", cfg.Logging.Level)
	}
	if cfg.Scheduler.Every() != 6*time.Hour {
		t.Fatalf("expected 6h interval, got %s", cfg.Scheduler.Every())
	}
	if cfg.Pricing.Markup != "1.2" {
		t.Fatalf("expected markup 1.2, got %s", cfg.Pricing.Markup)
	}
	if cfg.Feed.ArchiveURL != "https://example.org/remnants.zip" {
		t.Fatalf("archive url not overridden: %s", cfg.Feed.ArchiveURL)
	}
	if cfg.Feed.PreambleRows != 3 {
		t.Fatalf("preamble rows not overridden: %d", cfg.Feed.PreambleRows)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0].Name != "ozon" {
		t.Fatalf("targets not overridden: %+v", cfg.Targets)
	}
	// Defaults survive where the file is silent.
	if cfg.Feed.CodeColumn != "Код" {
		t.Fatalf("code column default lost: %s", cfg.Feed.CodeColumn)
	}
}

func TestSchedulerEveryMalformed(t *testing.T) {
	s := SchedulerConfig{Interval: "sometimes"}
	if s.Every() != 0 {
		t.Fatal("malformed interval must resolve to zero")
	}
}
