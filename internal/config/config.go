package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "MARKETSYNC_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	ozonClientIDEnv   = "OZON_CLIENT_ID"
	ozonAPIKeyEnv     = "OZON_API_KEY"
	marketTokenEnv    = "MARKET_TOKEN"
	fbsCampaignEnv    = "FBS_CAMPAIGN_ID"
	dbsCampaignEnv    = "DBS_CAMPAIGN_ID"
	fbsWarehouseEnv   = "FBS_WAREHOUSE_ID"
	dbsWarehouseEnv   = "DBS_WAREHOUSE_ID"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Feed          FeedConfig         `yaml:"feed"`
	Pricing       PricingConfig      `yaml:"pricing"`
	Ozon          OzonConfig         `yaml:"ozon"`
	Market        MarketConfig       `yaml:"market"`
	Notifications NotificationConfig `yaml:"notifications"`
	Targets       []TargetConfig     `yaml:"targets"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the optional Postgres run journal. An empty DSN
// disables journaling.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines how often the sync should re-run. An empty
// interval means a single one-shot run.
type SchedulerConfig struct {
	Interval string `yaml:"interval"`
}

// Every resolves the interval string to a duration; zero when unset or
// malformed.
func (s SchedulerConfig) Every() time.Duration {
	if s.Interval == "" {
		return 0
	}
	every, err := time.ParseDuration(s.Interval)
	if err != nil {
		log.Printf("config: bad scheduler interval %q: %v (running once)", s.Interval, err)
		return 0
	}
	return every
}

// FeedConfig describes the supplier remnants archive and its tabular layout.
// When ArchiveURL is empty the archive link is discovered on PageURL.
type FeedConfig struct {
	PageURL        string `yaml:"pageUrl"`
	ArchiveURL     string `yaml:"archiveUrl"`
	FileSuffix     string `yaml:"fileSuffix"`
	Separator      string `yaml:"separator"`
	PreambleRows   int    `yaml:"preambleRows"`
	CodeColumn     string `yaml:"codeColumn"`
	QuantityColumn string `yaml:"quantityColumn"`
	PriceColumn    string `yaml:"priceColumn"`
}

// PricingConfig is the fixed currency/markup rule applied to feed prices.
type PricingConfig struct {
	Currency string `yaml:"currency"`
	Markup   string `yaml:"markup"`
}

// OzonConfig carries Ozon Seller API credentials.
type OzonConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	ClientID string `yaml:"clientId"`
	APIKey   string `yaml:"apiKey"`
}

// MarketConfig carries Yandex Market partner API credentials shared by all
// campaigns.
type MarketConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Token   string `yaml:"token"`
}

// NotificationConfig encapsulates outbound operator channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send digests.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// TargetConfig describes a single marketplace target with its driver.
type TargetConfig struct {
	Name        string `yaml:"name"`
	Driver      string `yaml:"driver"`
	CampaignID  string `yaml:"campaignId"`
	WarehouseID string `yaml:"warehouseId"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Targets) == 0 {
		cfg.Targets = defaultConfig().Targets
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(ozonClientIDEnv); v != "" {
		c.Ozon.ClientID = v
	}
	if v := os.Getenv(ozonAPIKeyEnv); v != "" {
		c.Ozon.APIKey = v
	}
	if v := os.Getenv(marketTokenEnv); v != "" {
		c.Market.Token = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	for i := range c.Targets {
		switch c.Targets[i].Name {
		case "market-fbs":
			if v := os.Getenv(fbsCampaignEnv); v != "" {
				c.Targets[i].CampaignID = v
			}
			if v := os.Getenv(fbsWarehouseEnv); v != "" {
				c.Targets[i].WarehouseID = v
			}
		case "market-dbs":
			if v := os.Getenv(dbsCampaignEnv); v != "" {
				c.Targets[i].CampaignID = v
			}
			if v := os.Getenv(dbsWarehouseEnv); v != "" {
				c.Targets[i].WarehouseID = v
			}
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.Interval != "" {
		base.Scheduler = override.Scheduler
	}

	if override.Feed.PageURL != "" {
		base.Feed.PageURL = override.Feed.PageURL
		base.Feed.ArchiveURL = override.Feed.ArchiveURL
	}
	if override.Feed.ArchiveURL != "" {
		base.Feed.ArchiveURL = override.Feed.ArchiveURL
	}
	if override.Feed.FileSuffix != "" {
		base.Feed.FileSuffix = override.Feed.FileSuffix
	}
	if override.Feed.Separator != "" {
		base.Feed.Separator = override.Feed.Separator
	}
	if override.Feed.PreambleRows > 0 {
		base.Feed.PreambleRows = override.Feed.PreambleRows
	}
	if override.Feed.CodeColumn != "" {
		base.Feed.CodeColumn = override.Feed.CodeColumn
	}
	if override.Feed.QuantityColumn != "" {
		base.Feed.QuantityColumn = override.Feed.QuantityColumn
	}
	if override.Feed.PriceColumn != "" {
		base.Feed.PriceColumn = override.Feed.PriceColumn
	}

	if override.Pricing.Currency != "" {
		base.Pricing.Currency = override.Pricing.Currency
	}
	if override.Pricing.Markup != "" {
		base.Pricing.Markup = override.Pricing.Markup
	}

	if override.Ozon.BaseURL != "" {
		base.Ozon.BaseURL = override.Ozon.BaseURL
	}
	if override.Ozon.ClientID != "" {
		base.Ozon.ClientID = override.Ozon.ClientID
	}
	if override.Ozon.APIKey != "" {
		base.Ozon.APIKey = override.Ozon.APIKey
	}

	if override.Market.BaseURL != "" {
		base.Market.BaseURL = override.Market.BaseURL
	}
	if override.Market.Token != "" {
		base.Market.Token = override.Market.Token
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Targets) > 0 {
		base.Targets = override.Targets
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Interval: ""},
		Feed: FeedConfig{
			ArchiveURL:     "https://timeworld.ru/upload/files/ostatki.zip",
			FileSuffix:     ".csv",
			Separator:      ";",
			PreambleRows:   17,
			CodeColumn:     "Код",
			QuantityColumn: "Количество",
			PriceColumn:    "Цена",
		},
		Pricing: PricingConfig{Currency: "RUB", Markup: "1"},
		Targets: []TargetConfig{
			{Name: "ozon", Driver: "ozon"},
			{Name: "market-fbs", Driver: "yandex-market"},
			{Name: "market-dbs", Driver: "yandex-market"},
		},
	}
}
