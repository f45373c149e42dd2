package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Mode string `yaml:"mode"` // "release" or "debug"
	} `yaml:"server"`
	Analysis struct {
		RSIPeriod           int     `yaml:"rsi_period"`
		OversoldThreshold   float64 `yaml:"oversold_threshold"`
		OverboughtThreshold float64 `yaml:"overbought_threshold"`
		StrongBuyThreshold  float64 `yaml:"strong_buy_threshold"`
		StrongSellThreshold float64 `yaml:"strong_sell_threshold"`
		MACDFast            int     `yaml:"macd_fast"`
		MACDSlow            int     `yaml:"macd_slow"`
		MACDSignal          int     `yaml:"macd_signal"`
		RecentWindowDays    int     `yaml:"recent_window_days"`
		DisplayTailRows     int     `yaml:"display_tail_rows"`
		HistoryDays         int     `yaml:"history_days"`
		MaxConcurrent       int     `yaml:"max_concurrent"`
		PriceDecimals       int     `yaml:"price_decimals"`
		RSIDecimals         int     `yaml:"rsi_decimals"`
		MACDDecimals        int     `yaml:"macd_decimals"`
	} `yaml:"analysis"`
	Store struct {
		Backend       string `yaml:"backend"` // "sqlite", "redis" or "none"
		SQLitePath    string `yaml:"sqlite_path"`
		RetentionDays int    `yaml:"retention_days"`
		Redis         struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"store"`
	Fetch struct {
		TimeoutSeconds      int    `yaml:"timeout_seconds"`
		RetryAttempts       int    `yaml:"retry_attempts"`
		RetryBackoffSeconds int    `yaml:"retry_backoff_seconds"`
		Proxy               string `yaml:"proxy"`
	} `yaml:"fetch"`
	Schedule struct {
		ScanCron    string `yaml:"scan_cron"`
		CleanupCron string `yaml:"cleanup_cron"`
		HealthCron  string `yaml:"health_cron"`
	} `yaml:"schedule"`
	Watchlist struct {
		PortfolioFile string   `yaml:"portfolio_file"`
		ScanFile      string   `yaml:"scan_file"`
		Portfolio     []string `yaml:"portfolio"`
		Scan          []string `yaml:"scan"`
	} `yaml:"watchlist"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Store.Redis.Password = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Fetch.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	a := &cfg.Analysis
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if a.RSIPeriod == 0 {
		a.RSIPeriod = 14
	}
	if a.OversoldThreshold == 0 {
		a.OversoldThreshold = 30
	}
	if a.OverboughtThreshold == 0 {
		a.OverboughtThreshold = 70
	}
	if a.StrongBuyThreshold == 0 {
		a.StrongBuyThreshold = 20
	}
	if a.StrongSellThreshold == 0 {
		a.StrongSellThreshold = 80
	}
	if a.MACDFast == 0 {
		a.MACDFast = 12
	}
	if a.MACDSlow == 0 {
		a.MACDSlow = 26
	}
	if a.MACDSignal == 0 {
		a.MACDSignal = 9
	}
	if a.RecentWindowDays == 0 {
		a.RecentWindowDays = 30
	}
	if a.DisplayTailRows == 0 {
		a.DisplayTailRows = 10
	}
	if a.HistoryDays == 0 {
		a.HistoryDays = 365
	}
	if a.MaxConcurrent == 0 {
		a.MaxConcurrent = 4
	}
	if a.PriceDecimals == 0 {
		a.PriceDecimals = 2
	}
	if a.RSIDecimals == 0 {
		a.RSIDecimals = 1
	}
	if a.MACDDecimals == 0 {
		a.MACDDecimals = 4
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "sqlite"
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "data/signals.db"
	}
	if cfg.Store.RetentionDays == 0 {
		cfg.Store.RetentionDays = 30
	}
	if cfg.Store.Redis.Addr == "" {
		cfg.Store.Redis.Addr = "localhost:6379"
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 30
	}
	if cfg.Fetch.RetryAttempts == 0 {
		cfg.Fetch.RetryAttempts = 3
	}
	if cfg.Fetch.RetryBackoffSeconds == 0 {
		cfg.Fetch.RetryBackoffSeconds = 1
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 0 * * * *" // hourly on the hour
	}
	if cfg.Schedule.CleanupCron == "" {
		cfg.Schedule.CleanupCron = "0 0 2 * * *" // daily at 02:00
	}
	if cfg.Schedule.HealthCron == "" {
		cfg.Schedule.HealthCron = "0 0 */6 * * *" // every 6 hours
	}
	if cfg.Watchlist.PortfolioFile == "" {
		cfg.Watchlist.PortfolioFile = "my_portfolio.txt"
	}
	if cfg.Watchlist.ScanFile == "" {
		cfg.Watchlist.ScanFile = "scan_list.txt"
	}
	if len(cfg.Watchlist.Portfolio) == 0 {
		cfg.Watchlist.Portfolio = []string{
			"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA",
			"NVDA", "META", "NFLX", "JPM", "V",
		}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks threshold ordering and backend selection.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.RSIPeriod <= 0 {
		return fmt.Errorf("analysis.rsi_period must be positive")
	}
	if a.OversoldThreshold >= a.OverboughtThreshold {
		return fmt.Errorf("analysis.oversold_threshold must be below overbought_threshold")
	}
	if a.StrongBuyThreshold >= a.OversoldThreshold {
		return fmt.Errorf("analysis.strong_buy_threshold must be below oversold_threshold")
	}
	if a.StrongSellThreshold <= a.OverboughtThreshold {
		return fmt.Errorf("analysis.strong_sell_threshold must be above overbought_threshold")
	}
	if a.MACDFast >= a.MACDSlow {
		return fmt.Errorf("analysis.macd_fast must be below macd_slow")
	}
	switch c.Store.Backend {
	case "sqlite", "redis", "none":
	default:
		return fmt.Errorf("store.backend must be sqlite, redis or none, got %q", c.Store.Backend)
	}
	if c.Store.RetentionDays <= 0 {
		return fmt.Errorf("store.retention_days must be positive")
	}
	return nil
}
