package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"SignalScan/internal/analyzer"
	"SignalScan/internal/api"
	"SignalScan/internal/config"
	"SignalScan/internal/fetcher"
	"SignalScan/internal/notifier"
	"SignalScan/internal/scheduler"
	"SignalScan/internal/store"
	"SignalScan/internal/watchlist"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	setupLogging(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config invalid")
	}

	sigStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store open failed")
	}
	defer sigStore.Close()

	f := buildFetcher(cfg)
	log.Info().Str("fetcher", f.Name()).Str("store", cfg.Store.Backend).Msg("starting up")

	wl := watchlist.NewManager(
		cfg.Watchlist.PortfolioFile, cfg.Watchlist.ScanFile,
		cfg.Watchlist.Portfolio, cfg.Watchlist.Scan,
	)

	a := analyzer.New(sigStore, f, analyzerConfig(cfg))

	var n notifier.Notifier = notifier.Noop{}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		n = notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}
	log.Info().Str("notifier", n.Name()).Msg("notifications configured")

	sched, err := scheduler.New(a, wl, n, scheduler.Config{
		ScanCron:      cfg.Schedule.ScanCron,
		CleanupCron:   cfg.Schedule.CleanupCron,
		HealthCron:    cfg.Schedule.HealthCron,
		RetentionDays: cfg.Store.RetentionDays,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler init failed")
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		go sched.RunScanNow()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(cfg, a, wl).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func openStore(cfg *config.Config) (store.SignalStore, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		if dir := filepath.Dir(cfg.Store.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		return store.NewSQLiteStore(cfg.Store.SQLitePath)
	case "redis":
		return store.NewRedisStore(store.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		}, cfg.Store.RetentionDays)
	case "none":
		return store.NewNoopStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func buildFetcher(cfg *config.Config) fetcher.Fetcher {
	if os.Getenv("MOCK_FETCHER") == "true" {
		return &fetcher.MockFetcher{BasePrice: 100}
	}
	return fetcher.NewYahooFetcher(
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
		cfg.Fetch.RetryAttempts,
		time.Duration(cfg.Fetch.RetryBackoffSeconds)*time.Second,
		cfg.Fetch.Proxy,
	)
}

func analyzerConfig(cfg *config.Config) analyzer.Config {
	a := cfg.Analysis
	return analyzer.Config{
		RSIPeriod:           a.RSIPeriod,
		OversoldThreshold:   a.OversoldThreshold,
		OverboughtThreshold: a.OverboughtThreshold,
		StrongBuyThreshold:  a.StrongBuyThreshold,
		StrongSellThreshold: a.StrongSellThreshold,
		MACDFast:            a.MACDFast,
		MACDSlow:            a.MACDSlow,
		MACDSignal:          a.MACDSignal,
		RecentWindowDays:    a.RecentWindowDays,
		DisplayTailRows:     a.DisplayTailRows,
		HistoryDays:         a.HistoryDays,
		MaxConcurrent:       a.MaxConcurrent,
		PriceDecimals:       a.PriceDecimals,
		RSIDecimals:         a.RSIDecimals,
		MACDDecimals:        a.MACDDecimals,
	}
}
