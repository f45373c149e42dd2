package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"SignalScan/internal/analyzer"
	"SignalScan/internal/metrics"
	"SignalScan/internal/notifier"
	"SignalScan/internal/watchlist"
)

// Config carries the cron expressions (with seconds field) for each job.
type Config struct {
	ScanCron      string
	CleanupCron   string
	HealthCron    string
	RetentionDays int
	JobTimeout    time.Duration
}

// Scheduler runs the periodic market scan, store cleanup and health report.
type Scheduler struct {
	cron      *cron.Cron
	analyzer  *analyzer.Analyzer
	watchlist *watchlist.Manager
	notifier  notifier.Notifier
	cfg       Config
}

// New builds a Scheduler. Jobs that are still running when their next tick
// arrives are skipped, not stacked.
func New(a *analyzer.Analyzer, wl *watchlist.Manager, n notifier.Notifier, cfg Config) (*Scheduler, error) {
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	s := &Scheduler{
		analyzer:  a,
		watchlist: wl,
		notifier:  n,
		cfg:       cfg,
	}
	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	if _, err := s.cron.AddFunc(cfg.ScanCron, s.runScan); err != nil {
		return nil, fmt.Errorf("scan cron %q: %w", cfg.ScanCron, err)
	}
	if _, err := s.cron.AddFunc(cfg.CleanupCron, s.runCleanup); err != nil {
		return nil, fmt.Errorf("cleanup cron %q: %w", cfg.CleanupCron, err)
	}
	if _, err := s.cron.AddFunc(cfg.HealthCron, s.runHealthReport); err != nil {
		return nil, fmt.Errorf("health cron %q: %w", cfg.HealthCron, err)
	}
	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().
		Str("scan", s.cfg.ScanCron).
		Str("cleanup", s.cfg.CleanupCron).
		Str("health", s.cfg.HealthCron).
		Msg("scheduler started")
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("scheduler stopped")
}

// RunScanNow triggers the market scan outside the schedule.
func (s *Scheduler) RunScanNow() { s.runScan() }

func (s *Scheduler) runScan() {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	symbols := append(s.watchlist.Portfolio(), s.watchlist.ScanList()...)
	res := s.analyzer.Analyze(ctx, symbols, "")

	elapsed := time.Since(start)
	metrics.ScanDuration.Observe(elapsed.Seconds())
	log.Info().
		Int("analyzed", len(res.Records)).
		Int("failed", len(res.Errors)).
		Int("cached", res.CachedCount).
		Dur("elapsed", elapsed).
		Msg("market scan finished")

	if msg := notifier.FormatScanAlert(res.Records, res.Date); msg != "" {
		if err := s.notifier.Send(ctx, msg); err != nil {
			log.Error().Err(err).Msg("scan alert not delivered")
		}
	}
}

func (s *Scheduler) runCleanup() {
	deleted, err := s.analyzer.PurgeOlderThan(s.cfg.RetentionDays)
	if err != nil {
		log.Error().Err(err).Msg("store cleanup failed")
		return
	}
	log.Info().Int("deleted", deleted).Int("retentionDays", s.cfg.RetentionDays).Msg("store cleanup finished")
}

func (s *Scheduler) runHealthReport() {
	stats, err := s.analyzer.StoreStats()
	if err != nil {
		log.Error().Err(err).Msg("health report failed")
		return
	}
	log.Info().
		Int("totalRecords", stats.TotalRecords).
		Int("uniqueSymbols", stats.UniqueSymbols).
		Int("recordsToday", stats.RecordsToday).
		Int64("storageSizeBytes", stats.StorageSizeBytes).
		Int("portfolioSize", len(s.watchlist.Portfolio())).
		Int("scanListSize", len(s.watchlist.ScanList())).
		Msg("store health")
}
