package analyzer

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"SignalScan/internal/fetcher"
	"SignalScan/internal/indicator"
	"SignalScan/internal/metrics"
	"SignalScan/internal/model"
	"SignalScan/internal/store"
	"SignalScan/internal/strategy"
)

// Config holds the analysis parameters.
type Config struct {
	RSIPeriod           int
	OversoldThreshold   float64
	OverboughtThreshold float64
	StrongBuyThreshold  float64
	StrongSellThreshold float64
	MACDFast            int
	MACDSlow            int
	MACDSignal          int
	RecentWindowDays    int
	DisplayTailRows     int
	HistoryDays         int
	MaxConcurrent       int
	PriceDecimals       int
	RSIDecimals         int
	MACDDecimals        int
}

// DefaultConfig returns the standard 14-day RSI / 12-26-9 MACD setup.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:           14,
		OversoldThreshold:   30,
		OverboughtThreshold: 70,
		StrongBuyThreshold:  20,
		StrongSellThreshold: 80,
		MACDFast:            12,
		MACDSlow:            26,
		MACDSignal:          9,
		RecentWindowDays:    30,
		DisplayTailRows:     10,
		HistoryDays:         365,
		MaxConcurrent:       4,
		PriceDecimals:       2,
		RSIDecimals:         1,
		MACDDecimals:        4,
	}
}

// SymbolError is a per-symbol analysis failure. One bad symbol never fails
// the batch.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Err    error  `json:"-"`
}

func (e *SymbolError) Error() string { return fmt.Sprintf("%s: %v", e.Symbol, e.Err) }

func (e *SymbolError) Unwrap() error { return e.Err }

// Result is the outcome of one batch analysis.
type Result struct {
	Records        []*model.SignalRecord
	Errors         []*SymbolError
	CachedCount    int
	GeneratedCount int
	Date           string
}

// Analyzer runs cache-first signal analysis over a symbol batch.
type Analyzer struct {
	store   store.SignalStore
	fetcher fetcher.Fetcher
	cfg     Config
}

// New creates an Analyzer.
func New(s store.SignalStore, f fetcher.Fetcher, cfg Config) *Analyzer {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &Analyzer{store: s, fetcher: f, cfg: cfg}
}

// Analyze resolves signal records for the given symbols on the given date
// (today when empty). Records already in the store are returned as-is; the
// rest are computed concurrently, persisted and returned. Output keeps the
// order of the (normalized, deduplicated) input.
func (a *Analyzer) Analyze(ctx context.Context, symbols []string, date string) *Result {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	symbols = normalizeSymbols(symbols)

	part := a.store.GetMany(symbols, date)
	metrics.CacheHits.Add(float64(len(part.Cached)))
	metrics.CacheMisses.Add(float64(len(part.Missing)))

	bySymbol := make(map[string]*model.SignalRecord, len(symbols))
	for _, rec := range part.Cached {
		rec.Source = model.SourceDatabase
		bySymbol[rec.Symbol] = rec
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, a.cfg.MaxConcurrent)
		failures []*SymbolError
	)
	for _, symbol := range part.Missing {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rec, err := a.analyzeOne(ctx, symbol, date)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				metrics.FetchFailures.Inc()
				log.Error().Err(err).Str("symbol", symbol).Msg("analysis failed")
				failures = append(failures, &SymbolError{Symbol: symbol, Err: err})
				return
			}
			bySymbol[symbol] = rec
		}(symbol)
	}
	wg.Wait()

	res := &Result{
		Date:        date,
		CachedCount: len(part.Cached),
		Errors:      failures,
	}
	for _, symbol := range symbols {
		if rec, ok := bySymbol[symbol]; ok {
			res.Records = append(res.Records, rec)
		}
	}
	res.GeneratedCount = len(res.Records) - res.CachedCount
	return res
}

// analyzeOne computes a fresh record for one symbol and persists it. A failed
// write is logged and counted but the record is still returned.
func (a *Analyzer) analyzeOne(ctx context.Context, symbol, date string) (*model.SignalRecord, error) {
	bars, err := a.fetcher.FetchHistory(ctx, symbol, a.cfg.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	rsi, err := indicator.RSISeries(closes, a.cfg.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	macd, err := indicator.MACDSeries(closes, a.cfg.MACDFast, a.cfg.MACDSlow, a.cfg.MACDSignal)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}

	last := len(bars) - 1
	if math.IsNaN(rsi[last]) {
		return nil, fmt.Errorf("insufficient history: %d bars, need more than %d", len(bars), a.cfg.RSIPeriod)
	}

	points := make([]model.IndicatorPoint, len(bars))
	for i := range bars {
		points[i] = model.IndicatorPoint{
			RSI:        rsi[i],
			MACD:       macd.Line[i],
			MACDSignal: macd.Signal[i],
			MACDHist:   macd.Histogram[i],
		}
	}

	params := strategy.Params{
		OversoldThreshold:   a.cfg.OversoldThreshold,
		OverboughtThreshold: a.cfg.OverboughtThreshold,
		StrongBuyThreshold:  a.cfg.StrongBuyThreshold,
		StrongSellThreshold: a.cfg.StrongSellThreshold,
	}
	labels := strategy.Labels(points, params)

	flags, err := a.fetcher.FetchCalendarFlags(ctx, symbol)
	if err != nil {
		// Calendar data is advisory; analysis proceeds without it.
		log.Warn().Err(err).Str("symbol", symbol).Msg("calendar lookup failed, flags unset")
		flags = model.CalendarFlags{}
	}
	strategy.ApplyCalendarOverride(labels, flags)

	buys, sells := strategy.CountRecent(labels, a.cfg.RecentWindowDays)

	rec := &model.SignalRecord{
		Symbol:            symbol,
		Date:              date,
		CurrentPrice:      round(bars[last].Close, a.cfg.PriceDecimals),
		CurrentRSI:        round(rsi[last], a.cfg.RSIDecimals),
		CurrentSignal:     labels[last],
		SignalStrength:    strategy.StrengthOf(rsi[last], params),
		CurrentMACD:       round(macd.Line[last], a.cfg.MACDDecimals),
		CurrentMACDSignal: round(macd.Signal[last], a.cfg.MACDDecimals),
		CurrentMACDHist:   round(macd.Histogram[last], a.cfg.MACDDecimals),
		MACDPosition:      strategy.PositionOf(macd.Line[last], macd.Signal[last]),
		RecentBuySignals:  buys,
		RecentSellSignals: sells,
		CalendarEvents:    flags,
		CalendarReasons:   strategy.CalendarReasons(flags),
		LastUpdated:       time.Now().Format(time.RFC3339),
		Source:            model.SourceGenerated,
		Tail:              tailRows(bars, rsi, macd.Line, labels, a.cfg),
	}

	metrics.SignalsGenerated.WithLabelValues(string(rec.CurrentSignal)).Inc()

	if err := a.store.Put(symbol, date, rec); err != nil {
		metrics.StoreWriteFailures.Inc()
		log.Warn().Err(err).Str("symbol", symbol).Msg("signal record not persisted")
	}
	return rec, nil
}

// CachedRecord returns a stored record without triggering a computation.
func (a *Analyzer) CachedRecord(symbol, date string) (*model.SignalRecord, bool) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return a.store.Get(strings.ToUpper(strings.TrimSpace(symbol)), date)
}

// PurgeOlderThan removes stored records older than the given number of days.
func (a *Analyzer) PurgeOlderThan(days int) (int, error) {
	return a.store.PurgeOlderThan(days)
}

// StoreStats reports store size and coverage.
func (a *Analyzer) StoreStats() (*store.Stats, error) {
	return a.store.Stats()
}

// tailRows renders the last rows of the series for display, skipping bars
// whose RSI is still warming up.
func tailRows(bars []model.PriceBar, rsi []float64, macdLine []float64, labels []model.SignalLabel, cfg Config) []model.TailRow {
	var rows []model.TailRow
	for i := range bars {
		if math.IsNaN(rsi[i]) {
			continue
		}
		rows = append(rows, model.TailRow{
			Date:   bars[i].Date.Format("2006-01-02"),
			Close:  round(bars[i].Close, cfg.PriceDecimals),
			RSI:    round(rsi[i], cfg.RSIDecimals),
			MACD:   round(macdLine[i], cfg.MACDDecimals),
			Signal: labels[i],
		})
	}
	if len(rows) > cfg.DisplayTailRows {
		rows = rows[len(rows)-cfg.DisplayTailRows:]
	}
	return rows
}

func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// round rounds half away from zero via decimal to avoid float repr drift in
// JSON output. NaN and Inf collapse to zero; callers reject NaN-final series
// before records are built.
func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(int32(places)).Float64()
	return f
}
