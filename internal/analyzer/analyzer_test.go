package analyzer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"SignalScan/internal/fetcher"
	"SignalScan/internal/model"
	"SignalScan/internal/store"
)

// Closes chosen so the 14-period RSI lands exactly on 68.0 at the last bar.
var pinnedCloses = []float64{
	44, 44.25, 44.5, 43.75, 44.5, 45, 45.5, 46,
	46.25, 45.75, 46, 46.5, 47, 46.5, 46.25,
}

func newTestAnalyzer(t *testing.T, f fetcher.Fetcher) (*Analyzer, store.SignalStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "signals.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfg := DefaultConfig()
	cfg.MaxConcurrent = 2
	return New(s, f, cfg), s
}

func TestAnalyzeGeneratesThenCaches(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Bars: map[string][]model.PriceBar{"AAPL": fetcher.BarsFromCloses(pinnedCloses)},
	}
	a, _ := newTestAnalyzer(t, mock)

	first := a.Analyze(context.Background(), []string{"AAPL"}, "2026-08-31")
	if len(first.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", first.Errors)
	}
	if first.GeneratedCount != 1 || first.CachedCount != 0 {
		t.Fatalf("first run: generated=%d cached=%d, want 1/0", first.GeneratedCount, first.CachedCount)
	}
	rec := first.Records[0]
	if rec.Source != model.SourceGenerated {
		t.Errorf("first run source = %q, want %q", rec.Source, model.SourceGenerated)
	}
	if rec.CurrentRSI != 68.0 {
		t.Errorf("CurrentRSI = %v, want 68.0", rec.CurrentRSI)
	}
	if rec.CurrentPrice != 46.25 {
		t.Errorf("CurrentPrice = %v, want 46.25", rec.CurrentPrice)
	}

	second := a.Analyze(context.Background(), []string{"AAPL"}, "2026-08-31")
	if second.CachedCount != 1 || second.GeneratedCount != 0 {
		t.Fatalf("second run: generated=%d cached=%d, want 0/1", second.GeneratedCount, second.CachedCount)
	}
	got := second.Records[0]
	if got.Source != model.SourceDatabase {
		t.Errorf("second run source = %q, want %q", got.Source, model.SourceDatabase)
	}
	if got.CurrentRSI != rec.CurrentRSI || got.CurrentSignal != rec.CurrentSignal {
		t.Errorf("cached record diverged: rsi %v/%v signal %v/%v",
			got.CurrentRSI, rec.CurrentRSI, got.CurrentSignal, rec.CurrentSignal)
	}
}

func TestAnalyzeIsolatesSymbolFailures(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Bars: map[string][]model.PriceBar{"AAPL": fetcher.BarsFromCloses(pinnedCloses)},
		HistoryErr: map[string]error{
			"BROKEN": errors.New("upstream 500"),
		},
	}
	a, _ := newTestAnalyzer(t, mock)

	res := a.Analyze(context.Background(), []string{"AAPL", "BROKEN"}, "2026-08-31")
	if len(res.Records) != 1 || res.Records[0].Symbol != "AAPL" {
		t.Fatalf("records = %v, want only AAPL", res.Records)
	}
	if len(res.Errors) != 1 || res.Errors[0].Symbol != "BROKEN" {
		t.Fatalf("errors = %v, want one for BROKEN", res.Errors)
	}
}

func TestAnalyzeCalendarFailureDegrades(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Bars:        map[string][]model.PriceBar{"AAPL": fetcher.BarsFromCloses(pinnedCloses)},
		CalendarErr: errors.New("quote summary unavailable"),
	}
	a, _ := newTestAnalyzer(t, mock)

	res := a.Analyze(context.Background(), []string{"AAPL"}, "2026-08-31")
	if len(res.Errors) != 0 {
		t.Fatalf("calendar failure must not fail analysis: %v", res.Errors)
	}
	rec := res.Records[0]
	if rec.CalendarEvents.ExDividendTomorrow || rec.CalendarEvents.EarningsTomorrow {
		t.Errorf("flags should be unset on calendar failure: %+v", rec.CalendarEvents)
	}
	if len(rec.CalendarReasons) != 0 {
		t.Errorf("reasons should be empty, got %v", rec.CalendarReasons)
	}
}

func TestAnalyzeCalendarOverrideForcesSell(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Bars:  map[string][]model.PriceBar{"AAPL": fetcher.BarsFromCloses(pinnedCloses)},
		Flags: map[string]model.CalendarFlags{"AAPL": {ExDividendTomorrow: true}},
	}
	a, _ := newTestAnalyzer(t, mock)

	res := a.Analyze(context.Background(), []string{"AAPL"}, "2026-08-31")
	rec := res.Records[0]
	if rec.CurrentSignal != model.SignalSell {
		t.Errorf("CurrentSignal = %q, want SELL on ex-dividend eve", rec.CurrentSignal)
	}
	if len(rec.CalendarReasons) != 1 || rec.CalendarReasons[0] != "Ex-dividend date tomorrow" {
		t.Errorf("CalendarReasons = %v", rec.CalendarReasons)
	}
}

func TestAnalyzeNormalizesAndDeduplicates(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Bars: map[string][]model.PriceBar{"AAPL": fetcher.BarsFromCloses(pinnedCloses)},
	}
	a, _ := newTestAnalyzer(t, mock)

	res := a.Analyze(context.Background(), []string{"aapl", " AAPL ", "aapl"}, "2026-08-31")
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	if res.Records[0].Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", res.Records[0].Symbol)
	}
}

func TestAnalyzeRejectsShortHistory(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Bars: map[string][]model.PriceBar{"AAPL": fetcher.BarsFromCloses([]float64{44, 44.5, 45, 45.5, 46})},
	}
	a, _ := newTestAnalyzer(t, mock)

	res := a.Analyze(context.Background(), []string{"AAPL"}, "2026-08-31")
	if len(res.Records) != 0 {
		t.Fatalf("short history must not yield a record: %v", res.Records)
	}
	if len(res.Errors) != 1 || res.Errors[0].Symbol != "AAPL" {
		t.Fatalf("errors = %v", res.Errors)
	}
}

func TestAnalyzeTailSkipsWarmup(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Bars: map[string][]model.PriceBar{"AAPL": fetcher.BarsFromCloses(pinnedCloses)},
	}
	a, _ := newTestAnalyzer(t, mock)

	res := a.Analyze(context.Background(), []string{"AAPL"}, "2026-08-31")
	rec := res.Records[0]
	// 15 bars minus 14 warm-up bars leaves exactly one displayable row.
	if len(rec.Tail) != 1 {
		t.Fatalf("tail rows = %d, want 1", len(rec.Tail))
	}
	if rec.Tail[0].RSI != 68.0 {
		t.Errorf("tail RSI = %v, want 68.0", rec.Tail[0].RSI)
	}
}

// failStore rejects every write while reporting all symbols as misses.
type failStore struct{}

func (failStore) Get(string, string) (*model.SignalRecord, bool) { return nil, false }
func (failStore) Put(string, string, *model.SignalRecord) error  { return errors.New("disk full") }
func (failStore) GetMany(symbols []string, _ string) *store.Partition {
	return &store.Partition{Missing: symbols}
}
func (failStore) PurgeOlderThan(int) (int, error) { return 0, nil }
func (failStore) Stats() (*store.Stats, error)    { return &store.Stats{}, nil }
func (failStore) Close() error                    { return nil }

func TestAnalyzeSurvivesWriteFailure(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Bars: map[string][]model.PriceBar{"AAPL": fetcher.BarsFromCloses(pinnedCloses)},
	}
	a := New(failStore{}, mock, DefaultConfig())

	res := a.Analyze(context.Background(), []string{"AAPL"}, "2026-08-31")
	if len(res.Records) != 1 || len(res.Errors) != 0 {
		t.Fatalf("records=%d errors=%v, want the record despite the failed write", len(res.Records), res.Errors)
	}
}
