package fetcher

import (
	"context"
	"time"

	"SignalScan/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars        map[string][]model.PriceBar // per-symbol series; fallback is generated
	Flags       map[string]model.CalendarFlags
	HistoryErr  map[string]error // per-symbol forced history failure
	CalendarErr error            // forced calendar failure for every symbol
	BasePrice   float64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbol string, days int) ([]model.PriceBar, error) {
	if err, ok := m.HistoryErr[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	base := m.BasePrice
	if base == 0 {
		base = 100
	}
	return GenerateBars(base, days), nil
}

func (m *MockFetcher) FetchCalendarFlags(_ context.Context, symbol string) (model.CalendarFlags, error) {
	if m.CalendarErr != nil {
		return model.CalendarFlags{}, m.CalendarErr
	}
	return m.Flags[symbol], nil
}

// GenerateBars builds a gently drifting daily series ending today.
func GenerateBars(basePrice float64, count int) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Date:   time.Now().AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1_000_000,
		}
	}
	return bars
}

// BarsFromCloses builds a daily series ending today from a list of closes.
// Handy for tests that pin indicator expectations to exact prices.
func BarsFromCloses(closes []float64) []model.PriceBar {
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Date:   time.Now().AddDate(0, 0, -(len(closes) - 1 - i)),
			Open:   c,
			High:   c * 1.002,
			Low:    c * 0.998,
			Close:  c,
			Volume: 500_000,
		}
	}
	return bars
}
