package model

import "time"

// PriceBar represents a single daily OHLCV observation.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// IndicatorPoint holds the indicator values aligned to one PriceBar.
// Entries are NaN until the corresponding warm-up window is satisfied;
// NaN marks "undefined" and is distinct from a computed zero.
type IndicatorPoint struct {
	RSI        float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64
}
