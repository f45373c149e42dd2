package model

// SignalLabel is the discrete trading signal assigned to one bar.
type SignalLabel string

const (
	SignalHold       SignalLabel = "HOLD"
	SignalBuy        SignalLabel = "BUY"
	SignalSell       SignalLabel = "SELL"
	SignalStrongBuy  SignalLabel = "STRONG_BUY"
	SignalStrongSell SignalLabel = "STRONG_SELL"
)

// IsBuy reports whether the label is a buy-side signal.
func (s SignalLabel) IsBuy() bool { return s == SignalBuy || s == SignalStrongBuy }

// IsSell reports whether the label is a sell-side signal.
func (s SignalLabel) IsSell() bool { return s == SignalSell || s == SignalStrongSell }

// Actionable reports whether the label calls for a trade.
func (s SignalLabel) Actionable() bool { return s.IsBuy() || s.IsSell() }

// SignalStrength qualifies how extreme the RSI reading behind a signal is.
type SignalStrength string

const (
	StrengthNormal SignalStrength = "NORMAL"
	StrengthStrong SignalStrength = "STRONG"
)

// MACDPosition categorizes where the MACD and signal lines sit relative to
// each other and the zero line. Informational only, independent of the label.
type MACDPosition string

const (
	PositionGoldenCross MACDPosition = "Golden Cross (Bullish)"
	PositionDeadCross   MACDPosition = "Dead Cross (Bearish)"
	PositionUpTrend     MACDPosition = "MACD & Signal above zero line (Up Trend)"
	PositionDownTrend   MACDPosition = "MACD & Signal Line below zero line (Down Trend)"
	PositionMixed       MACDPosition = "Mixed Signals"
)

// CalendarFlags marks corporate events falling on the next calendar day.
type CalendarFlags struct {
	ExDividendTomorrow bool `json:"exDividendTomorrow"`
	EarningsTomorrow   bool `json:"earningsTomorrow"`
}

// TailRow is one historical bar with its indicators, kept on a record for display.
type TailRow struct {
	Date   string      `json:"date"`
	Close  float64     `json:"close"`
	RSI    float64     `json:"rsi"`
	MACD   float64     `json:"macd"`
	Signal SignalLabel `json:"signal"`
}

// Source tags for a SignalRecord.
const (
	SourceDatabase  = "database"
	SourceGenerated = "generated"
)

// SignalRecord is the persisted and returned analysis unit for one (symbol, date).
// Records are replaced wholesale on upsert, never partially mutated.
type SignalRecord struct {
	Symbol            string         `json:"symbol"`
	Date              string         `json:"date"`
	CurrentPrice      float64        `json:"currentPrice"`
	CurrentRSI        float64        `json:"currentRSI"`
	CurrentSignal     SignalLabel    `json:"currentSignal"`
	SignalStrength    SignalStrength `json:"signalStrength"`
	CurrentMACD       float64        `json:"currentMACD"`
	CurrentMACDSignal float64        `json:"currentMACDSignal"`
	CurrentMACDHist   float64        `json:"currentMACDHistogram"`
	MACDPosition      MACDPosition   `json:"macdPosition"`
	RecentBuySignals  int            `json:"recentBuySignals"`
	RecentSellSignals int            `json:"recentSellSignals"`
	CalendarEvents    CalendarFlags  `json:"calendarEvents"`
	CalendarReasons   []string       `json:"calendarReasons"`
	LastUpdated       string         `json:"lastUpdated"`
	Source            string         `json:"source"`
	Tail              []TailRow      `json:"data,omitempty"`
}
