package strategy

import (
	"math"

	"SignalScan/internal/model"
)

// Params holds the RSI thresholds driving classification. The strong
// thresholds are stricter than the base ones (strong-buy < oversold,
// strong-sell > overbought).
type Params struct {
	OversoldThreshold   float64
	OverboughtThreshold float64
	StrongBuyThreshold  float64
	StrongSellThreshold float64
}

// DefaultParams mirrors the classic 30/70 RSI bands with 20/80 strong bands.
func DefaultParams() Params {
	return Params{
		OversoldThreshold:   30,
		OverboughtThreshold: 70,
		StrongBuyThreshold:  20,
		StrongSellThreshold: 80,
	}
}

// Labels assigns one label per bar, each bar evaluated independently from its
// own indicator values plus the crossover against the previous bar.
//
// Precedence is fixed: RSI thresholds set the base label, then a MACD
// crossover upgrades it (BUY to STRONG_BUY, SELL to STRONG_SELL) or promotes
// a HOLD when RSI leans the same way. Bars whose RSI is still in warm-up stay
// HOLD. The calendar override is applied separately, see ApplyCalendarOverride.
func Labels(points []model.IndicatorPoint, p Params) []model.SignalLabel {
	labels := make([]model.SignalLabel, len(points))
	for i, pt := range points {
		labels[i] = model.SignalHold
		if math.IsNaN(pt.RSI) {
			continue
		}

		if pt.RSI <= p.OversoldThreshold {
			labels[i] = model.SignalBuy
		} else if pt.RSI >= p.OverboughtThreshold {
			labels[i] = model.SignalSell
		}

		if i == 0 {
			continue
		}
		prev := points[i-1]
		bullish := prev.MACD <= prev.MACDSignal && pt.MACD > pt.MACDSignal
		bearish := prev.MACD >= prev.MACDSignal && pt.MACD < pt.MACDSignal

		switch {
		case bullish && labels[i] == model.SignalBuy:
			labels[i] = model.SignalStrongBuy
		case bullish && labels[i] == model.SignalHold && pt.RSI < 50:
			labels[i] = model.SignalBuy
		case bearish && labels[i] == model.SignalSell:
			labels[i] = model.SignalStrongSell
		case bearish && labels[i] == model.SignalHold && pt.RSI > 50:
			labels[i] = model.SignalSell
		}
	}
	return labels
}

// ApplyCalendarOverride forces the most recent label to SELL when a corporate
// event falls tomorrow. A known event introduces risk the indicators cannot
// see, so it outranks every technical rule — but only for the latest bar;
// historical labels are never rewritten.
func ApplyCalendarOverride(labels []model.SignalLabel, flags model.CalendarFlags) {
	if len(labels) == 0 {
		return
	}
	if flags.ExDividendTomorrow || flags.EarningsTomorrow {
		labels[len(labels)-1] = model.SignalSell
	}
}

// CalendarReasons renders human-readable reasons for set calendar flags.
func CalendarReasons(flags model.CalendarFlags) []string {
	var reasons []string
	if flags.ExDividendTomorrow {
		reasons = append(reasons, "Ex-dividend date tomorrow")
	}
	if flags.EarningsTomorrow {
		reasons = append(reasons, "Earnings report tomorrow")
	}
	return reasons
}

// StrengthOf classifies how extreme the RSI reading is.
func StrengthOf(rsi float64, p Params) model.SignalStrength {
	if math.IsNaN(rsi) {
		return model.StrengthNormal
	}
	if rsi <= p.StrongBuyThreshold || rsi >= p.StrongSellThreshold {
		return model.StrengthStrong
	}
	return model.StrengthNormal
}

// PositionOf categorizes the MACD/signal pair relative to the zero line.
func PositionOf(macd, signal float64) model.MACDPosition {
	switch {
	case macd > signal && macd > 0 && signal > 0:
		return model.PositionGoldenCross
	case macd < signal && macd < 0 && signal < 0:
		return model.PositionDeadCross
	case macd > 0 && signal > 0:
		return model.PositionUpTrend
	case macd < 0 && signal < 0:
		return model.PositionDownTrend
	default:
		return model.PositionMixed
	}
}

// CountRecent tallies buy-side and sell-side labels over the trailing window.
func CountRecent(labels []model.SignalLabel, window int) (buys, sells int) {
	start := len(labels) - window
	if start < 0 {
		start = 0
	}
	for _, l := range labels[start:] {
		if l.IsBuy() {
			buys++
		} else if l.IsSell() {
			sells++
		}
	}
	return buys, sells
}
