package notifier

import (
	"fmt"
	"strings"

	"SignalScan/internal/model"
)

var signalEmoji = map[model.SignalLabel]string{
	model.SignalStrongBuy:  "🟢🟢",
	model.SignalBuy:        "🟢",
	model.SignalSell:       "🔴",
	model.SignalStrongSell: "🔴🔴",
	model.SignalHold:       "⚪",
}

// FormatPortfolioReport renders the full portfolio with one line per symbol.
func FormatPortfolioReport(records []*model.SignalRecord, date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>📊 Portfolio Report — %s</b>\n\n", date)
	for _, rec := range records {
		fmt.Fprintf(&b, "%s <b>%s</b> $%.2f | RSI %.1f | %s\n",
			signalEmoji[rec.CurrentSignal], rec.Symbol, rec.CurrentPrice, rec.CurrentRSI, rec.CurrentSignal)
		for _, reason := range rec.CalendarReasons {
			fmt.Fprintf(&b, "   ⚠️ %s\n", reason)
		}
	}
	return b.String()
}

// FormatScanAlert renders only the actionable signals from a market scan.
// Returns empty when nothing is actionable, so no message goes out.
func FormatScanAlert(records []*model.SignalRecord, date string) string {
	var actionable []*model.SignalRecord
	for _, rec := range records {
		if rec.CurrentSignal.Actionable() {
			actionable = append(actionable, rec)
		}
	}
	if len(actionable) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>🔔 Market Scan — %s</b>\n\n", date)
	for _, rec := range actionable {
		fmt.Fprintf(&b, "%s <b>%s</b> $%.2f | RSI %.1f | %s (%s)\n",
			signalEmoji[rec.CurrentSignal], rec.Symbol, rec.CurrentPrice, rec.CurrentRSI,
			rec.CurrentSignal, rec.SignalStrength)
		for _, reason := range rec.CalendarReasons {
			fmt.Fprintf(&b, "   ⚠️ %s\n", reason)
		}
	}
	return b.String()
}
