package notifier

import (
	"strings"
	"testing"

	"SignalScan/internal/model"
)

func rec(symbol string, signal model.SignalLabel) *model.SignalRecord {
	return &model.SignalRecord{
		Symbol:         symbol,
		CurrentPrice:   100.50,
		CurrentRSI:     25.3,
		CurrentSignal:  signal,
		SignalStrength: model.StrengthNormal,
	}
}

func TestFormatScanAlertSkipsHolds(t *testing.T) {
	records := []*model.SignalRecord{
		rec("AAPL", model.SignalHold),
		rec("MSFT", model.SignalBuy),
		rec("TSLA", model.SignalHold),
	}
	msg := FormatScanAlert(records, "2026-08-31")
	if !strings.Contains(msg, "MSFT") {
		t.Errorf("actionable symbol missing from alert:\n%s", msg)
	}
	if strings.Contains(msg, "AAPL") || strings.Contains(msg, "TSLA") {
		t.Errorf("HOLD symbols must not appear in alert:\n%s", msg)
	}
}

func TestFormatScanAlertEmptyWhenNothingActionable(t *testing.T) {
	records := []*model.SignalRecord{rec("AAPL", model.SignalHold)}
	if msg := FormatScanAlert(records, "2026-08-31"); msg != "" {
		t.Errorf("expected empty alert, got:\n%s", msg)
	}
}

func TestFormatPortfolioReportListsEverySymbol(t *testing.T) {
	records := []*model.SignalRecord{
		rec("AAPL", model.SignalHold),
		rec("MSFT", model.SignalSell),
	}
	records[1].CalendarReasons = []string{"Earnings report tomorrow"}

	msg := FormatPortfolioReport(records, "2026-08-31")
	for _, want := range []string{"AAPL", "MSFT", "Earnings report tomorrow", "2026-08-31"} {
		if !strings.Contains(msg, want) {
			t.Errorf("report missing %q:\n%s", want, msg)
		}
	}
}
