package fetcher

import (
	"context"
	"errors"
	"fmt"

	"SignalScan/internal/model"
)

// ErrNoData means the upstream source returned an empty price series for the
// symbol. Non-retryable: retrying an unknown ticker does not help.
var ErrNoData = errors.New("no price data for symbol")

// FetchError reports a transient upstream failure that persisted through the
// configured retries.
type FetchError struct {
	Symbol   string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.Symbol, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves market data for a symbol.
//
// FetchHistory returns a chronological daily bar series covering roughly the
// requested number of days, or ErrNoData / *FetchError. FetchCalendarFlags
// failures are non-fatal by contract: callers degrade to unset flags.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, days int) ([]model.PriceBar, error)
	FetchCalendarFlags(ctx context.Context, symbol string) (model.CalendarFlags, error)
	Name() string
}
