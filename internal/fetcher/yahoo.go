package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"SignalScan/internal/model"
)

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	Client   *http.Client
	Attempts int
	Backoff  time.Duration
}

// NewYahooFetcher creates a Yahoo fetcher with the given timeout and retry
// policy, and optional proxy support.
func NewYahooFetcher(timeout time.Duration, attempts int, backoff time.Duration, proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if attempts < 1 {
		attempts = 1
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		Attempts: attempts,
		Backoff:  backoff,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooSummary is the quoteSummary calendarEvents response.
type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			CalendarEvents struct {
				Earnings struct {
					EarningsDate []struct {
						Raw int64 `json:"raw"`
					} `json:"earningsDate"`
				} `json:"earnings"`
				ExDividendDate *struct {
					Raw int64 `json:"raw"`
				} `json:"exDividendDate"`
			} `json:"calendarEvents"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func rangeForDays(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

func (f *YahooFetcher) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, days int) ([]model.PriceBar, error) {
	u := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=%s",
		url.PathEscape(symbol), rangeForDays(days))

	var chart yahooChart
	if err := f.getJSON(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	quote := result.Indicators.Quote[0]

	bars := make([]model.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bars (holidays etc.)
		}
		bars = append(bars, model.PriceBar{
			Date:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: int64(toFloat(quote.Volume[i])),
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// FetchHistory retrieves the daily bar series, retrying transient failures
// with a fixed backoff. ErrNoData is surfaced immediately.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string, days int) ([]model.PriceBar, error) {
	var lastErr error
	for attempt := 1; attempt <= f.Attempts; attempt++ {
		bars, err := f.fetchChart(ctx, symbol, days)
		if err == nil {
			return bars, nil
		}
		if err == ErrNoData {
			return nil, ErrNoData
		}
		lastErr = err
		if attempt < f.Attempts {
			log.Warn().Err(err).Str("symbol", symbol).Int("attempt", attempt).Msg("history fetch failed, retrying")
			select {
			case <-ctx.Done():
				return nil, &FetchError{Symbol: symbol, Attempts: attempt, Err: ctx.Err()}
			case <-time.After(f.Backoff):
			}
		}
	}
	return nil, &FetchError{Symbol: symbol, Attempts: f.Attempts, Err: lastErr}
}

// FetchCalendarFlags checks whether an ex-dividend or earnings date falls
// exactly one calendar day ahead. Errors are returned to the caller, which
// degrades to unset flags.
func (f *YahooFetcher) FetchCalendarFlags(ctx context.Context, symbol string) (model.CalendarFlags, error) {
	u := fmt.Sprintf("https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=calendarEvents",
		url.PathEscape(symbol))

	var summary yahooSummary
	if err := f.getJSON(ctx, u, &summary); err != nil {
		return model.CalendarFlags{}, err
	}
	if summary.QuoteSummary.Error != nil {
		return model.CalendarFlags{}, fmt.Errorf("yahoo api error: %s", summary.QuoteSummary.Error.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return model.CalendarFlags{}, nil
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	events := summary.QuoteSummary.Result[0].CalendarEvents

	var flags model.CalendarFlags
	if ex := events.ExDividendDate; ex != nil && ex.Raw > 0 {
		if time.Unix(ex.Raw, 0).UTC().Format("2006-01-02") == tomorrow {
			flags.ExDividendTomorrow = true
		}
	}
	for _, ed := range events.Earnings.EarningsDate {
		if ed.Raw > 0 && time.Unix(ed.Raw, 0).UTC().Format("2006-01-02") == tomorrow {
			flags.EarningsTomorrow = true
			break
		}
	}
	return flags, nil
}
