// Package yahoo fetches daily OHLCV history from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/jadaunkg/horizon/internal/core"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// validSymbol matches tickers like TSLA, 0700.HK plus index and yield
// symbols like ^GSPC and ^TNX
var validSymbol = regexp.MustCompile(`^\^?[A-Za-z0-9-]{1,10}(\.[A-Za-z]{1,4})?$`)

func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// Yahoo fetches daily history from the public chart endpoint
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// New creates a Yahoo provider. A zero timeout falls back to 10s.
func New(timeout time.Duration) *Yahoo {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Yahoo{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultBaseURL,
	}
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

// History fetches daily bars for the symbol over [start, end]
func (y *Yahoo) History(ctx context.Context, symbol string, start, end time.Time) ([]core.Bar, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d",
		y.baseURL, url.PathEscape(symbol), start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no data for symbol: %s", symbol)
	}

	r := result.Chart.Result[0]
	quotes := r.Indicators.Quote[0]

	bars := make([]core.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if quotes.Close[i] == nil {
			continue // market holiday or partial row
		}
		bar := core.Bar{
			Date:  time.Unix(int64(ts), 0).UTC(),
			Close: *quotes.Close[i],
		}
		if quotes.Open[i] != nil {
			bar.Open = *quotes.Open[i]
		}
		if quotes.High[i] != nil {
			bar.High = *quotes.High[i]
		}
		if quotes.Low[i] != nil {
			bar.Low = *quotes.Low[i]
		}
		if quotes.Volume[i] != nil {
			bar.Volume = float64(*quotes.Volume[i])
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int     `json:"volume"`
}
