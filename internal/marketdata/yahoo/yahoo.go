// Package yahoo fetches daily bars and quotes from the Yahoo Finance
// v8 chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/quantfarer/vigil/internal/core"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// validSymbol matches stock symbols like AAPL, MSFT, BRK.B
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9]{1,10}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// Client is a Yahoo Finance market data provider.
type Client struct {
	client  *http.Client
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New creates a client with a 10s request timeout.
func New(opts ...Option) *Client {
	c := &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Bars fetches up to lookbackDays daily bars, oldest first. Bars with
// missing fields are skipped.
func (c *Client) Bars(ctx context.Context, symbol string, lookbackDays int) ([]core.PriceBar, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, core.WrapError(core.ErrSymbolNotFound, err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -lookbackDays)
	url := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL, symbol, start.Unix(), end.Unix())

	result, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, core.ErrNoData
	}
	quotes := r.Indicators.Quote[0]

	bars := make([]core.PriceBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(quotes.Close) || i >= len(quotes.Open) ||
			quotes.Close[i] == nil || quotes.Open[i] == nil {
			continue // partial rows happen on the current session
		}
		closePrice := *quotes.Close[i]
		// High and low can be null on a row whose close is present;
		// the close stands in for the missing extreme.
		high, low := closePrice, closePrice
		if i < len(quotes.High) && quotes.High[i] != nil {
			high = *quotes.High[i]
		}
		if i < len(quotes.Low) && quotes.Low[i] != nil {
			low = *quotes.Low[i]
		}
		var volume int64
		if i < len(quotes.Volume) && quotes.Volume[i] != nil {
			volume = int64(*quotes.Volume[i])
		}
		bars = append(bars, core.PriceBar{
			Time:   time.Unix(int64(ts), 0),
			Open:   *quotes.Open[i],
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}
	if len(bars) == 0 {
		return nil, core.ErrNoData
	}
	return bars, nil
}

// Price fetches the latest traded price.
func (c *Client) Price(ctx context.Context, symbol string) (float64, error) {
	if err := validateSymbol(symbol); err != nil {
		return 0, core.WrapError(core.ErrSymbolNotFound, err)
	}

	url := fmt.Sprintf("%s/%s?interval=1d&range=1d", c.baseURL, symbol)
	result, err := c.fetch(ctx, url)
	if err != nil {
		return 0, err
	}

	price := result.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, core.ErrNoData
	}
	return price, nil
}

func (c *Client) fetch(ctx context.Context, url string) (*chartResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; vigil/1.0)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderTimeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, core.ErrSymbolNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrProviderFailed,
			fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	if result.Chart.Error != nil {
		return nil, core.WrapError(core.ErrProviderFailed,
			fmt.Errorf("yahoo error: %s", result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.ErrNoData
	}
	return &result, nil
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
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int     `json:"regularMarketTime"`
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
