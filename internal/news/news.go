// Package news fetches recent headlines for a symbol from NewsAPI.org.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/quantfarer/vigil/internal/core"
)

const defaultBaseURL = "https://newsapi.org/v2/everything"

// Fetcher supplies recent headlines. An empty slice is a valid result,
// not an error.
type Fetcher interface {
	Headlines(ctx context.Context, symbol, companyName string) ([]string, error)
}

// Client is a NewsAPI.org headline fetcher.
type Client struct {
	apiKey     string
	baseURL    string
	client     *http.Client
	log        *zap.Logger
	headlines  int
	windowDays int
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// New creates a client fetching up to headlines articles per symbol
// from the past windowDays days.
func New(apiKey string, headlines, windowDays int, log *zap.Logger, opts ...Option) *Client {
	if headlines <= 0 {
		headlines = 10
	}
	if windowDays <= 0 {
		windowDays = 7
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log,
		headlines:  headlines,
		windowDays: windowDays,
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Headlines fetches recent headlines, most relevant first. Articles
// removed by the upstream are skipped; each entry is title plus
// description, truncated to 200 characters. A missing API key yields
// an empty result.
func (c *Client) Headlines(ctx context.Context, symbol, companyName string) ([]string, error) {
	if c.apiKey == "" {
		c.log.Warn("news API key not configured, skipping headlines", zap.String("symbol", symbol))
		return nil, nil
	}

	query := symbol
	if companyName != "" {
		query = fmt.Sprintf("%s OR %s", symbol, companyName)
	}
	from := c.now().AddDate(0, 0, -c.windowDays).Format("2006-01-02")

	params := url.Values{}
	params.Set("q", query)
	params.Set("from", from)
	params.Set("sortBy", "relevancy")
	params.Set("language", "en")
	params.Set("pageSize", fmt.Sprintf("%d", c.headlines))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderTimeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrProviderFailed,
			fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var payload struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}

	out := make([]string, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		text := a.Title
		if a.Description != "" {
			text = a.Title + ". " + a.Description
		}
		out = append(out, truncate(text, 200))
	}
	return out, nil
}

// truncate caps s at max runes. Cutting on a rune boundary keeps a
// multi-byte headline valid UTF-8.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
