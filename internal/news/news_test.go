package news

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/quantfarer/vigil/internal/core"
)

func newsBody(articles ...[2]string) string {
	type article struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	payload := struct {
		Articles []article `json:"articles"`
	}{}
	for _, a := range articles {
		payload.Articles = append(payload.Articles, article{Title: a[0], Description: a[1]})
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New("test-key", 10, 7, zap.NewNop(), WithBaseURL(srv.URL))
	c.now = func() time.Time {
		return time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	}
	return c
}

func TestHeadlinesQueryParams(t *testing.T) {
	var query url.Values
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(newsBody([2]string{"Apple launches product", "Details inside"})))
	})

	got, err := c.Headlines(context.Background(), "AAPL", "Apple")
	if err != nil {
		t.Fatalf("Headlines: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 headline, got %d", len(got))
	}
	if q := query.Get("q"); q != "AAPL OR Apple" {
		t.Errorf("q = %q, want %q", q, "AAPL OR Apple")
	}
	if from := query.Get("from"); from != "2025-03-05" {
		t.Errorf("from = %q, want 2025-03-05", from)
	}
	if sort := query.Get("sortBy"); sort != "relevancy" {
		t.Errorf("sortBy = %q, want relevancy", sort)
	}
	if lang := query.Get("language"); lang != "en" {
		t.Errorf("language = %q, want en", lang)
	}
	if size := query.Get("pageSize"); size != "10" {
		t.Errorf("pageSize = %q, want 10", size)
	}
	if key := query.Get("apiKey"); key != "test-key" {
		t.Errorf("apiKey = %q, want test-key", key)
	}
}

func TestHeadlinesSymbolOnlyQuery(t *testing.T) {
	var query url.Values
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(newsBody()))
	})

	if _, err := c.Headlines(context.Background(), "NVDA", ""); err != nil {
		t.Fatalf("Headlines: %v", err)
	}
	if q := query.Get("q"); q != "NVDA" {
		t.Errorf("q = %q, want NVDA", q)
	}
}

func TestHeadlinesFormatting(t *testing.T) {
	long := strings.Repeat("x", 250)
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(newsBody(
			[2]string{"Title with description", "And its body"},
			[2]string{"Title only", ""},
			[2]string{"[Removed]", "gone"},
			[2]string{"", "no title"},
			[2]string{"Long one", long},
		)))
	})

	got, err := c.Headlines(context.Background(), "AAPL", "Apple")
	if err != nil {
		t.Fatalf("Headlines: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 headlines, got %d: %v", len(got), got)
	}
	if got[0] != "Title with description. And its body" {
		t.Errorf("got[0] = %q", got[0])
	}
	if got[1] != "Title only" {
		t.Errorf("got[1] = %q", got[1])
	}
	if len(got[2]) != 200 {
		t.Errorf("long headline length = %d, want 200", len(got[2]))
	}
}

func TestHeadlinesTruncateKeepsRunesIntact(t *testing.T) {
	// An all multi-byte description puts every byte boundary inside a
	// rune; the cut must land between runes, not split one.
	long := strings.Repeat("日", 250)
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(newsBody([2]string{"見出し", long})))
	})

	got, err := c.Headlines(context.Background(), "AAPL", "Apple")
	if err != nil {
		t.Fatalf("Headlines: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 headline, got %d", len(got))
	}
	if !utf8.ValidString(got[0]) {
		t.Errorf("truncated headline is not valid UTF-8: %q", got[0])
	}
	if n := utf8.RuneCountInString(got[0]); n != 200 {
		t.Errorf("rune count = %d, want 200", n)
	}
}

func TestHeadlinesMissingAPIKey(t *testing.T) {
	c := New("", 10, 7, zap.NewNop())
	got, err := c.Headlines(context.Background(), "AAPL", "Apple")
	if err != nil {
		t.Fatalf("Headlines: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no headlines without an API key, got %v", got)
	}
}

func TestHeadlinesServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Headlines(context.Background(), "AAPL", "Apple")
	if !errors.Is(err, core.ErrProviderFailed) {
		t.Errorf("expected ErrProviderFailed, got %v", err)
	}
}

func TestHeadlinesMalformedBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := c.Headlines(context.Background(), "AAPL", "Apple")
	if !errors.Is(err, core.ErrProviderFailed) {
		t.Errorf("expected ErrProviderFailed, got %v", err)
	}
}
