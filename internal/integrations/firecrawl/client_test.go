package firecrawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pricetrack/backend/internal/config"
	"github.com/pricetrack/backend/internal/extract"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.Firecrawl.BaseURL = srv.URL
	cfg.Firecrawl.APIKey = "fc-test"
	return NewClient(cfg)
}

func TestScrapePrefersStructuredExtraction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/scrape" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"extract": {"name": "Widget", "price": 19.99, "currency": "USD"},
				"html": "<html></html>",
				"markdown": "# Widget"
			}
		}`))
	})

	raw, err := client.Scrape(context.Background(), "https://shop.example.com/widget")
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	payload, ok := raw.(extract.StructuredPayload)
	if !ok {
		t.Fatalf("expected StructuredPayload, got %T", raw)
	}
	if payload.Fields["name"] != "Widget" {
		t.Fatalf("unexpected payload: %+v", payload.Fields)
	}
}

func TestScrapeFallsBackToHTML(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"html": "<html><body></body></html>"}}`))
	})

	raw, err := client.Scrape(context.Background(), "https://shop.example.com/widget")
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	if _, ok := raw.(extract.RenderedHTML); !ok {
		t.Fatalf("expected RenderedHTML, got %T", raw)
	}
}

func TestScrapeFallsBackToMarkdown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"markdown": "# Widget"}}`))
	})

	raw, err := client.Scrape(context.Background(), "https://shop.example.com/widget")
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	md, ok := raw.(extract.MarkdownText)
	if !ok {
		t.Fatalf("expected MarkdownText, got %T", raw)
	}
	if md.Text != "# Widget" {
		t.Fatalf("unexpected markdown: %q", md.Text)
	}
}

func TestScrapeRejectsUnsuccessfulResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "data": {"markdown": "# Widget"}}`))
	})

	if _, err := client.Scrape(context.Background(), "https://shop.example.com/widget"); err == nil {
		t.Fatal("expected error for success=false without an error message")
	}
}

func TestScrapeSurfacesAPIErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"success": false, "error": "insufficient credits"}`))
	})

	if _, err := client.Scrape(context.Background(), "https://shop.example.com/widget"); err == nil {
		t.Fatal("expected error for failed scrape")
	}
}
