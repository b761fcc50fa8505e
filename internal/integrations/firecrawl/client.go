/**
 * @description
 * Client for the Firecrawl scrape API.
 * Fetches a product page and maps the response onto the raw-content variants
 * the extraction engine understands. Failures are fatal for that URL's
 * attempt; retry policy belongs to the caller.
 *
 * @dependencies
 * - github.com/go-resty/resty/v2: HTTP client
 * - backend/internal/config
 * - backend/internal/extract
 */

package firecrawl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pricetrack/backend/internal/config"
	"github.com/pricetrack/backend/internal/extract"
)

const requestTimeout = 60 * time.Second

// Fetcher is the page-fetch capability the tracker pipeline depends on.
type Fetcher interface {
	Scrape(ctx context.Context, url string) (extract.RawContent, error)
}

// Client talks to the Firecrawl scrape endpoint.
type Client struct {
	http *resty.Client
}

// ScrapeRequest is the scrape endpoint request body.
type ScrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats,omitempty"`
}

// ScrapeResponse is the scrape endpoint response envelope.
type ScrapeResponse struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Data    ScrapeData `json:"data"`
}

// ScrapeData holds the renderings the API produced for the page.
type ScrapeData struct {
	Extract  map[string]interface{} `json:"extract,omitempty"`
	JSON     map[string]interface{} `json:"json,omitempty"`
	HTML     string                 `json:"html,omitempty"`
	Markdown string                 `json:"markdown,omitempty"`
}

// NewClient creates a Firecrawl client from config.
func NewClient(cfg *config.Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.Firecrawl.BaseURL).
		SetAuthToken(cfg.Firecrawl.APIKey).
		SetTimeout(requestTimeout)
	return &Client{http: httpClient}
}

// Scrape fetches url and returns the richest raw-content shape the API
// produced: structured extraction first, then rendered HTML, then markdown.
func (c *Client) Scrape(ctx context.Context, url string) (extract.RawContent, error) {
	var response ScrapeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(ScrapeRequest{
			URL:     url,
			Formats: []string{"extract", "html", "markdown"},
		}).
		SetResult(&response).
		Post("/v1/scrape")
	if err != nil {
		return nil, fmt.Errorf("firecrawl: scrape %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("firecrawl: scrape %s: status %d: %s", url, resp.StatusCode(), resp.String())
	}
	if !response.Success {
		reason := response.Error
		if reason == "" {
			reason = "scrape was not successful"
		}
		return nil, fmt.Errorf("firecrawl: scrape %s: %s", url, reason)
	}

	switch {
	case len(response.Data.Extract) > 0:
		return extract.StructuredPayload{Fields: response.Data.Extract}, nil
	case len(response.Data.JSON) > 0:
		return extract.StructuredPayload{Fields: response.Data.JSON}, nil
	case response.Data.HTML != "":
		return extract.RenderedHTML{HTML: response.Data.HTML}, nil
	default:
		return extract.MarkdownText{Text: response.Data.Markdown}, nil
	}
}
