/**
 * @description
 * Extraction engine: turns raw page content into a canonical product
 * observation. Best-effort by contract: a page the engine cannot make sense
 * of yields a record with sentinel defaults, never an error, so a batch run
 * across many URLs is never aborted by one unparseable page.
 *
 * @dependencies
 * - github.com/PuerkitoBio/goquery: DOM lookups on rendered HTML
 * - standard "regexp": price/image token matching on flat text
 */

package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultCurrency is assumed whenever the page does not say otherwise.
	DefaultCurrency = "USD"
	// DefaultName marks a record whose title could not be determined.
	DefaultName = "Unknown Product"
)

// Confidence states how much of the observation was actually found on the
// page versus filled with sentinel defaults.
type Confidence string

const (
	// ConfidenceFull: both name and price were extracted.
	ConfidenceFull Confidence = "full"
	// ConfidencePartial: one of name/price was extracted, the other defaulted.
	ConfidencePartial Confidence = "partial"
	// ConfidenceNone: nothing was extracted; the record is all defaults.
	ConfidenceNone Confidence = "none"
)

// Observation is the canonical record produced by extraction, independent of
// the input shape. Price 0 with Confidence below full means "no price found",
// not a free product.
type Observation struct {
	URL          string     `json:"url"`
	Name         string     `json:"name"`
	Price        float64    `json:"price"`
	Currency     string     `json:"currency"`
	MainImageURL string     `json:"main_image_url"`
	Timestamp    time.Time  `json:"timestamp"`
	Confidence   Confidence `json:"confidence"`
}

// Engine extracts observations from raw page content.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an Engine stamping observations with the current UTC time.
func NewEngine() *Engine {
	return &Engine{now: func() time.Time { return time.Now().UTC() }}
}

// NewEngineWithClock creates an Engine with an injected clock, for tests.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Extract produces an observation for url from whatever shape the fetcher
// returned. It never fails: missing fields degrade to defaults.
func (e *Engine) Extract(url string, raw RawContent) Observation {
	obs := Observation{
		URL:       url,
		Name:      DefaultName,
		Currency:  DefaultCurrency,
		Timestamp: e.now().UTC().Truncate(time.Microsecond),
	}

	var nameFound, priceFound bool
	switch content := raw.(type) {
	case StructuredPayload:
		nameFound, priceFound = extractStructured(content, &obs)
	case RenderedHTML:
		nameFound, priceFound = extractDOM(content, &obs)
	case MarkdownText:
		nameFound, priceFound = extractMarkdown(content, &obs)
	}

	switch {
	case nameFound && priceFound:
		obs.Confidence = ConfidenceFull
	case nameFound || priceFound:
		obs.Confidence = ConfidencePartial
	default:
		obs.Confidence = ConfidenceNone
	}
	return obs
}

// extractStructured copies fields the fetch layer already parsed.
func extractStructured(content StructuredPayload, obs *Observation) (nameFound, priceFound bool) {
	if name := stringField(content.Fields, "name"); name != "" {
		obs.Name = name
		nameFound = true
	}
	if price, ok := numberField(content.Fields, "price"); ok && price > 0 {
		obs.Price = price
		priceFound = true
	}
	if currency := stringField(content.Fields, "currency"); currency != "" {
		obs.Currency = currency
	}
	obs.MainImageURL = stringField(content.Fields, "main_image_url")
	return nameFound, priceFound
}

// Known product page element ids, with og: metadata as fallback. The retailer
// ids cover the storefronts this started out tracking.
const (
	titleSelector = "#productTitle, [itemprop=name]"
	priceSelector = "#priceblock_ourprice, #priceblock_dealprice, .a-price .a-offscreen, [itemprop=price]"
	imageSelector = "#landingImage, #imgBlkFront"
)

// extractDOM looks up title, price and image elements in rendered HTML.
func extractDOM(content RenderedHTML, obs *Observation) (nameFound, priceFound bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.HTML))
	if err != nil {
		return false, false
	}

	name := cleanText(doc.Find(titleSelector).First().Text())
	if name == "" {
		name, _ = doc.Find("meta[property='og:title']").Attr("content")
		name = cleanText(name)
	}
	if name == "" {
		name = cleanText(doc.Find("title").First().Text())
	}
	if name != "" {
		obs.Name = name
		nameFound = true
	}

	priceText := cleanText(doc.Find(priceSelector).First().Text())
	if priceText == "" {
		priceText, _ = doc.Find("meta[property='product:price:amount']").Attr("content")
	}
	if price, ok := parsePriceText(priceText); ok {
		obs.Price = price
		obs.Currency = currencyFromText(priceText)
		priceFound = true
	}

	if src, ok := doc.Find(imageSelector).First().Attr("src"); ok && src != "" {
		obs.MainImageURL = src
	} else if img, ok := doc.Find("meta[property='og:image']").Attr("content"); ok {
		obs.MainImageURL = img
	}
	return nameFound, priceFound
}

var (
	// A leading $ followed by digits, optional thousands separators and an
	// optional decimal part. Permissive on purpose: rendered markdown puts
	// prices in arbitrary surrounding text.
	markdownPricePattern = regexp.MustCompile(`\$\s?([0-9][0-9,]*(?:\.[0-9]+)?)`)
	// First markdown image reference: ![alt](url)
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)`)
)

// extractMarkdown derives the observation from a flat text rendering: title
// from the first non-empty line, price from the first $-prefixed token, image
// from the first markdown image link.
func extractMarkdown(content MarkdownText, obs *Observation) (nameFound, priceFound bool) {
	for _, line := range strings.Split(content.Text, "\n") {
		if title := cleanText(strings.Trim(line, "#*_ \t")); title != "" {
			obs.Name = title
			nameFound = true
			break
		}
	}

	if m := markdownPricePattern.FindStringSubmatch(content.Text); m != nil {
		if price, ok := parsePriceText(m[1]); ok {
			obs.Price = price
			priceFound = true
		}
	}

	if m := markdownImagePattern.FindStringSubmatch(content.Text); m != nil {
		obs.MainImageURL = m[1]
	}
	return nameFound, priceFound
}

func stringField(fields map[string]interface{}, key string) string {
	if fields == nil {
		return ""
	}
	if value, ok := fields[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func numberField(fields map[string]interface{}, key string) (float64, bool) {
	if fields == nil {
		return 0, false
	}
	switch value := fields[key].(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case string:
		return parsePriceText(value)
	}
	return 0, false
}

// parsePriceText strips currency symbols and thousands separators and parses
// the remainder. Returns false for anything that is not a non-negative number.
func parsePriceText(text string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', '¥', ',', ' ', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(text))
	if cleaned == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}

func currencyFromText(text string) string {
	switch {
	case strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(text, "£"):
		return "GBP"
	case strings.Contains(text, "¥"):
		return "JPY"
	default:
		return DefaultCurrency
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func cleanText(s string) string {
	return innerWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}
