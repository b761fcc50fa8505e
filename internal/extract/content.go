/**
 * @description
 * Raw content variants returned by the page fetcher.
 * A scrape can come back in three shapes depending on how the fetch layer
 * rendered the page: an already-parsed product payload, rendered HTML, or a
 * markdown-ish text blob. Each shape gets its own extraction strategy.
 *
 * @notes
 * - The variant set is closed on purpose; the engine selects a strategy by
 *   type switch, not by probing ad hoc dictionary keys.
 */

package extract

// RawContent is the tagged variant of possible fetch outputs.
type RawContent interface {
	rawContent()
}

// StructuredPayload carries product fields the fetch layer already extracted
// (e.g. a scrape API's structured extraction result).
type StructuredPayload struct {
	Fields map[string]interface{}
}

// RenderedHTML carries the rendered document of the product page.
type RenderedHTML struct {
	HTML string
}

// MarkdownText carries the page as a flat markdown/text rendering.
type MarkdownText struct {
	Text string
}

func (StructuredPayload) rawContent() {}
func (RenderedHTML) rawContent()      {}
func (MarkdownText) rawContent()      {}
