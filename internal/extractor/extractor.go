package extractor

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"lotscan/internal/model"
)

// Extractor turns a parsed listing page into product records.
// It selects every container node matching the configured selector, in
// document order, and resolves a fixed set of fields per container,
// tolerating missing sub-elements via the sentinel value.
type Extractor struct {
	// containerSelector matches one node per listing container.
	containerSelector string

	// contentSelector matches the nested free-text block inside a container.
	contentSelector string

	// baseURL resolves relative listing links. May be nil, in which case
	// hrefs are used as found.
	baseURL *url.URL

	// locationIndex, usageIndex and descriptionIndex are the 0-based
	// positions of the free-text fields in the ordered paragraph sequence
	// of a container's content block.
	locationIndex    int
	usageIndex       int
	descriptionIndex int

	// logger records skipped containers. Never nil.
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBaseURL sets the site origin used to resolve relative links.
// An unparseable URL is ignored and hrefs are kept as found.
func WithBaseURL(base string) Option {
	return func(e *Extractor) {
		if u, err := url.Parse(base); err == nil {
			e.baseURL = u
		}
	}
}

// WithFieldIndexes overrides the positional mapping of the free-text
// fields. The defaults (1, 3, 4) match the site's current container layout.
func WithFieldIndexes(location, usage, description int) Option {
	return func(e *Extractor) {
		e.locationIndex = location
		e.usageIndex = usage
		e.descriptionIndex = description
	}
}

// WithLogger sets the logger used for skipped-container warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Extractor for the given container and content selectors.
//
// Design decision: The positional field mapping lives behind options rather
// than hardcoded indices in the extraction loop, so a markup change on the
// site means new numbers at the construction site, not new structural logic.
func New(containerSelector, contentSelector string, opts ...Option) *Extractor {
	e := &Extractor{
		containerSelector: containerSelector,
		contentSelector:   contentSelector,
		locationIndex:     1,
		usageIndex:        3,
		descriptionIndex:  4,
		logger:            slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract returns one record per listing container, in document order.
// Every record has all six fields populated: extracted text where the
// markup yields it, the sentinel everywhere else. A failure inside one
// container never aborts extraction of the remaining containers; the broken
// container is logged and skipped.
func (e *Extractor) Extract(doc *goquery.Document) []model.Product {
	records := make([]model.Product, 0)

	doc.Find(e.containerSelector).Each(func(i int, container *goquery.Selection) {
		record, ok := e.extractContainer(i, container)
		if !ok {
			return
		}
		records = append(records, record)
	})

	return records
}

// extractContainer resolves the fields of a single container.
// ok is false when the container paniced mid-extraction and was skipped.
func (e *Extractor) extractContainer(index int, container *goquery.Selection) (record model.Product, ok bool) {
	// A malformed container must not take the rest of the page down with
	// it. goquery itself does not panic, but attribute post-processing on
	// unexpected markup shapes can.
	defer func() {
		if r := recover(); r != nil {
			html, _ := container.Html()
			e.logger.Warn("container skipped",
				"index", index,
				"reason", r,
				"html", html,
			)
			ok = false
		}
	}()

	record = model.NewProduct()

	// Detail link: the first anchor with an href, resolved to absolute.
	if href, exists := container.Find("a[href]").First().Attr("href"); exists {
		record.Link = e.absoluteURL(href)
	}

	// Image: src becomes the image URL, alt the best-effort title.
	img := container.Find("img").First()
	if src, exists := img.Attr("src"); exists {
		record.ImageURL = e.absoluteURL(src)
	}
	if alt, exists := img.Attr("alt"); exists && strings.TrimSpace(alt) != "" {
		record.Title = strings.TrimSpace(alt)
	}

	// Free-text fields come positionally from the content block's
	// paragraphs. Without the block, all three stay at the sentinel
	// rather than carrying partial data.
	content := container.Find(e.contentSelector).First()
	if content.Length() > 0 {
		fragments := paragraphTexts(content)
		record.Location = fragmentAt(fragments, e.locationIndex)
		record.Usage = fragmentAt(fragments, e.usageIndex)
		record.Description = fragmentAt(fragments, e.descriptionIndex)
	}

	return record, true
}

// paragraphTexts reads every paragraph of the content block, trimmed, in
// document order. Empty paragraphs keep their position: the mapping is
// positional, so dropping them would shift every later field.
func paragraphTexts(content *goquery.Selection) []string {
	fragments := make([]string, 0)
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		fragments = append(fragments, strings.TrimSpace(p.Text()))
	})
	return fragments
}

// fragmentAt returns the fragment at the given index, or the sentinel when
// the position does not exist.
func fragmentAt(fragments []string, index int) string {
	if index < 0 || index >= len(fragments) {
		return model.Sentinel
	}
	if fragments[index] == "" {
		return model.Sentinel
	}
	return fragments[index]
}

// absoluteURL resolves href against the configured base URL.
func (e *Extractor) absoluteURL(href string) string {
	if e.baseURL == nil {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return e.baseURL.ResolveReference(u).String()
}
