// Package paginator resolves the next listing page from a parsed document.
//
// The site renders its pagination as a list whose last entry is, by
// convention, the "next page" control. Any missing piece — no control, no
// last entry, no link, no reference — means the crawl is done; a malformed
// control is intentionally indistinguishable from the genuine last page.
package paginator

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// Paginator derives next-page URLs from listing pages.
type Paginator struct {
	// selector matches the pagination control.
	selector string

	// listingURL is the fixed listing endpoint next-page URLs are built on.
	listingURL string

	// pageParam is the query parameter carrying the page reference.
	pageParam string
}

// New creates a Paginator.
// Next-page URLs are composed from listingURL with the pagination link's
// href value attached as the pageParam query parameter.
func New(selector, listingURL, pageParam string) *Paginator {
	return &Paginator{
		selector:   selector,
		listingURL: listingURL,
		pageParam:  pageParam,
	}
}

// Next returns the URL of the next listing page, or ok=false when the
// document carries no further page. It never returns an error: a pagination
// control the resolver cannot read stops the crawl the same way the last
// page does.
func (p *Paginator) Next(doc *goquery.Document) (string, bool) {
	control := doc.Find(p.selector).First()
	if control.Length() == 0 {
		return "", false
	}

	// The last entry is the "next" control on every page but the final
	// one, where the site omits the link.
	last := control.Children().Last()
	if last.Length() == 0 {
		return "", false
	}

	ref, exists := last.Find("a[href]").First().Attr("href")
	if !exists || ref == "" {
		return "", false
	}

	return p.buildURL(ref), true
}

// buildURL attaches ref to the listing endpoint as the page parameter.
func (p *Paginator) buildURL(ref string) string {
	u, err := url.Parse(p.listingURL)
	if err != nil {
		// The listing URL is configuration; if it does not parse, fall
		// back to naive composition rather than dropping the reference.
		return p.listingURL + "?" + p.pageParam + "=" + ref
	}

	q := u.Query()
	q.Set(p.pageParam, ref)
	u.RawQuery = q.Encode()
	return u.String()
}
