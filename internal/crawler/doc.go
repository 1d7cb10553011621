// Package crawler drives the listing crawl.
//
// The Crawler walks the site's listing pages strictly sequentially. Each
// iteration fetches the current page exactly once and hands the same parsed
// document to the extractor and the paginator, so no page is ever fetched
// twice for the two purposes. A randomized politeness delay separates page
// fetches. The first fetch failure halts the whole crawl; per-container
// extraction problems stay inside the extractor and never do.
package crawler
