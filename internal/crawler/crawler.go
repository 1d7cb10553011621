package crawler

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/PuerkitoBio/goquery"

	"lotscan/internal/model"
)

// Fetcher retrieves one listing page as a parsed document.
// The returned int is the HTTP status code of the response.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, int, error)
}

// Extractor resolves product records from a parsed listing page.
type Extractor interface {
	Extract(doc *goquery.Document) []model.Product
}

// Paginator derives the next listing page URL from a parsed document.
// ok is false when the crawl has reached the last page.
type Paginator interface {
	Next(doc *goquery.Document) (string, bool)
}

// Recorder receives one PageVisit per fetched page. Implementations persist
// crawl history; a Recorder failure is logged but never stops the crawl.
type Recorder interface {
	RecordPage(ctx context.Context, visit PageVisit) error
}

// PageVisit describes one fetched listing page.
type PageVisit struct {
	// URL is the page that was fetched.
	URL string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Records holds the products extracted from this page.
	Records []model.Product

	// FetchedAt is when the fetch completed.
	FetchedAt time.Time
}

// Crawler walks the listing pages of the auction site, strictly
// sequentially: fetch the current page once, extract its records, resolve
// the next page from the same document, pause, repeat. The crawl is a
// single-state loop — at a page or done — and the only transition out of a
// page is the one the paginator yields.
type Crawler struct {
	fetcher   Fetcher
	extractor Extractor
	paginator Paginator

	// recorder is optional crawl-history storage. May be nil.
	recorder Recorder

	// delayMin and delayMax bound the randomized politeness delay inserted
	// between page fetches. The delay is policy, not correctness: tests
	// pin both to zero.
	delayMin time.Duration
	delayMax time.Duration

	// maxPages caps the number of pages followed. 0 means no cap.
	maxPages int

	// int64n picks a pseudo-random int64 in [0,n). Injectable for tests.
	int64n func(n int64) int64

	// logger records per-page progress. Never nil.
	logger *slog.Logger

	// pagesFetched counts pages fetched during the current crawl.
	pagesFetched int
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithDelayRange sets the bounds of the randomized politeness delay.
// Equal min and max pin the delay; zero disables it.
func WithDelayRange(min, max time.Duration) Option {
	return func(c *Crawler) {
		c.delayMin = min
		c.delayMax = max
	}
}

// WithMaxPages caps the number of listing pages followed in one crawl.
func WithMaxPages(n int) Option {
	return func(c *Crawler) {
		c.maxPages = n
	}
}

// WithRecorder attaches crawl-history storage.
func WithRecorder(r Recorder) Option {
	return func(c *Crawler) {
		c.recorder = r
	}
}

// WithLogger sets the progress logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInt64N replaces the random source used for the politeness delay.
func WithInt64N(int64n func(n int64) int64) Option {
	return func(c *Crawler) {
		if int64n != nil {
			c.int64n = int64n
		}
	}
}

// New creates a Crawler over the given pipeline components.
func New(f Fetcher, e Extractor, p Paginator, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:   f,
		extractor: e,
		paginator: p,
		delayMin:  1 * time.Second,
		delayMax:  3 * time.Second,
		int64n:    rand.Int63n,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Crawl walks the listing pages starting at startURL and returns every
// extracted record in encounter order, duplicates included.
//
// Failure semantics: the first fetch error is fatal to the whole crawl. The
// records accumulated before the failure are returned alongside the error;
// whether to keep them is the caller's decision.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]model.Product, error) {
	records := make([]model.Product, 0)
	visited := make(map[string]bool)
	c.pagesFetched = 0

	current := startURL
	for current != "" {
		if c.maxPages > 0 && c.pagesFetched >= c.maxPages {
			c.logger.Warn("page cap reached, stopping", "maxPages", c.maxPages)
			break
		}
		if visited[current] {
			// The site's pagination looped back on itself. Following it
			// again would never terminate.
			c.logger.Warn("pagination loop detected, stopping", "url", current)
			break
		}
		visited[current] = true

		doc, status, err := c.fetcher.Fetch(ctx, current)
		if err != nil {
			return records, err
		}
		c.pagesFetched++

		pageRecords := c.extractor.Extract(doc)
		records = append(records, pageRecords...)

		c.logger.Info("page fetched",
			"url", current,
			"status", status,
			"records", len(pageRecords),
			"total", len(records),
		)

		if c.recorder != nil {
			visit := PageVisit{
				URL:        current,
				StatusCode: status,
				Records:    pageRecords,
				FetchedAt:  time.Now().UTC(),
			}
			if err := c.recorder.RecordPage(ctx, visit); err != nil {
				c.logger.Warn("failed to record page visit", "url", current, "error", err)
			}
		}

		next, ok := c.paginator.Next(doc)
		if !ok {
			break
		}
		current = next

		if err := c.pause(ctx); err != nil {
			return records, err
		}
	}

	return records, nil
}

// PagesFetched reports how many pages the last Crawl call fetched.
func (c *Crawler) PagesFetched() int {
	return c.pagesFetched
}

// pause sleeps for a duration drawn uniformly from the configured delay
// range, or until the context is cancelled.
func (c *Crawler) pause(ctx context.Context) error {
	delay := c.delayMin
	if span := c.delayMax - c.delayMin; span > 0 {
		delay += time.Duration(c.int64n(int64(span)))
	}
	if delay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
