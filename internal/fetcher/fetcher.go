package fetcher

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// RequestError describes a failed page fetch: either the transport layer
// gave up (DNS, timeout, connection reset) or the server answered with a
// non-2xx status. It is never swallowed; the crawl driver propagates it and
// the whole crawl halts.
type RequestError struct {
	// URL is the page that failed.
	URL string

	// StatusCode is the HTTP status when the server answered, 0 when the
	// request never completed.
	StatusCode int

	// Err is the underlying transport error, nil for status failures.
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap returns the underlying transport error, if any.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Fetcher issues HTTP GETs against listing pages and parses the response
// into a goquery document. Every request carries one User-Agent chosen
// uniformly at random from a fixed pool, which is enough to sidestep the
// site's simple per-agent blocking heuristics.
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// userAgents is the identification header pool. Never empty.
	userAgents []string

	// referer is sent with every request. Empty disables the header.
	referer string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// intn picks a pseudo-random int in [0,n). Injectable so tests can pin
	// the User-Agent choice.
	intn func(n int) int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client. Useful for tests and for callers
// that need custom transport settings.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithUserAgents replaces the identification header pool.
// An empty slice is ignored.
func WithUserAgents(pool []string) Option {
	return func(f *Fetcher) {
		if len(pool) > 0 {
			f.userAgents = pool
		}
	}
}

// WithReferer sets the Referer header sent with every request.
func WithReferer(referer string) Option {
	return func(f *Fetcher) {
		f.referer = referer
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithIntN replaces the random source used for User-Agent selection.
// Tests use this to make the choice deterministic.
func WithIntN(intn func(n int) int) Option {
	return func(f *Fetcher) {
		if intn != nil {
			f.intn = intn
		}
	}
}

// New creates a Fetcher with the given timeout.
//
// Design decision: The randomized User-Agent pool and the random source are
// injectable rather than package-level state so that behavior is explicit
// configuration, visible at the construction site, and pinnable in tests.
func New(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: timeout},
		userAgents:  []string{"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0"},
		maxBodySize: 5 * 1024 * 1024, // 5MB
		intn:        rand.Intn,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch issues a GET against pageURL and parses the body into a document.
// It returns the HTTP status code alongside the document. Any transport
// failure or non-2xx status yields a *RequestError.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, &RequestError{URL: pageURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgents[f.intn(len(f.userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, &RequestError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused, then fail loudly.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodySize))
		return nil, resp.StatusCode, &RequestError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	// Decode the body with the encoding announced by the server before
	// handing it to goquery. Listing pages are not always UTF-8.
	body := io.LimitReader(resp.Body, f.maxBodySize)
	reader, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, resp.StatusCode, &RequestError{URL: pageURL, Err: fmt.Errorf("decode body: %w", err)}
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, resp.StatusCode, &RequestError{URL: pageURL, Err: fmt.Errorf("parse document: %w", err)}
	}

	return doc, resp.StatusCode, nil
}
