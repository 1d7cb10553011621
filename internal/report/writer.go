package report

import (
	"io"
	"time"

	"lotscan/internal/model"
)

// Result is the outcome of a crawl prepared for output. It carries the
// deduplicated product list together with the counters the writers need.
type Result struct {
	// StartURL is the listing URL the crawl started from.
	StartURL string

	// PagesCrawled is the number of listing pages fetched.
	PagesCrawled int

	// TotalRecords is the number of records extracted before deduplication.
	TotalRecords int

	// Products is the deduplicated product list in document order.
	Products []model.Product

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// Duration is the total crawl time.
	Duration time.Duration

	// Err holds the error message when the crawl stopped early.
	// Empty for a complete crawl.
	Err string
}

// NewResult builds a Result from raw extracted records. Duplicates are
// collapsed here so every writer sees the same deduplicated list.
func NewResult(startURL string, records []model.Product) *Result {
	return &Result{
		StartURL:     startURL,
		TotalRecords: len(records),
		Products:     model.Dedupe(records),
	}
}

// UniqueRecords returns the number of records after deduplication.
func (r *Result) UniqueRecords() int {
	return len(r.Products)
}

// Duplicates returns the number of records removed by deduplication.
func (r *Result) Duplicates() int {
	return r.TotalRecords - len(r.Products)
}

// Complete reports whether the crawl finished without error.
func (r *Result) Complete() bool {
	return r.Err == ""
}

// Writer defines the interface for crawl result output.
// Implementations write results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *Result) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both a JSON file and a markdown report.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write results, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(result *Result) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for result writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
