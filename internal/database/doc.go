// Package database provides SQLite-based persistence for crawl history.
// It records crawl runs, the listing pages fetched during each run, and
// every distinct product observed across runs, so repeat crawls can be
// compared and audited with the history command.
package database
