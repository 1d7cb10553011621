// Package main provides the entry point for the lotscan CLI.
//
// Lotscan crawls paginated industrial auction listings, extracts the lot
// details from each listing container, and writes the deduplicated results
// as JSON.
//
// Usage:
//
//	lotscan crawl
//	lotscan crawl https://www.industrialauctionhub.com/lots
//
// See --help for all available options.
package main

// main is the entry point for lotscan.
func main() {
	Execute()
}
