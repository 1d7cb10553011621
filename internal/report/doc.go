// Package report provides crawl result preparation and output.
//
// This package contains writers for different output formats:
//   - JSONWriter: The deduplicated product array for downstream tooling
//   - MarkdownWriter: A human-readable crawl summary for documentation
//
// Design decision: We separate result writing from the product data
// structures (which are in the model package) to follow the single
// responsibility principle. This allows adding new output formats
// without modifying the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
