// Package model defines the core data structures used throughout lotscan.
//
// The central type is Product, one auction listing extracted from a
// listing-page container, together with the deduplication helpers that
// operate on it.
//
// Design decision: We separate models into their own package to avoid
// circular dependencies. Multiple packages (extractor, crawler, report,
// database) need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for file output and
// database storage.
package model
