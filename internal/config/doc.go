// Package config provides configuration structures and utilities for lotscan.
// It defines the crawl target, the CSS selectors and positional field mapping
// used for extraction, politeness settings, and output preferences.
package config
