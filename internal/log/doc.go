// Package log provides crawl-friendly logging built on top of the standard
// slog package.
//
// The TrimHandler truncates oversized attribute values before they reach the
// underlying handler. Extraction failures are logged together with the
// offending markup fragment, and without trimming a single malformed
// container could emit kilobytes of HTML into the log.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Warn("container skipped",
//	    "page", url,
//	    "html", fragment, // trimmed to a readable length
//	)
//
//	slog.SetDefault(logger)
package log
