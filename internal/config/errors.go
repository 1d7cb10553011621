package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoStartURL is returned when no starting listing page is configured.
	ErrNoStartURL = errors.New("no start URL: set startURL in the config file or pass one as an argument")

	// ErrEmptyUserAgentPool is returned when the User-Agent pool is empty.
	// The fetcher draws one value per request, so at least one is required.
	ErrEmptyUserAgentPool = errors.New("empty user agent pool: at least one value is required")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelayRange is returned when the politeness delay range is
	// negative or inverted. Use equal min and max to pin the delay.
	ErrInvalidDelayRange = errors.New("invalid delay range: min must be non-negative and max must not be below min")

	// ErrInvalidMaxPages is returned when the page cap is negative.
	// Use 0 for an uncapped crawl.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrMissingSelector is returned when any of the container, content, or
	// pagination CSS selectors is empty. Extraction cannot work without them.
	ErrMissingSelector = errors.New("missing selector: container, content, and pagination selectors are all required")

	// ErrInvalidFieldIndex is returned when the positional field mapping
	// contains a negative index.
	ErrInvalidFieldIndex = errors.New("invalid field index: indices must be non-negative")

	// ErrNoOutputPath is returned when the JSON output path is empty.
	ErrNoOutputPath = errors.New("no output path: set output in the config file or pass --output")
)
