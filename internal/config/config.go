package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the markup of the auction site as it stands today;
// everything tied to the site's layout can be overridden via the .lotscan
// configuration file.
const (
	// DefaultBaseURL is the origin of the auction site. Relative listing
	// links found in containers are resolved against this URL.
	DefaultBaseURL = "https://www.industrialauctionhub.com"

	// DefaultStartURL is the first listing page of the crawl.
	DefaultStartURL = DefaultBaseURL + "/lots"

	// DefaultListingURL is the fixed listing endpoint used to build
	// next-page URLs. The pagination control's href value is attached to it
	// as the DefaultPageParam query parameter.
	DefaultListingURL = DefaultBaseURL + "/lots"

	// DefaultPageParam is the query parameter carrying the page reference.
	DefaultPageParam = "page"

	// DefaultContainerSelector matches one listing container per product.
	// The site renders each lot as a list item carrying this presentation
	// class.
	DefaultContainerSelector = "li.lot-tile"

	// DefaultContentSelector matches the nested block holding the
	// free-text paragraphs read positionally into location/usage/description.
	DefaultContentSelector = "div.lot-details"

	// DefaultPaginationSelector matches the pagination control. Its last
	// entry is, by the site's convention, the "next page" link.
	DefaultPaginationSelector = "ul.pagination"

	// DefaultTimeout is the connection timeout for each HTTP request.
	// 30 seconds is generous for a clearnet site while still failing fast
	// enough that a stalled crawl is noticed.
	DefaultTimeout = 30 * time.Second

	// DefaultDelayMin and DefaultDelayMax bound the randomized politeness
	// delay between page fetches. The delay is drawn uniformly from this
	// range. This is a scheduling policy, not a correctness requirement.
	DefaultDelayMin = 1 * time.Second
	DefaultDelayMax = 3 * time.Second

	// DefaultMaxPages caps the number of listing pages followed in one
	// crawl. This prevents runaway crawling if the site's pagination ever
	// loops. 0 means no cap.
	DefaultMaxPages = 0

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB is sufficient for any listing page while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultOutputPath is where the deduplicated JSON array is written,
	// overwriting any prior content.
	DefaultOutputPath = "products.json"

	// AppName is the application name used for XDG directory paths.
	AppName = "lotscan"
)

// DefaultUserAgents is the fixed pool of identification headers. One entry
// is chosen uniformly at random for every request, which is enough to evade
// the site's simple per-agent blocking heuristics.
//
// Design decision: We keep the pool at four common desktop browser strings
// rather than a large rotating list because the site only rate-limits on
// exact-match User-Agent values. Tests inject their own pool.
func DefaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	}
}

// FieldIndexMap maps the positional free-text fields to their 0-based index
// in the ordered sequence of paragraph fragments inside a container's
// content block.
//
// Design decision: The positional contract (1/3/4 today) is coupling to the
// site's current markup, not a law. Keeping it as data means a markup change
// only requires new numbers in the config file, not new structural logic.
type FieldIndexMap struct {
	// Location is the fragment index holding the item's location.
	Location int `yaml:"location"`

	// Usage is the fragment index holding wear or operating hours.
	Usage int `yaml:"usage"`

	// Description is the fragment index holding the seller's description.
	Description int `yaml:"description"`
}

// DefaultFieldIndexMap returns the positional mapping matching the site's
// current container layout.
func DefaultFieldIndexMap() FieldIndexMap {
	return FieldIndexMap{Location: 1, Usage: 3, Description: 4}
}

// Config holds all configuration options for lotscan.
// This struct is populated from defaults, the optional .lotscan file, and
// CLI flags, then passed through the application via dependency injection
// rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, ExtractConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// BaseURL is the site origin used to resolve relative listing links.
	BaseURL string

	// StartURL is the first listing page fetched by the crawl.
	StartURL string

	// ListingURL is the fixed listing endpoint that next-page URLs are
	// built from.
	ListingURL string

	// PageParam is the query parameter name carrying the page reference.
	PageParam string

	// ContainerSelector selects one node per listing container.
	ContainerSelector string

	// ContentSelector selects the free-text block inside a container.
	ContentSelector string

	// PaginationSelector selects the pagination control.
	PaginationSelector string

	// Fields is the positional mapping for the free-text fields.
	Fields FieldIndexMap

	// UserAgents is the pool of identification header values. One is
	// chosen at random per request.
	UserAgents []string

	// Timeout is the connection timeout for each HTTP request.
	Timeout time.Duration

	// DelayMin and DelayMax bound the randomized politeness delay between
	// page fetches. DelayMin may equal DelayMax to pin the delay.
	DelayMin time.Duration
	DelayMax time.Duration

	// MaxPages caps the number of listing pages per crawl. 0 means no cap.
	MaxPages int

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated.
	MaxBodySize int64

	// OutputPath is the JSON output file, overwritten on each run.
	OutputPath string

	// MarkdownPath, when set, is where the Markdown crawl summary is
	// written in addition to the JSON output.
	MarkdownPath string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// DBDir is the directory holding the SQLite crawl-history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether fetched pages and extracted records are
	// recorded in the crawl-history database.
	SaveToDB bool

	// SkipRobots disables the robots.txt check before the crawl starts.
	SkipRobots bool

	// ConfigFilePath is the path to the configuration file. If empty, the
	// tool searches for .lotscan in the current directory and then in the
	// user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to the current markup contract of the auction site.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because nearly every default is non-zero (URLs, selectors,
// delay range). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseURL:            DefaultBaseURL,
		StartURL:           DefaultStartURL,
		ListingURL:         DefaultListingURL,
		PageParam:          DefaultPageParam,
		ContainerSelector:  DefaultContainerSelector,
		ContentSelector:    DefaultContentSelector,
		PaginationSelector: DefaultPaginationSelector,
		Fields:             DefaultFieldIndexMap(),
		UserAgents:         DefaultUserAgents(),
		Timeout:            DefaultTimeout,
		DelayMin:           DefaultDelayMin,
		DelayMax:           DefaultDelayMax,
		MaxPages:           DefaultMaxPages,
		MaxBodySize:        DefaultMaxBodySize,
		OutputPath:         DefaultOutputPath,
		SaveToDB:           true,
		DBDir:              XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for lotscan.
// On Linux: ~/.local/share/lotscan
// On macOS: ~/Library/Application Support/lotscan
// On Windows: %LOCALAPPDATA%\lotscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for lotscan.
// On Linux: ~/.config/lotscan
// On macOS: ~/Library/Application Support/lotscan
// On Windows: %APPDATA%\lotscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}

	if len(c.UserAgents) == 0 {
		return ErrEmptyUserAgentPool
	}

	// A zero timeout would cause immediate request failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// The delay range must be well-formed; min == max pins the delay
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return ErrInvalidDelayRange
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.ContainerSelector == "" || c.ContentSelector == "" || c.PaginationSelector == "" {
		return ErrMissingSelector
	}

	if c.Fields.Location < 0 || c.Fields.Usage < 0 || c.Fields.Description < 0 {
		return ErrInvalidFieldIndex
	}

	if c.OutputPath == "" {
		return ErrNoOutputPath
	}

	return nil
}
