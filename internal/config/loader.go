package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".lotscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Duration wraps time.Duration so YAML values can be written in Go's
// duration syntax ("1s", "500ms"). yaml.v3 has no native time.Duration
// support.
type Duration time.Duration

// UnmarshalYAML parses a duration string such as "2s" or "750ms".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// File represents the structure of the .lotscan configuration file.
// Every field is optional; zero values leave the corresponding Config
// default untouched when applied.
type File struct {
	// BaseURL overrides the site origin used to resolve relative links.
	BaseURL string `yaml:"baseURL,omitempty"`

	// StartURL overrides the first listing page of the crawl.
	StartURL string `yaml:"startURL,omitempty"`

	// ListingURL overrides the fixed listing endpoint for next-page URLs.
	ListingURL string `yaml:"listingURL,omitempty"`

	// PageParam overrides the query parameter carrying the page reference.
	PageParam string `yaml:"pageParam,omitempty"`

	// Selectors override the CSS selectors tied to the site's markup.
	ContainerSelector  string `yaml:"containerSelector,omitempty"`
	ContentSelector    string `yaml:"contentSelector,omitempty"`
	PaginationSelector string `yaml:"paginationSelector,omitempty"`

	// Fields overrides the positional free-text mapping.
	// All three indices must be given together.
	Fields *FieldIndexMap `yaml:"fields,omitempty"`

	// UserAgents replaces the identification header pool.
	UserAgents []string `yaml:"userAgents,omitempty"`

	// Timeout overrides the per-request connection timeout.
	Timeout Duration `yaml:"timeout,omitempty"`

	// DelayMin and DelayMax override the politeness delay range.
	DelayMin Duration `yaml:"delayMin,omitempty"`
	DelayMax Duration `yaml:"delayMax,omitempty"`

	// MaxPages overrides the per-crawl page cap.
	MaxPages int `yaml:"maxPages,omitempty"`

	// MaxBodySize overrides the response body size limit in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// Output overrides the JSON output file path.
	Output string `yaml:"output,omitempty"`
}

// LoadConfigFile loads crawl configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this error appropriately based on whether the config file path was
// explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply overlays the file's non-zero values onto cfg.
// Defaults survive for anything the file leaves unset.
func (cf *File) Apply(cfg *Config) {
	if cf.BaseURL != "" {
		cfg.BaseURL = cf.BaseURL
	}
	if cf.StartURL != "" {
		cfg.StartURL = cf.StartURL
	}
	if cf.ListingURL != "" {
		cfg.ListingURL = cf.ListingURL
	}
	if cf.PageParam != "" {
		cfg.PageParam = cf.PageParam
	}
	if cf.ContainerSelector != "" {
		cfg.ContainerSelector = cf.ContainerSelector
	}
	if cf.ContentSelector != "" {
		cfg.ContentSelector = cf.ContentSelector
	}
	if cf.PaginationSelector != "" {
		cfg.PaginationSelector = cf.PaginationSelector
	}
	if cf.Fields != nil {
		cfg.Fields = *cf.Fields
	}
	if len(cf.UserAgents) > 0 {
		cfg.UserAgents = cf.UserAgents
	}
	if cf.Timeout != 0 {
		cfg.Timeout = time.Duration(cf.Timeout)
	}
	if cf.DelayMin != 0 {
		cfg.DelayMin = time.Duration(cf.DelayMin)
	}
	if cf.DelayMax != 0 {
		cfg.DelayMax = time.Duration(cf.DelayMax)
	}
	if cf.MaxPages != 0 {
		cfg.MaxPages = cf.MaxPages
	}
	if cf.MaxBodySize != 0 {
		cfg.MaxBodySize = cf.MaxBodySize
	}
	if cf.Output != "" {
		cfg.OutputPath = cf.Output
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .lotscan in the current directory
//  3. Look for .lotscan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
