package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lotscan/internal/config"
	"lotscan/internal/crawler"
	"lotscan/internal/database"
	"lotscan/internal/extractor"
	"lotscan/internal/fetcher"
	"lotscan/internal/log"
	"lotscan/internal/paginator"
	"lotscan/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [start-url]",
		Short: "Crawl the auction listing pages and write the results as JSON",
		Long: `Crawl walks the paginated auction listing, extracting one record per
listing container. Fields the markup does not provide are filled with the
sentinel value "unknown". Duplicate records are collapsed before output.

The crawl follows the pagination control page by page, pausing a random
one to three seconds between fetches, until the last page is reached or
the --max-pages cap is hit. Each page and its records are saved to a local
SQLite database for the history command unless --no-db is given.

Examples:
  # Crawl the default listing and write products.json
  lotscan crawl

  # Crawl a different listing endpoint
  lotscan crawl https://www.industrialauctionhub.com/lots

  # Cap the crawl at five pages and write a markdown summary too
  lotscan crawl -p 5 -m report.md

  # Use a custom configuration file
  lotscan crawl -c myconfig.yaml

Configuration file (.lotscan) example:
  startURL: https://www.industrialauctionhub.com/lots
  maxPages: 10
  delayMin: 500ms
  delayMax: 2s
  fields:
    location: 1
    usage: 3
    description: 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of listing pages to crawl (0 = no cap)")
	cmd.Flags().Duration("delay-min", config.DefaultDelayMin,
		"Minimum politeness delay between page fetches")
	cmd.Flags().Duration("delay-max", config.DefaultDelayMax,
		"Maximum politeness delay between page fetches")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .lotscan in current or home directory)")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputPath,
		"JSON output file path (overwritten on each run)")
	cmd.Flags().StringP("markdown", "m", "",
		"Also write a Markdown crawl summary to the specified path")

	// Opt-out flags
	cmd.Flags().Bool("no-db", false,
		"Do not record the crawl in the history database")
	cmd.Flags().Bool("no-robots", false,
		"Skip the robots.txt check before crawling")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from file and flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the optional configuration file and
// cobra command flags. Flags win over the file, which wins over defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	explicitPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = explicitPath

	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, silently run on defaults.
	configPath := config.FindConfigFile(explicitPath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
	}

	// Flags override the file only when the user set them.
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("delay-min") {
		delayMin, err := cmd.Flags().GetDuration("delay-min")
		if err != nil {
			return nil, err
		}
		cfg.DelayMin = delayMin
	}
	if cmd.Flags().Changed("delay-max") {
		delayMax, err := cmd.Flags().GetDuration("delay-max")
		if err != nil {
			return nil, err
		}
		cfg.DelayMax = delayMax
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputPath, err = cmd.Flags().GetString("output")
		if err != nil {
			return nil, err
		}
	}

	cfg.MarkdownPath, err = cmd.Flags().GetString("markdown")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	cfg.SkipRobots, err = cmd.Flags().GetBool("no-robots")
	if err != nil {
		return nil, err
	}

	// A positional start URL overrides both the start page and the
	// endpoint that next-page URLs are built from.
	if len(args) > 0 {
		cfg.StartURL = args[0]
		cfg.ListingURL = args[0]
	}

	return cfg, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"startURL", cfg.StartURL,
		"maxPages", cfg.MaxPages,
		"saveToDB", cfg.SaveToDB,
	)

	// Honor robots.txt before touching the listing
	if !cfg.SkipRobots {
		client := &http.Client{Timeout: cfg.Timeout}
		if !crawler.RobotsAllowed(ctx, client, cfg.StartURL, cfg.UserAgents[0]) {
			return fmt.Errorf("robots.txt disallows crawling %s (use --no-robots to override)", cfg.StartURL)
		}
	}

	// Open the crawl-history database if saving is enabled
	var db *database.CrawlDB
	var runID int64
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		runID, err = db.StartRun(ctx, cfg.StartURL)
		if err != nil {
			return fmt.Errorf("failed to start crawl run: %w", err)
		}
		logger.Info("database opened", "dir", cfg.DBDir, "runID", runID)
	}

	f := fetcher.New(cfg.Timeout,
		fetcher.WithUserAgents(cfg.UserAgents),
		fetcher.WithReferer(cfg.BaseURL),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
	)
	ext := extractor.New(cfg.ContainerSelector, cfg.ContentSelector,
		extractor.WithBaseURL(cfg.BaseURL),
		extractor.WithFieldIndexes(cfg.Fields.Location, cfg.Fields.Usage, cfg.Fields.Description),
		extractor.WithLogger(logger),
	)
	pag := paginator.New(cfg.PaginationSelector, cfg.ListingURL, cfg.PageParam)

	opts := []crawler.Option{
		crawler.WithDelayRange(cfg.DelayMin, cfg.DelayMax),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithLogger(logger),
	}
	if db != nil {
		opts = append(opts, crawler.WithRecorder(db.Recorder(runID)))
	}
	c := crawler.New(f, ext, pag, opts...)

	fmt.Printf("Crawling %s...\n", cfg.StartURL)
	startTime := time.Now()

	records, crawlErr := c.Crawl(ctx, cfg.StartURL)

	result := report.NewResult(cfg.StartURL, records)
	result.PagesCrawled = c.PagesFetched()
	result.StartedAt = startTime
	result.Duration = time.Since(startTime)
	if crawlErr != nil {
		result.Err = crawlErr.Error()
		logger.Error("crawl stopped early", "error", crawlErr, "records", len(records))
	}

	// Partial results are still written so a failed crawl loses nothing
	if err := writeOutputs(cfg, result); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if db != nil {
		if err := db.FinishRun(ctx, runID, result.PagesCrawled, result.TotalRecords, result.UniqueRecords()); err != nil {
			logger.Warn("failed to finish crawl run", "runID", runID, "error", err)
		}
	}

	fmt.Printf("Crawl finished in %s: %d unique record(s) from %d page(s) written to %s\n",
		result.Duration.Round(time.Millisecond),
		result.UniqueRecords(),
		result.PagesCrawled,
		cfg.OutputPath,
	)

	if crawlErr != nil {
		return fmt.Errorf("crawl stopped early (partial results written to %s): %w",
			cfg.OutputPath, crawlErr)
	}
	return nil
}

// writeOutputs writes the JSON output and the optional Markdown summary.
func writeOutputs(cfg *config.Config, result *report.Result) error {
	jsonFile, err := createOutputFile(cfg.OutputPath)
	if err != nil {
		return err
	}
	defer jsonFile.Close()

	writers := []report.Writer{report.NewJSONWriter(jsonFile)}

	if cfg.MarkdownPath != "" {
		mdFile, err := createOutputFile(cfg.MarkdownPath)
		if err != nil {
			return err
		}
		defer mdFile.Close()
		writers = append(writers, report.NewMarkdownWriter(mdFile))
	}

	_, err = report.NewMultiWriter(writers...).Write(result)
	return err
}

// createOutputFile creates (or truncates) an output file, creating parent
// directories as needed.
func createOutputFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return file, nil
}
