// Package main provides the entry point for the lotscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for lotscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lotscan",
		Short: "Crawler for paginated industrial auction listings",
		Long: `Lotscan crawls paginated auction listing pages, extracts the lot details
from each listing container, and writes the deduplicated results as JSON.

Fields that are missing from a listing are filled with the sentinel value
"unknown" so every record carries the same shape. Crawl history is kept in
a local SQLite database for the history command.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
