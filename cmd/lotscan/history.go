package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lotscan/internal/config"
	"lotscan/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past crawl runs from the local database",
		Long: `History lists past crawl runs recorded in the local SQLite database,
newest first, with the page and record counts of each run.

Examples:
  # Show the 20 most recent runs
  lotscan history

  # Show the 5 most recent runs
  lotscan history -n 5`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory holding the crawl-history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no crawl history found (run a crawl first): %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tPAGES\tRECORDS\tUNIQUE\tSTART URL")
	for _, run := range runs {
		started := "-"
		if !run.StartedAt.IsZero() {
			started = run.StartedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%s\n",
			run.ID, started, run.Pages, run.Records, run.UniqueRecords, run.StartURL)
	}
	return w.Flush()
}
