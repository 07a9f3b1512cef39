package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backfillMonths int

func init() {
	rootCmd.AddCommand(backfillCmd)
	backfillCmd.Flags().IntVar(&backfillMonths, "months", 0, "Number of trailing months to backfill (default: config months_to_fetch)")
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Rebuild the monthly history artifacts month by month",
	Long: `Fetch the configured categories one calendar month at a time, oldest
month last, and merge the results into the monthly artifacts: per-category
counts, per-month keyword clouds, and the safety trend series.

A month that fails to fetch is skipped and logged; the remaining months
still run. The pause between months keeps the backfill polite to the API.`,
	RunE: runBackfill,
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if backfillMonths > 0 {
		cfg.Pipeline.MonthsToFetch = backfillMonths
	}
	logger := newLogger(cfg)

	p := newPipeline(cfg, logger)
	summary, err := p.RunHistorical(cmd.Context())
	if err != nil {
		return fmt.Errorf("historical run: %w", err)
	}

	logSummary(logger, summary)
	return nil
}
