package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch the recent window and refresh the dashboard artifacts",
	Long: `Fetch submissions from the configured categories over the trailing
window (days_to_fetch, default 7 days), classify them against the safety
vocabulary, and merge the results into the daily and weekly artifacts.

Buckets the run computed replace their stored counterparts; buckets outside
the window are left untouched, so repeated runs converge instead of losing
history.`,
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	p := newPipeline(cfg, logger)
	summary, err := p.RunIncremental(cmd.Context())
	if err != nil {
		return fmt.Errorf("incremental run: %w", err)
	}

	logSummary(logger, summary)
	return nil
}
