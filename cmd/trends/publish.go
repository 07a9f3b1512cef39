package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aegisml/arxiv-trends-service/internal/publish"
)

func init() {
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Copy artifacts from the data directory into the serving directory",
	Long: `Copy every JSON artifact from the data directory into the serving
directory. Each document is written to a temp file and renamed into place,
so readers never observe a partially written artifact.`,
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	pub := publish.New(cfg.Artifacts.DataDir, cfg.Artifacts.ServingDir, logger)
	if _, err := pub.Publish(); err != nil {
		return fmt.Errorf("publish artifacts: %w", err)
	}
	return nil
}
