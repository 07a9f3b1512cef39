// Package main provides the trends CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configFile string
	logLevel   string
	logFormat  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trends",
	Short: "AI safety trends pipeline for arXiv",
	Long: `trends maintains the JSON artifacts behind the AI safety trends dashboard.

It fetches submissions from the arXiv Atom API, classifies them against a
safety vocabulary, aggregates submission counts per category over daily,
weekly, and monthly buckets, and extracts keyword rankings. Artifacts are
written atomically to the data directory; publish copies them into the
serving directory and serve exposes them over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: search ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override configured log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Override configured log format (json, console)")
	rootCmd.Version = Version
}
