// Package cmd defines the CLI commands for the jobscraper executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobscraper",
		Short: "Multi-source job board scraper",
		Long: `jobscraper crawls configured job boards, extracts and normalizes
postings, folds duplicates across sources, and writes the unique set to
storage. Sources are described entirely by configuration; adding a board
means adding a descriptor, not code.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
