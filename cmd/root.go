// Package cmd defines the assistant's command line interface.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adroit-club/assistant/internal/log"
)

var (
	verbose  bool
	jsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "adroit-assistant",
	Short: "RAG chat backend for the AdroIT technical club",
	Long: `adroit-assistant answers questions about the AdroIT technical club,
grounded in the club's knowledge base: the public documentation corpus,
the members-only resource catalogue and each member's own uploads.

Run "adroit-assistant serve" to start the HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false,
		"emit logs as JSON")
}

// newLogger builds the process logger from the global flags.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, JSON: jsonLogs})
}
