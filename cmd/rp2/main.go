// Package main provides the rp2 CLI entry point.
package main

import (
	"os"

	"github.com/eprbell/rp2go/internal/rp2log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// verbose enables debug logging
var verbose bool

var logger *zap.Logger

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rp2",
	Short: "Privacy-focused crypto tax-lot calculator",
	Long: `rp2 computes capital gain/loss and account balances from
cryptocurrency transaction ledgers using FIFO lot accounting.

Ledgers are git-versionable JSONL files; computed data can be persisted
to an ephemeral SQLite database for querying. All commands output JSON
by default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return err
		}
		rp2log.Set(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Version = Version
}
