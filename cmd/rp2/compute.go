package main

import (
	"os"
	"path/filepath"

	"github.com/eprbell/rp2go/internal/config"
	"github.com/eprbell/rp2go/internal/ledger"
	"github.com/eprbell/rp2go/internal/report"
	"github.com/eprbell/rp2go/internal/storage"
	"github.com/eprbell/rp2go/internal/tax"
	"github.com/spf13/cobra"
)

var (
	computeConfigPath string
	computeLedgerPath string
	computeAsset      string
	computeOutputDir  string
	computeDBPath     string
)

func init() {
	computeCmd.Flags().StringVar(&computeConfigPath, "config", "", "Accounting configuration file (required)")
	computeCmd.Flags().StringVar(&computeLedgerPath, "ledger", "", "Transaction ledger JSONL file (required)")
	computeCmd.Flags().StringVar(&computeAsset, "asset", "", "Asset to compute (default: all configured assets)")
	computeCmd.Flags().StringVar(&computeOutputDir, "output-dir", "", "Directory for gain/loss CSV reports")
	computeCmd.Flags().StringVar(&computeDBPath, "db", "", "SQLite database to persist computed data into")
	computeCmd.MarkFlagRequired("config")
	computeCmd.MarkFlagRequired("ledger")
	rootCmd.AddCommand(computeCmd)
}

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute gain/loss and balances from a ledger",
	Long: `Compute capital gain/loss and account balances for one or all
configured assets using FIFO lot accounting.`,
	RunE: runCompute,
}

func runCompute(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(computeConfigPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	assets := cfg.SortedAssets()
	if computeAsset != "" {
		assets = []string{computeAsset}
	}

	var db *storage.DB
	var ledgerHash string
	if computeDBPath != "" {
		if ledgerHash, err = ledger.Hash(computeLedgerPath); err != nil {
			exitWithError(ExitDataError, "hashing ledger: %v", err)
		}
		if db, err = storage.Open(computeDBPath); err != nil {
			exitWithError(ExitError, "opening database: %v", err)
		}
		defer db.Close()
	}

	var summaries []*report.Summary
	for _, asset := range assets {
		input, err := ledger.LoadInput(cfg, asset, computeLedgerPath)
		if err != nil {
			exitWithError(ExitDataError, "loading ledger for %s: %v", asset, err)
		}

		data, err := tax.Compute(cfg, input)
		if err != nil {
			exitWithError(ExitDataError, "computing %s: %v", asset, err)
		}

		if computeOutputDir != "" {
			if err := writeGainLossReport(computeOutputDir, data); err != nil {
				exitWithError(ExitError, "writing report for %s: %v", asset, err)
			}
		}
		if db != nil {
			if _, err := db.RebuildFromComputed(data, ledgerHash); err != nil {
				exitWithError(ExitError, "persisting %s: %v", asset, err)
			}
		}

		summaries = append(summaries, report.Summarize(data, cfg.FromYear, cfg.ToYear))
	}

	if humanOutput {
		for _, s := range summaries {
			outputHuman("%s: %d entries, total gain %s (long-term %s, short-term %s, ordinary income %s)\n",
				s.Asset, s.Entries, s.TotalGain.Fiat(), s.LongTermGain.Fiat(), s.ShortTermGain.Fiat(), s.OrdinaryIncome.Fiat())
			for _, y := range s.Years {
				outputHuman("  %d: %d entries, gain %s\n", y.Year, y.Entries, y.TotalGain.Fiat())
			}
			for _, b := range s.Balances {
				outputHuman("  %s/%s: %s\n", b.Exchange, b.Holder, b.Crypto)
			}
		}
		return nil
	}
	return outputJSON(summaries)
}

func writeGainLossReport(dir string, data *tax.ComputedData) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, data.Asset+"_gain_loss.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteGainLossCSV(f, data.GainLoss)
}
