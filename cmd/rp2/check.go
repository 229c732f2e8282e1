package main

import (
	"errors"
	"os"

	"github.com/eprbell/rp2go/internal/config"
	"github.com/eprbell/rp2go/internal/ledger"
	"github.com/eprbell/rp2go/internal/tax"
	"github.com/spf13/cobra"
)

var (
	checkConfigPath string
	checkLedgerPath string
)

func init() {
	checkCmd.Flags().StringVar(&checkConfigPath, "config", "", "Accounting configuration file (required)")
	checkCmd.Flags().StringVar(&checkLedgerPath, "ledger", "", "Transaction ledger JSONL file (required)")
	checkCmd.MarkFlagRequired("config")
	checkCmd.MarkFlagRequired("ledger")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify ledger integrity",
	Long: `Verify ledger integrity without producing reports: validates every
record, runs the engine per asset and reports over-disposals and
negative account balances.`,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status string       `json:"status"`
	Assets int          `json:"assets"`
	Issues []CheckIssue `json:"issues"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type     string `json:"type"`
	Asset    string `json:"asset,omitempty"`
	Exchange string `json:"exchange,omitempty"`
	Holder   string `json:"holder,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// checkAssets validates every configured asset with ledger activity and
// returns the number of assets checked plus the issues found. An asset
// with no records at all is silently skipped; an asset whose records are
// all disposals or transfers is an over-disposal, not inactivity.
func checkAssets(cfg *config.Config, records []ledger.Record) (int, []CheckIssue) {
	perAsset := make(map[string]int)
	for _, rec := range records {
		perAsset[rec.Asset]++
	}

	var issues []CheckIssue
	checked := 0
	for _, asset := range cfg.SortedAssets() {
		if perAsset[asset] == 0 {
			continue
		}
		checked++

		input, err := ledger.BuildInput(cfg, asset, records)
		if errors.Is(err, ledger.ErrNoInTransactions) {
			issues = append(issues, CheckIssue{Type: "over_disposal", Asset: asset, Detail: err.Error()})
			continue
		}
		if err != nil {
			issues = append(issues, CheckIssue{Type: "invalid_record", Asset: asset, Detail: err.Error()})
			continue
		}

		data, err := tax.Compute(cfg, input)
		if err != nil {
			issues = append(issues, CheckIssue{Type: "over_disposal", Asset: asset, Detail: err.Error()})
			continue
		}
		for _, b := range data.Balances.Negative() {
			issues = append(issues, CheckIssue{
				Type:     "negative_balance",
				Asset:    asset,
				Exchange: b.Exchange,
				Holder:   b.Holder,
				Detail:   b.Crypto.Crypto(),
			})
		}
	}
	return checked, issues
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(checkConfigPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	records, err := ledger.ReadAll(checkLedgerPath)
	if err != nil {
		exitWithError(ExitDataError, "reading ledger: %v", err)
	}

	checked, issues := checkAssets(cfg, records)

	result := CheckResult{Status: "ok", Assets: checked, Issues: issues}
	if len(issues) > 0 {
		result.Status = "issues_found"
	}

	if humanOutput {
		outputHuman("checked %d assets, %d issues\n", result.Assets, len(issues))
		for _, issue := range issues {
			outputHuman("  [%s] %s %s\n", issue.Type, issue.Asset, issue.Detail)
		}
	} else if err := outputJSON(result); err != nil {
		return err
	}

	if len(issues) > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}
