package main

import (
	"github.com/eprbell/rp2go/internal/ledger"
	"github.com/eprbell/rp2go/internal/storage"
	"github.com/spf13/cobra"
)

var (
	queryDBPath     string
	queryAsset      string
	queryYear       int
	queryLedgerPath string
)

func init() {
	queryCmd.Flags().StringVar(&queryDBPath, "db", "", "SQLite database written by compute --db (required)")
	queryCmd.Flags().StringVar(&queryAsset, "asset", "", "Asset to query (required)")
	queryCmd.Flags().IntVar(&queryYear, "year", 0, "Accounting year to summarize (0: balances only)")
	queryCmd.Flags().StringVar(&queryLedgerPath, "ledger", "", "Ledger file to verify the database against")
	queryCmd.MarkFlagRequired("db")
	queryCmd.MarkFlagRequired("asset")
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query computed data from the database",
	Long: `Query previously computed gain/loss summaries and balances from the
SQLite database without re-running the engine. With --ledger the stored
data is first verified against the current ledger content.`,
	RunE: runQuery,
}

// QueryResponse is the response for the query command.
type QueryResponse struct {
	Asset    string               `json:"asset"`
	Year     *storage.YearSummary `json:"year_summary,omitempty"`
	Balances []BalanceResponse    `json:"balances"`
}

// BalanceResponse is one stored account position.
type BalanceResponse struct {
	Exchange string `json:"exchange"`
	Holder   string `json:"holder"`
	Crypto   string `json:"crypto"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(queryDBPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	if queryLedgerPath != "" {
		hash, err := ledger.Hash(queryLedgerPath)
		if err != nil {
			exitWithError(ExitDataError, "hashing ledger: %v", err)
		}
		stale, err := db.NeedsRebuild(queryAsset, hash)
		if err != nil {
			exitWithError(ExitError, "checking staleness: %v", err)
		}
		if stale {
			exitWithError(ExitDataError, "stored data for %s is stale; re-run compute --db", queryAsset)
		}
	}

	resp := QueryResponse{Asset: queryAsset}
	if queryYear != 0 {
		summary, err := db.SummarizeYear(queryAsset, queryYear)
		if err != nil {
			exitWithError(ExitError, "summarizing %d: %v", queryYear, err)
		}
		resp.Year = summary
	}

	balances, err := db.Balances(queryAsset)
	if err != nil {
		exitWithError(ExitError, "reading balances: %v", err)
	}
	for _, b := range balances {
		resp.Balances = append(resp.Balances, BalanceResponse{Exchange: b.Exchange, Holder: b.Holder, Crypto: b.Crypto.Crypto()})
	}

	if humanOutput {
		if resp.Year != nil {
			outputHuman("%s %d: %d entries, total gain %s (long-term %s, short-term %s, ordinary income %s)\n",
				resp.Asset, resp.Year.Year, resp.Year.Entries, resp.Year.TotalGain.Fiat(),
				resp.Year.LongTermGain.Fiat(), resp.Year.ShortTermGain.Fiat(), resp.Year.OrdinaryIncome.Fiat())
		}
		for _, b := range resp.Balances {
			outputHuman("  %s/%s: %s\n", b.Exchange, b.Holder, b.Crypto)
		}
		return nil
	}
	return outputJSON(resp)
}
