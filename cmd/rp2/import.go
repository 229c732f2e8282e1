package main

import (
	"os"

	"github.com/eprbell/rp2go/internal/importer"
	"github.com/eprbell/rp2go/internal/ledger"
	"github.com/spf13/cobra"
)

var (
	importExchange string
	importHolder   string
	importOut      string
)

func init() {
	for _, c := range []*cobra.Command{importCSVCmd, importPDFCmd} {
		c.Flags().StringVar(&importExchange, "exchange", "", "Exchange the statement belongs to (required)")
		c.Flags().StringVar(&importHolder, "holder", "", "Holder the account belongs to (required)")
		c.Flags().StringVar(&importOut, "ledger", "", "Ledger file to append to (required)")
		c.MarkFlagRequired("exchange")
		c.MarkFlagRequired("holder")
		c.MarkFlagRequired("ledger")
		importCmd.AddCommand(c)
	}
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import exchange account statements",
}

var importCSVCmd = &cobra.Command{
	Use:   "csv <statement>",
	Short: "Import a CSV statement into the ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportCSV,
}

var importPDFCmd = &cobra.Command{
	Use:   "pdf <statement>",
	Short: "Import a PDF statement into the ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportPDF,
}

// nextLedgerLine returns the line number for the next appended record.
func nextLedgerLine(path string) (int, error) {
	records, err := ledger.ReadAll(path)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, rec := range records {
		if rec.Line > max {
			max = rec.Line
		}
	}
	return max + 1, nil
}

func appendImported(records []ledger.Record) {
	for _, rec := range records {
		if err := ledger.Append(importOut, rec); err != nil {
			exitWithError(ExitError, "appending to ledger: %v", err)
		}
	}

	if humanOutput {
		outputHuman("imported %d transactions into %s\n", len(records), importOut)
		return
	}
	outputJSON(StatusResponse{Status: "imported", Path: importOut, Count: len(records)})
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	first, err := nextLedgerLine(importOut)
	if err != nil {
		exitWithError(ExitDataError, "reading ledger: %v", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		exitWithError(ExitError, "opening statement: %v", err)
	}
	defer f.Close()

	records, err := importer.ImportCSV(f, importExchange, importHolder, first)
	if err != nil {
		exitWithError(ExitDataError, "importing statement: %v", err)
	}

	appendImported(records)
	return nil
}

func runImportPDF(cmd *cobra.Command, args []string) error {
	first, err := nextLedgerLine(importOut)
	if err != nil {
		exitWithError(ExitDataError, "reading ledger: %v", err)
	}

	records, err := importer.ImportPDF(args[0], importExchange, importHolder, first)
	if err != nil {
		exitWithError(ExitDataError, "importing statement: %v", err)
	}

	appendImported(records)
	return nil
}
