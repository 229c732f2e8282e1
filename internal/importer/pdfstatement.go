package importer

import (
	"fmt"
	"strings"

	"github.com/eprbell/rp2go/internal/ledger"
	"github.com/ledongthuc/pdf"
)

// ImportPDF extracts the text of a PDF account statement and converts
// the transaction rows it finds into ledger records. Statement rows use
// the shared row grammar with fields separated by commas or semicolons;
// lines that don't parse as rows (headers, footers, balances) are
// skipped.
func ImportPDF(path, exchange, holder string, firstLine int) ([]ledger.Record, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	var records []ledger.Record
	line := firstLine
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		rows, n := parseStatementText(text, exchange, holder, line)
		records = append(records, rows...)
		line += n
	}

	if len(records) == 0 {
		return nil, ErrNoRows
	}
	return records, nil
}

// parseStatementText scans extracted page text for parsable statement
// rows. Returns the records plus how many were found.
func parseStatementText(text, exchange, holder string, firstLine int) ([]ledger.Record, int) {
	var records []ledger.Record
	line := firstLine
	for _, raw := range strings.Split(text, "\n") {
		fields := splitStatementLine(raw)
		if len(fields) != statementColumns {
			continue
		}
		row, err := ParseRow(fields)
		if err != nil {
			continue
		}
		rec, err := row.ToRecord(exchange, holder, line)
		if err != nil {
			continue
		}
		records = append(records, rec)
		line++
	}
	return records, line - firstLine
}

func splitStatementLine(raw string) []string {
	raw = strings.TrimSpace(raw)
	sep := ","
	if strings.Contains(raw, ";") {
		sep = ";"
	}
	parts := strings.Split(raw, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
