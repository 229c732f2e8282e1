// Package importer converts exchange account statements into ledger
// records.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/eprbell/rp2go/internal/amount"
	"github.com/eprbell/rp2go/internal/ledger"
	"github.com/eprbell/rp2go/internal/transaction"
)

// Statement import errors.
var (
	ErrNoRows     = errors.New("statement contains no transaction rows")
	ErrBadColumns = errors.New("statement row has wrong column count")
)

// statementColumns is the row grammar shared by CSV statements and rows
// recovered from PDF statements:
//
//	timestamp, type, asset, quantity, spot_price, fee
//
// Quantity is crypto for buys/sells; fee is fiat for buys and crypto for
// sells.
const statementColumns = 6

// Row is one parsed statement row.
type Row struct {
	Timestamp string
	Type      transaction.Type
	Asset     string
	Quantity  amount.Amount
	SpotPrice amount.Amount
	Fee       amount.Amount
}

// ParseRow parses the shared statement row grammar.
func ParseRow(fields []string) (*Row, error) {
	if len(fields) != statementColumns {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadColumns, len(fields), statementColumns)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	typ, err := transaction.ParseType(fields[1])
	if err != nil {
		return nil, err
	}
	if _, err := transaction.ParseTimestamp(fields[0]); err != nil {
		return nil, err
	}

	quantity, err := amount.Parse(fields[3])
	if err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	spot, err := amount.Parse(fields[4])
	if err != nil {
		return nil, fmt.Errorf("spot_price: %w", err)
	}
	fee := amount.Zero()
	if fields[5] != "" {
		if fee, err = amount.Parse(fields[5]); err != nil {
			return nil, fmt.Errorf("fee: %w", err)
		}
	}

	return &Row{
		Timestamp: fields[0],
		Type:      typ,
		Asset:     fields[2],
		Quantity:  quantity,
		SpotPrice: spot,
		Fee:       fee,
	}, nil
}

// ToRecord converts a statement row into a ledger record for the given
// account. Line numbers are assigned by the caller.
func (r *Row) ToRecord(exchange, holder string, line int) (ledger.Record, error) {
	dir, err := r.Type.Direction()
	if err != nil {
		return ledger.Record{}, err
	}

	rec := ledger.Record{
		Direction: string(dir),
		Line:      line,
		Timestamp: r.Timestamp,
		Asset:     r.Asset,
		Type:      string(r.Type),
		SpotPrice: r.SpotPrice,
		Exchange:  exchange,
		Holder:    holder,
	}

	switch dir {
	case transaction.DirIn:
		rec.CryptoIn = r.Quantity
		rec.FiatFee = r.Fee
	case transaction.DirOut:
		rec.CryptoOutNoFee = r.Quantity
		rec.CryptoFee = r.Fee
	default:
		return ledger.Record{}, fmt.Errorf("statement rows cannot express %s transactions", dir)
	}
	return rec, nil
}

// ImportCSV reads a CSV statement and converts its rows into ledger
// records. A header row is detected by its unparsable timestamp column
// and skipped.
func ImportCSV(r io.Reader, exchange, holder string, firstLine int) ([]ledger.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records []ledger.Record
	line := firstLine
	rowNum := 0
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading statement: %w", err)
		}
		rowNum++

		if rowNum == 1 && looksLikeHeader(fields) {
			continue
		}

		row, err := ParseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("statement row %d: %w", rowNum, err)
		}
		rec, err := row.ToRecord(exchange, holder, line)
		if err != nil {
			return nil, fmt.Errorf("statement row %d: %w", rowNum, err)
		}
		records = append(records, rec)
		line++
	}

	if len(records) == 0 {
		return nil, ErrNoRows
	}
	return records, nil
}

func looksLikeHeader(fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	_, err := transaction.ParseTimestamp(strings.TrimSpace(fields[0]))
	return err != nil
}
