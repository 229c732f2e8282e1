// Package ledger handles transaction persistence and ingestion. The
// ledger is a git-versionable JSONL file, one transaction per line; typed
// transactions are built from records at load time.
package ledger

import (
	"errors"
	"fmt"

	"github.com/eprbell/rp2go/internal/amount"
	"github.com/eprbell/rp2go/internal/config"
	"github.com/eprbell/rp2go/internal/transaction"
)

// Record is the raw JSONL form of a transaction. Fields not relevant to a
// record's direction are left empty.
type Record struct {
	Direction string        `json:"direction"`
	Line      int           `json:"line"`
	Timestamp string        `json:"timestamp"`
	Asset     string        `json:"asset"`
	Type      string        `json:"type"`
	SpotPrice amount.Amount `json:"spot_price"`
	Notes     string        `json:"notes,omitempty"`

	// In/out fields.
	Exchange string `json:"exchange,omitempty"`
	Holder   string `json:"holder,omitempty"`

	// In fields.
	CryptoIn      amount.Amount `json:"crypto_in,omitempty"`
	FiatFee       amount.Amount `json:"fiat_fee,omitempty"`
	FiatInNoFee   amount.Amount `json:"fiat_in_no_fee,omitempty"`
	FiatInWithFee amount.Amount `json:"fiat_in_with_fee,omitempty"`

	// Out fields.
	CryptoOutNoFee amount.Amount `json:"crypto_out_no_fee,omitempty"`
	CryptoFee      amount.Amount `json:"crypto_fee,omitempty"`

	// Intra fields.
	FromExchange   string        `json:"from_exchange,omitempty"`
	FromHolder     string        `json:"from_holder,omitempty"`
	ToExchange     string        `json:"to_exchange,omitempty"`
	ToHolder       string        `json:"to_holder,omitempty"`
	CryptoSent     amount.Amount `json:"crypto_sent,omitempty"`
	CryptoReceived amount.Amount `json:"crypto_received,omitempty"`
}

// ErrDirectionMismatch indicates a record whose direction disagrees with
// its transaction type.
var ErrDirectionMismatch = errors.New("record direction does not match transaction type")

// ToTransaction builds and validates the typed transaction for a record.
func (r *Record) ToTransaction(cfg *config.Config) (transaction.Transaction, error) {
	dir, err := transaction.ParseDirection(r.Direction)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.Line, err)
	}
	typ, err := transaction.ParseType(r.Type)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.Line, err)
	}
	ts, err := transaction.ParseTimestamp(r.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", r.Line, err)
	}

	common := transaction.Common{
		Line:      r.Line,
		Timestamp: ts,
		Asset:     r.Asset,
		Type:      typ,
		SpotPrice: r.SpotPrice,
		Notes:     r.Notes,
	}

	switch dir {
	case transaction.DirIn:
		t := &transaction.In{
			Common:        common,
			Exchange:      r.Exchange,
			Holder:        r.Holder,
			CryptoIn:      r.CryptoIn,
			FiatFee:       r.FiatFee,
			FiatInNoFee:   r.FiatInNoFee,
			FiatInWithFee: r.FiatInWithFee,
		}
		if err := t.Validate(cfg); err != nil {
			return nil, err
		}
		return t, nil
	case transaction.DirOut:
		t := &transaction.Out{
			Common:         common,
			Exchange:       r.Exchange,
			Holder:         r.Holder,
			CryptoOutNoFee: r.CryptoOutNoFee,
			CryptoFee:      r.CryptoFee,
		}
		if err := t.Validate(cfg); err != nil {
			return nil, err
		}
		return t, nil
	case transaction.DirIntra:
		t := &transaction.Intra{
			Common:         common,
			FromExchange:   r.FromExchange,
			FromHolder:     r.FromHolder,
			ToExchange:     r.ToExchange,
			ToHolder:       r.ToHolder,
			CryptoSent:     r.CryptoSent,
			CryptoReceived: r.CryptoReceived,
		}
		if err := t.Validate(cfg); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("line %d: %w: %q/%q", r.Line, ErrDirectionMismatch, r.Direction, r.Type)
}
