package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/eprbell/rp2go/internal/config"
	"github.com/eprbell/rp2go/internal/transaction"
)

// Input is one asset's validated transaction tables, each sorted
// chronologically (ties broken by line number).
type Input struct {
	Asset string
	In    []*transaction.In
	Out   []*transaction.Out
	Intra []*transaction.Intra
}

// Load errors.
var (
	ErrNoInTransactions = errors.New("asset has no in transactions")
	ErrDuplicateLine    = errors.New("duplicate ledger line number")
)

// LoadInput reads a ledger file and returns the typed, validated input
// for one asset. Records for other assets are skipped. An asset with
// disposals but no acquisitions is rejected: there is nothing to dispose
// from.
func LoadInput(cfg *config.Config, asset string, path string) (*Input, error) {
	records, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	return BuildInput(cfg, asset, records)
}

// BuildInput builds the typed input for one asset from raw records.
func BuildInput(cfg *config.Config, asset string, records []Record) (*Input, error) {
	if !cfg.KnownAsset(asset) {
		return nil, fmt.Errorf("%w: %q", transaction.ErrUnknownAsset, asset)
	}

	input := &Input{Asset: asset}
	seen := make(map[int]bool)
	for _, rec := range records {
		if rec.Asset != asset {
			continue
		}
		t, err := rec.ToTransaction(cfg)
		if err != nil {
			return nil, err
		}
		if seen[t.LineNumber()] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateLine, t.LineNumber())
		}
		seen[t.LineNumber()] = true

		switch tx := t.(type) {
		case *transaction.In:
			input.In = append(input.In, tx)
		case *transaction.Out:
			input.Out = append(input.Out, tx)
		case *transaction.Intra:
			input.Intra = append(input.Intra, tx)
		}
	}

	if len(input.In) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoInTransactions, asset)
	}

	sortByTime(input)
	return input, nil
}

func sortByTime(input *Input) {
	sort.SliceStable(input.In, func(i, j int) bool {
		return before(input.In[i], input.In[j])
	})
	sort.SliceStable(input.Out, func(i, j int) bool {
		return before(input.Out[i], input.Out[j])
	})
	sort.SliceStable(input.Intra, func(i, j int) bool {
		return before(input.Intra[i], input.Intra[j])
	})
}

func before(a, b transaction.Transaction) bool {
	if !a.When().Equal(b.When()) {
		return a.When().Before(b.When())
	}
	return a.LineNumber() < b.LineNumber()
}

// Transactions returns every transaction of the input merged into one
// chronological slice.
func (in *Input) Transactions() []transaction.Transaction {
	all := make([]transaction.Transaction, 0, len(in.In)+len(in.Out)+len(in.Intra))
	for _, t := range in.In {
		all = append(all, t)
	}
	for _, t := range in.Out {
		all = append(all, t)
	}
	for _, t := range in.Intra {
		all = append(all, t)
	}
	sort.SliceStable(all, func(i, j int) bool { return before(all[i], all[j]) })
	return all
}
