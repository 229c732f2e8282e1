package tax

import (
	"errors"
	"fmt"
	"time"

	"github.com/eprbell/rp2go/internal/amount"
	"github.com/eprbell/rp2go/internal/config"
	"github.com/eprbell/rp2go/internal/ledger"
	"github.com/eprbell/rp2go/internal/transaction"
)

// ErrInsufficientCrypto indicates a disposal of more crypto than the
// asset's acquisitions cover at that point in time.
var ErrInsufficientCrypto = errors.New("insufficient acquired crypto for disposal")

// ComputedData is the result of running the engine on one asset.
type ComputedData struct {
	Asset    string
	GainLoss *GainLossSet
	Balances *BalanceSet
}

// lot is an open acquisition with its remaining undisposed quantity.
type lot struct {
	acquiredAt   time.Time
	acquiredLine int
	remaining    amount.Amount
	basisPerUnit amount.Amount
}

// Compute runs FIFO lot accounting over one asset's input. Events are
// processed in timestamp order; acquisitions open lots and disposals
// consume them oldest-first. The engine is pure: it performs no I/O.
func Compute(cfg *config.Config, input *ledger.Input) (*ComputedData, error) {
	if cfg == nil {
		return nil, errors.New("configuration is nil")
	}
	if input == nil {
		return nil, errors.New("input is nil")
	}

	data := &ComputedData{
		Asset:    input.Asset,
		GainLoss: &GainLossSet{Asset: input.Asset},
		Balances: NewBalanceSet(input.Asset),
	}

	var lots []*lot
	for _, t := range input.Transactions() {
		switch tx := t.(type) {
		case *transaction.In:
			lots = append(lots, openLot(tx))
			if tx.IsTaxable() {
				// Earned crypto is ordinary income at receipt; the lot it
				// opens carries the income value as basis.
				data.GainLoss.Entries = append(data.GainLoss.Entries, &GainLoss{
					Asset:        input.Asset,
					Kind:         KindOrdinary,
					CryptoAmount: tx.CryptoIn,
					FiatProceeds: tx.TaxableAmount(),
					AcquiredAt:   tx.Timestamp,
					DisposedAt:   tx.Timestamp,
					AcquiredLine: tx.Line,
					DisposedLine: tx.Line,
				})
			}
			data.Balances.Add(Account{Exchange: tx.Exchange, Holder: tx.Holder}, tx.CryptoIn)

		case *transaction.Out:
			remaining, err := dispose(data.GainLoss, lots, tx.CryptoOutWithFee(), tx.SpotPrice, tx.Timestamp, tx.Line)
			if err != nil {
				return nil, err
			}
			lots = remaining
			data.Balances.Add(Account{Exchange: tx.Exchange, Holder: tx.Holder}, amount.Zero().Sub(tx.CryptoOutWithFee()))

		case *transaction.Intra:
			if fee := tx.CryptoFee(); fee.IsPositive() {
				remaining, err := dispose(data.GainLoss, lots, fee, tx.SpotPrice, tx.Timestamp, tx.Line)
				if err != nil {
					return nil, err
				}
				lots = remaining
			}
			data.Balances.Add(Account{Exchange: tx.FromExchange, Holder: tx.FromHolder}, amount.Zero().Sub(tx.CryptoSent))
			data.Balances.Add(Account{Exchange: tx.ToExchange, Holder: tx.ToHolder}, tx.CryptoReceived)
		}
	}

	return data, nil
}

func openLot(tx *transaction.In) *lot {
	// Purchases carry the fee into the basis; earned crypto's basis is its
	// income value at receipt.
	basis := tx.FiatInWithFee
	if tx.Type == transaction.Earn {
		basis = tx.FiatInNoFee
	}
	return &lot{
		acquiredAt:   tx.Timestamp,
		acquiredLine: tx.Line,
		remaining:    tx.CryptoIn,
		basisPerUnit: basis.Div(tx.CryptoIn),
	}
}

// dispose consumes quantity from the open lots oldest-first, appending one
// capital gain/loss entry per (disposal, lot) fragment. Returns the lots
// still open.
func dispose(set *GainLossSet, lots []*lot, quantity, spotPrice amount.Amount, disposedAt time.Time, disposedLine int) ([]*lot, error) {
	left := quantity
	for len(lots) > 0 && left.IsPositive() {
		head := lots[0]
		take := head.remaining
		if left.Cmp(take) < 0 {
			take = left
		}

		set.Entries = append(set.Entries, &GainLoss{
			Asset:         set.Asset,
			Kind:          KindCapital,
			CryptoAmount:  take,
			FiatProceeds:  spotPrice.Mul(take),
			FiatCostBasis: head.basisPerUnit.Mul(take),
			AcquiredAt:    head.acquiredAt,
			DisposedAt:    disposedAt,
			AcquiredLine:  head.acquiredLine,
			DisposedLine:  disposedLine,
			LongTerm:      isLongTerm(head.acquiredAt, disposedAt),
		})

		head.remaining = head.remaining.Sub(take)
		left = left.Sub(take)
		if head.remaining.IsZero() {
			lots = lots[1:]
		}
	}

	if left.IsPositive() {
		return nil, fmt.Errorf("%w: %s short at line %d", ErrInsufficientCrypto, left.Crypto(), disposedLine)
	}
	return lots, nil
}

// isLongTerm reports whether the holding period exceeds one year.
func isLongTerm(acquired, disposed time.Time) bool {
	return disposed.After(acquired.AddDate(1, 0, 0))
}
