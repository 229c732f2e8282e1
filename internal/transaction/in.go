package transaction

import (
	"errors"
	"fmt"

	"github.com/eprbell/rp2go/internal/amount"
	"github.com/eprbell/rp2go/internal/config"
	"github.com/eprbell/rp2go/internal/rp2log"
	"go.uber.org/zap"
)

// In transaction validation errors.
var (
	ErrNonPositiveCryptoIn  = errors.New("crypto_in has non-positive value")
	ErrNegativeFiatFee      = errors.New("fiat_fee has negative value")
	ErrNonPositiveFiatIn    = errors.New("fiat_in_no_fee has non-positive value")
	ErrNonPositiveFiatInFee = errors.New("fiat_in_with_fee has non-positive value")
)

// In is an acquisition: crypto flowing into an account (buy, earn).
type In struct {
	Common
	Exchange string        `json:"exchange"`
	Holder   string        `json:"holder"`
	CryptoIn amount.Amount `json:"crypto_in"`
	FiatFee  amount.Amount `json:"fiat_fee"`

	// FiatInNoFee and FiatInWithFee are derived from the spot price when
	// the ledger omits them.
	FiatInNoFee   amount.Amount `json:"fiat_in_no_fee"`
	FiatInWithFee amount.Amount `json:"fiat_in_with_fee"`
}

// Direction returns DirIn.
func (t *In) Direction() Direction { return DirIn }

// Validate checks the transaction against the configuration, derives the
// fiat fields when missing and logs a warning when the ledger-provided
// values disagree with the spot price.
func (t *In) Validate(cfg *config.Config) error {
	if err := t.validate(cfg, DirIn); err != nil {
		return err
	}
	if !cfg.KnownExchange(t.Exchange) {
		return t.errf(ErrUnknownExchange, t.Exchange)
	}
	if !cfg.KnownHolder(t.Holder) {
		return t.errf(ErrUnknownHolder, t.Holder)
	}
	if !t.CryptoIn.IsPositive() {
		return t.errf(ErrNonPositiveCryptoIn, t.CryptoIn.String())
	}
	if t.FiatFee.IsNegative() {
		return t.errf(ErrNegativeFiatFee, t.FiatFee.String())
	}

	derivedNoFee := t.CryptoIn.Mul(t.SpotPrice)
	if t.FiatInNoFee.IsZero() {
		t.FiatInNoFee = derivedNoFee
	}
	if t.FiatInWithFee.IsZero() {
		t.FiatInWithFee = t.FiatInNoFee.Add(t.FiatFee)
	}
	if !t.FiatInNoFee.IsPositive() {
		return t.errf(ErrNonPositiveFiatIn, t.FiatInNoFee.String())
	}
	if !t.FiatInWithFee.IsPositive() {
		return t.errf(ErrNonPositiveFiatInFee, t.FiatInWithFee.String())
	}

	// Inconsistent fiat values are tolerated (exchange CSV exports round
	// aggressively) but surfaced.
	if !t.FiatInNoFee.Equal(derivedNoFee) {
		rp2log.L().Warn("in transaction: crypto_in * spot_price != fiat_in_no_fee",
			zap.Int("line", t.Line),
			zap.String("asset", t.Asset),
			zap.String("crypto_in", t.CryptoIn.String()),
			zap.String("spot_price", t.SpotPrice.String()),
			zap.String("fiat_in_no_fee", t.FiatInNoFee.String()))
	}
	if !t.FiatInWithFee.Equal(t.FiatInNoFee.Add(t.FiatFee)) {
		rp2log.L().Warn("in transaction: fiat_in_with_fee != fiat_in_no_fee + fiat_fee",
			zap.Int("line", t.Line),
			zap.String("asset", t.Asset),
			zap.String("fiat_in_no_fee", t.FiatInNoFee.String()),
			zap.String("fiat_fee", t.FiatFee.String()),
			zap.String("fiat_in_with_fee", t.FiatInWithFee.String()))
	}
	return nil
}

// IsTaxable reports whether the acquisition is a taxable event. Earned
// crypto is ordinary income at receipt; purchases are not taxable.
func (t *In) IsTaxable() bool {
	return t.Type == Earn
}

// TaxableAmount returns the fiat value taxed at receipt.
func (t *In) TaxableAmount() amount.Amount {
	if !t.IsTaxable() {
		return amount.Zero()
	}
	return t.FiatInNoFee
}

// CryptoBalanceChange returns the crypto delta for the account.
func (t *In) CryptoBalanceChange() amount.Amount {
	return t.CryptoIn
}

// FiatBalanceChange returns the fiat delta for the account.
func (t *In) FiatBalanceChange() amount.Amount {
	return t.FiatInWithFee
}

// Render returns the multi-line human-readable form.
func (t *In) Render(indent int) string {
	fields := []string{
		fmt.Sprintf("exchange=%s", t.Exchange),
		fmt.Sprintf("holder=%s", t.Holder),
		fmt.Sprintf("transaction_type=%s", t.Type),
		fmt.Sprintf("spot_price=%s", t.SpotPrice.Fiat()),
		fmt.Sprintf("crypto_in=%s", t.CryptoIn.Crypto()),
		fmt.Sprintf("fiat_fee=%s", t.FiatFee.Fiat()),
		fmt.Sprintf("fiat_in_no_fee=%s", t.FiatInNoFee.Fiat()),
		fmt.Sprintf("fiat_in_with_fee=%s", t.FiatInWithFee.Fiat()),
		fmt.Sprintf("is_taxable=%t", t.IsTaxable()),
		fmt.Sprintf("taxable_amount=%s", t.TaxableAmount().Fiat()),
	}
	return t.renderLines(indent, "InTransaction", fields)
}

// String implements fmt.Stringer.
func (t *In) String() string {
	return t.Render(0)
}
