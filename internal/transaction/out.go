package transaction

import (
	"errors"
	"fmt"

	"github.com/eprbell/rp2go/internal/amount"
	"github.com/eprbell/rp2go/internal/config"
)

// Out transaction validation errors.
var (
	ErrNonPositiveCryptoOut = errors.New("crypto_out_no_fee has non-positive value")
	ErrNegativeCryptoFee    = errors.New("crypto_fee has negative value")
)

// Out is a disposal: crypto flowing out of an account (sell, gift,
// donate). The fee is paid in crypto and is part of the disposed amount.
type Out struct {
	Common
	Exchange       string        `json:"exchange"`
	Holder         string        `json:"holder"`
	CryptoOutNoFee amount.Amount `json:"crypto_out_no_fee"`
	CryptoFee      amount.Amount `json:"crypto_fee"`
}

// Direction returns DirOut.
func (t *Out) Direction() Direction { return DirOut }

// Validate checks the transaction against the configuration.
func (t *Out) Validate(cfg *config.Config) error {
	if err := t.validate(cfg, DirOut); err != nil {
		return err
	}
	if !cfg.KnownExchange(t.Exchange) {
		return t.errf(ErrUnknownExchange, t.Exchange)
	}
	if !cfg.KnownHolder(t.Holder) {
		return t.errf(ErrUnknownHolder, t.Holder)
	}
	if !t.CryptoOutNoFee.IsPositive() {
		return t.errf(ErrNonPositiveCryptoOut, t.CryptoOutNoFee.String())
	}
	if t.CryptoFee.IsNegative() {
		return t.errf(ErrNegativeCryptoFee, t.CryptoFee.String())
	}
	return nil
}

// CryptoOutWithFee returns the total crypto leaving the account.
func (t *Out) CryptoOutWithFee() amount.Amount {
	return t.CryptoOutNoFee.Add(t.CryptoFee)
}

// IsTaxable reports whether the disposal is a taxable event. Every out
// transaction disposes of the asset, so all are taxable.
func (t *Out) IsTaxable() bool {
	return true
}

// TaxableAmount returns the fiat proceeds of the disposal, fee included.
func (t *Out) TaxableAmount() amount.Amount {
	return t.SpotPrice.Mul(t.CryptoOutWithFee())
}

// CryptoBalanceChange returns the crypto delta for the account (negative
// magnitude reported as a positive outflow).
func (t *Out) CryptoBalanceChange() amount.Amount {
	return t.CryptoOutWithFee()
}

// Render returns the multi-line human-readable form.
func (t *Out) Render(indent int) string {
	fields := []string{
		fmt.Sprintf("exchange=%s", t.Exchange),
		fmt.Sprintf("holder=%s", t.Holder),
		fmt.Sprintf("transaction_type=%s", t.Type),
		fmt.Sprintf("spot_price=%s", t.SpotPrice.Fiat()),
		fmt.Sprintf("crypto_out_no_fee=%s", t.CryptoOutNoFee.Crypto()),
		fmt.Sprintf("crypto_fee=%s", t.CryptoFee.Crypto()),
		fmt.Sprintf("is_taxable=%t", t.IsTaxable()),
		fmt.Sprintf("taxable_amount=%s", t.TaxableAmount().Fiat()),
	}
	return t.renderLines(indent, "OutTransaction", fields)
}

// String implements fmt.Stringer.
func (t *Out) String() string {
	return t.Render(0)
}
