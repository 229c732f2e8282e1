package transaction

import (
	"errors"
	"fmt"

	"github.com/eprbell/rp2go/internal/amount"
	"github.com/eprbell/rp2go/internal/config"
)

// Intra transaction validation errors.
var (
	ErrNonPositiveCryptoSent = errors.New("crypto_sent has non-positive value")
	ErrNegativeCryptoRecv    = errors.New("crypto_received has negative value")
	ErrReceivedExceedsSent   = errors.New("crypto_received exceeds crypto_sent")
	ErrSameAccount           = errors.New("from and to accounts are the same")
)

// Intra is a transfer between two accounts of the same holder universe.
// The difference between sent and received is the network fee, which is a
// disposal of the asset.
type Intra struct {
	Common
	FromExchange   string        `json:"from_exchange"`
	FromHolder     string        `json:"from_holder"`
	ToExchange     string        `json:"to_exchange"`
	ToHolder       string        `json:"to_holder"`
	CryptoSent     amount.Amount `json:"crypto_sent"`
	CryptoReceived amount.Amount `json:"crypto_received"`
}

// Direction returns DirIntra.
func (t *Intra) Direction() Direction { return DirIntra }

// Validate checks the transaction against the configuration.
func (t *Intra) Validate(cfg *config.Config) error {
	if err := t.validate(cfg, DirIntra); err != nil {
		return err
	}
	for _, ex := range []string{t.FromExchange, t.ToExchange} {
		if !cfg.KnownExchange(ex) {
			return t.errf(ErrUnknownExchange, ex)
		}
	}
	for _, h := range []string{t.FromHolder, t.ToHolder} {
		if !cfg.KnownHolder(h) {
			return t.errf(ErrUnknownHolder, h)
		}
	}
	if t.FromExchange == t.ToExchange && t.FromHolder == t.ToHolder {
		return t.errf(ErrSameAccount, t.FromExchange+"/"+t.FromHolder)
	}
	if !t.CryptoSent.IsPositive() {
		return t.errf(ErrNonPositiveCryptoSent, t.CryptoSent.String())
	}
	if t.CryptoReceived.IsNegative() {
		return t.errf(ErrNegativeCryptoRecv, t.CryptoReceived.String())
	}
	if t.CryptoReceived.Cmp(t.CryptoSent) > 0 {
		return t.errf(ErrReceivedExceedsSent, t.CryptoReceived.String())
	}
	return nil
}

// CryptoFee returns the crypto lost in transit (sent - received).
func (t *Intra) CryptoFee() amount.Amount {
	return t.CryptoSent.Sub(t.CryptoReceived)
}

// IsTaxable reports whether the transfer is a taxable event: only when
// some crypto was consumed as a fee.
func (t *Intra) IsTaxable() bool {
	return !t.CryptoFee().IsZero()
}

// TaxableAmount returns the fiat value of the fee portion.
func (t *Intra) TaxableAmount() amount.Amount {
	return t.SpotPrice.Mul(t.CryptoFee())
}

// Render returns the multi-line human-readable form.
func (t *Intra) Render(indent int) string {
	fields := []string{
		fmt.Sprintf("from_exchange=%s", t.FromExchange),
		fmt.Sprintf("from_holder=%s", t.FromHolder),
		fmt.Sprintf("to_exchange=%s", t.ToExchange),
		fmt.Sprintf("to_holder=%s", t.ToHolder),
		fmt.Sprintf("transaction_type=%s", t.Type),
		fmt.Sprintf("spot_price=%s", t.SpotPrice.Fiat()),
		fmt.Sprintf("crypto_sent=%s", t.CryptoSent.Crypto()),
		fmt.Sprintf("crypto_received=%s", t.CryptoReceived.Crypto()),
		fmt.Sprintf("is_taxable=%t", t.IsTaxable()),
		fmt.Sprintf("taxable_amount=%s", t.TaxableAmount().Fiat()),
	}
	return t.renderLines(indent, "IntraTransaction", fields)
}

// String implements fmt.Stringer.
func (t *Intra) String() string {
	return t.Render(0)
}
