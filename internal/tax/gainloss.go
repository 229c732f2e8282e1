// Package tax computes capital gain/loss and account balances from a
// validated asset ledger using FIFO lot accounting.
package tax

import (
	"fmt"
	"strings"
	"time"

	"github.com/eprbell/rp2go/internal/amount"
)

// Kind classifies a gain/loss entry.
type Kind string

// Gain/loss kinds.
const (
	// KindCapital is a capital gain or loss from disposing of lots.
	KindCapital Kind = "capital"
	// KindOrdinary is ordinary income from earned crypto at receipt.
	KindOrdinary Kind = "ordinary"
)

// GainLoss is one taxable fragment: the pairing of a disposal (or income
// event) with the acquisition lot that funds it.
type GainLoss struct {
	Asset         string        `json:"asset"`
	Kind          Kind          `json:"kind"`
	CryptoAmount  amount.Amount `json:"crypto_amount"`
	FiatProceeds  amount.Amount `json:"fiat_proceeds"`
	FiatCostBasis amount.Amount `json:"fiat_cost_basis"`
	AcquiredAt    time.Time     `json:"acquired_at"`
	DisposedAt    time.Time     `json:"disposed_at"`
	AcquiredLine  int           `json:"acquired_line"`
	DisposedLine  int           `json:"disposed_line"`
	LongTerm      bool          `json:"long_term"`
}

// Gain returns proceeds minus cost basis. Negative for losses.
func (g *GainLoss) Gain() amount.Amount {
	return g.FiatProceeds.Sub(g.FiatCostBasis)
}

// Render returns the multi-line human-readable form.
func (g *GainLoss) Render(indent int) string {
	pad := strings.Repeat("  ", indent)
	var b strings.Builder
	b.WriteString(pad + "GainLoss:")
	lines := []string{
		fmt.Sprintf("asset=%s", g.Asset),
		fmt.Sprintf("kind=%s", g.Kind),
		fmt.Sprintf("crypto_amount=%s", g.CryptoAmount.Crypto()),
		fmt.Sprintf("fiat_proceeds=%s", g.FiatProceeds.Fiat()),
		fmt.Sprintf("fiat_cost_basis=%s", g.FiatCostBasis.Fiat()),
		fmt.Sprintf("gain=%s", g.Gain().Fiat()),
		fmt.Sprintf("acquired=%s (line %d)", g.AcquiredAt.UTC().Format("2006-01-02 15:04:05 -0700"), g.AcquiredLine),
		fmt.Sprintf("disposed=%s (line %d)", g.DisposedAt.UTC().Format("2006-01-02 15:04:05 -0700"), g.DisposedLine),
		fmt.Sprintf("long_term=%t", g.LongTerm),
	}
	for _, l := range lines {
		b.WriteString("\n" + pad + "  " + l)
	}
	return b.String()
}

// String implements fmt.Stringer.
func (g *GainLoss) String() string {
	return g.Render(0)
}

// GainLossSet is a chronological sequence of gain/loss entries for one
// asset.
type GainLossSet struct {
	Asset   string      `json:"asset"`
	Entries []*GainLoss `json:"entries"`
}

// TotalGain returns the sum of all gains and losses.
func (s *GainLossSet) TotalGain() amount.Amount {
	return s.sum(func(*GainLoss) bool { return true })
}

// CapitalGainLongTerm returns the long-term capital portion of the total.
func (s *GainLossSet) CapitalGainLongTerm() amount.Amount {
	return s.sum(func(g *GainLoss) bool { return g.Kind == KindCapital && g.LongTerm })
}

// CapitalGainShortTerm returns the short-term capital portion of the
// total.
func (s *GainLossSet) CapitalGainShortTerm() amount.Amount {
	return s.sum(func(g *GainLoss) bool { return g.Kind == KindCapital && !g.LongTerm })
}

// OrdinaryIncome returns the earned-income portion of the total.
func (s *GainLossSet) OrdinaryIncome() amount.Amount {
	return s.sum(func(g *GainLoss) bool { return g.Kind == KindOrdinary })
}

// InYear returns the subset of entries disposed in the given year.
func (s *GainLossSet) InYear(year int) *GainLossSet {
	out := &GainLossSet{Asset: s.Asset}
	for _, g := range s.Entries {
		if g.DisposedAt.UTC().Year() == year {
			out.Entries = append(out.Entries, g)
		}
	}
	return out
}

func (s *GainLossSet) sum(keep func(*GainLoss) bool) amount.Amount {
	total := amount.Zero()
	for _, g := range s.Entries {
		if keep(g) {
			total = total.Add(g.Gain())
		}
	}
	return total
}

// String renders every entry, one block per line group.
func (s *GainLossSet) String() string {
	parts := make([]string, 0, len(s.Entries)+1)
	parts = append(parts, fmt.Sprintf("GainLossSet: asset=%s entries=%d", s.Asset, len(s.Entries)))
	for _, g := range s.Entries {
		parts = append(parts, g.Render(1))
	}
	return strings.Join(parts, "\n")
}
