// Package report renders computed tax data as CSV and JSON artifacts.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/eprbell/rp2go/internal/amount"
	"github.com/eprbell/rp2go/internal/tax"
)

// gainLossHeader is the column layout of the gain/loss CSV report.
var gainLossHeader = []string{
	"asset", "kind", "crypto_amount", "fiat_proceeds", "fiat_cost_basis",
	"fiat_gain", "acquired_at", "disposed_at", "acquired_line",
	"disposed_line", "long_term",
}

// WriteGainLossCSV writes the gain/loss entries as CSV.
func WriteGainLossCSV(w io.Writer, set *tax.GainLossSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(gainLossHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, g := range set.Entries {
		row := []string{
			g.Asset,
			string(g.Kind),
			g.CryptoAmount.Crypto(),
			g.FiatProceeds.Fiat(),
			g.FiatCostBasis.Fiat(),
			g.Gain().Fiat(),
			g.AcquiredAt.UTC().Format("2006-01-02T15:04:05Z"),
			g.DisposedAt.UTC().Format("2006-01-02T15:04:05Z"),
			strconv.Itoa(g.AcquiredLine),
			strconv.Itoa(g.DisposedLine),
			strconv.FormatBool(g.LongTerm),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row (disposed line %d): %w", g.DisposedLine, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// BalanceRow is one account position in the summary.
type BalanceRow struct {
	Exchange string `json:"exchange"`
	Holder   string `json:"holder"`
	Crypto   string `json:"crypto"`
}

// YearBreakdown is one accounting year's slice of the summary.
type YearBreakdown struct {
	Year           int           `json:"year"`
	Entries        int           `json:"entries"`
	TotalGain      amount.Amount `json:"total_gain"`
	LongTermGain   amount.Amount `json:"long_term_gain"`
	ShortTermGain  amount.Amount `json:"short_term_gain"`
	OrdinaryIncome amount.Amount `json:"ordinary_income"`
}

// Summary is the JSON summary of one asset's computation.
type Summary struct {
	Asset          string          `json:"asset"`
	Entries        int             `json:"entries"`
	TotalGain      amount.Amount   `json:"total_gain"`
	LongTermGain   amount.Amount   `json:"long_term_gain"`
	ShortTermGain  amount.Amount   `json:"short_term_gain"`
	OrdinaryIncome amount.Amount   `json:"ordinary_income"`
	Years          []YearBreakdown `json:"years,omitempty"`
	Balances       []BalanceRow    `json:"balances"`
	Negative       []BalanceRow    `json:"negative_balances,omitempty"`
}

// Summarize builds the JSON summary from a computation result. The
// per-year breakdown covers the years with taxable entries, clipped to
// the accounting period; zero bounds mean no limit on that side.
func Summarize(data *tax.ComputedData, fromYear, toYear int) *Summary {
	s := &Summary{
		Asset:          data.Asset,
		Entries:        len(data.GainLoss.Entries),
		TotalGain:      data.GainLoss.TotalGain(),
		LongTermGain:   data.GainLoss.CapitalGainLongTerm(),
		ShortTermGain:  data.GainLoss.CapitalGainShortTerm(),
		OrdinaryIncome: data.GainLoss.OrdinaryIncome(),
	}

	for _, year := range disposalYears(data.GainLoss, fromYear, toYear) {
		sub := data.GainLoss.InYear(year)
		s.Years = append(s.Years, YearBreakdown{
			Year:           year,
			Entries:        len(sub.Entries),
			TotalGain:      sub.TotalGain(),
			LongTermGain:   sub.CapitalGainLongTerm(),
			ShortTermGain:  sub.CapitalGainShortTerm(),
			OrdinaryIncome: sub.OrdinaryIncome(),
		})
	}

	for _, b := range data.Balances.Sorted() {
		s.Balances = append(s.Balances, BalanceRow{Exchange: b.Exchange, Holder: b.Holder, Crypto: b.Crypto.Crypto()})
	}
	for _, b := range data.Balances.Negative() {
		s.Negative = append(s.Negative, BalanceRow{Exchange: b.Exchange, Holder: b.Holder, Crypto: b.Crypto.Crypto()})
	}
	return s
}

// disposalYears returns the distinct disposal years within the period,
// ascending.
func disposalYears(set *tax.GainLossSet, fromYear, toYear int) []int {
	seen := make(map[int]bool)
	for _, g := range set.Entries {
		year := g.DisposedAt.UTC().Year()
		if fromYear != 0 && year < fromYear {
			continue
		}
		if toYear != 0 && year > toYear {
			continue
		}
		seen[year] = true
	}
	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
