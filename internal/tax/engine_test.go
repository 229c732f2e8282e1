package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eprbell/rp2go/internal/amount"
	"github.com/eprbell/rp2go/internal/config"
	"github.com/eprbell/rp2go/internal/ledger"
)

func engineConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.New(
		[]string{"B1"},
		[]string{"BlockFi", "Coinbase"},
		[]string{"Bob", "Alice"},
	)
	require.NoError(t, err)
	return cfg
}

func inTx(t *testing.T, line int, when, typ, crypto, spot string) ledger.Record {
	t.Helper()
	return ledger.Record{
		Direction: "in",
		Line:      line,
		Timestamp: when,
		Asset:     "B1",
		Type:      typ,
		SpotPrice: amount.MustParse(spot),
		Exchange:  "Coinbase",
		Holder:    "Bob",
		CryptoIn:  amount.MustParse(crypto),
	}
}

func outTx(t *testing.T, line int, when, crypto, fee, spot string) ledger.Record {
	t.Helper()
	return ledger.Record{
		Direction:      "out",
		Line:           line,
		Timestamp:      when,
		Asset:          "B1",
		Type:           "sell",
		SpotPrice:      amount.MustParse(spot),
		Exchange:       "Coinbase",
		Holder:         "Bob",
		CryptoOutNoFee: amount.MustParse(crypto),
		CryptoFee:      amount.MustParse(fee),
	}
}

func moveTx(t *testing.T, line int, when, sent, received, spot string) ledger.Record {
	t.Helper()
	return ledger.Record{
		Direction:      "intra",
		Line:           line,
		Timestamp:      when,
		Asset:          "B1",
		Type:           "move",
		SpotPrice:      amount.MustParse(spot),
		FromExchange:   "Coinbase",
		FromHolder:     "Bob",
		ToExchange:     "BlockFi",
		ToHolder:       "Alice",
		CryptoSent:     amount.MustParse(sent),
		CryptoReceived: amount.MustParse(received),
	}
}

func compute(t *testing.T, records ...ledger.Record) *ComputedData {
	t.Helper()
	cfg := engineConfig(t)
	input, err := ledger.BuildInput(cfg, "B1", records)
	require.NoError(t, err)
	data, err := Compute(cfg, input)
	require.NoError(t, err)
	return data
}

func TestComputeSingleBuySell(t *testing.T) {
	data := compute(t,
		inTx(t, 1, "2020-01-01T00:00:00Z", "buy", "2", "1000"),
		outTx(t, 2, "2020-03-01T00:00:00Z", "1", "0", "1500"),
	)

	require.Len(t, data.GainLoss.Entries, 1)
	g := data.GainLoss.Entries[0]
	assert.Equal(t, KindCapital, g.Kind)
	assert.False(t, g.LongTerm)
	// Basis per unit includes the purchase fee (zero here): 1000/unit.
	assert.Equal(t, "500.0000", g.Gain().Fiat())
	assert.Equal(t, 1, g.AcquiredLine)
	assert.Equal(t, 2, g.DisposedLine)

	assert.Equal(t, "1.00000000", data.Balances.Total().Crypto())
}

func TestComputeBuyFeeInBasis(t *testing.T) {
	buy := inTx(t, 1, "2019-01-01T00:00:00Z", "buy", "1", "10000")
	buy.FiatFee = amount.MustParse("100")
	data := compute(t,
		buy,
		outTx(t, 2, "2019-06-01T00:00:00Z", "1", "0", "11000"),
	)

	require.Len(t, data.GainLoss.Entries, 1)
	g := data.GainLoss.Entries[0]
	// Proceeds 11000 against basis 10100 (purchase price plus fee).
	assert.Equal(t, "10100.0000", g.FiatCostBasis.Fiat())
	assert.Equal(t, "900.0000", g.Gain().Fiat())
}

func TestComputeFIFOSpansLots(t *testing.T) {
	data := compute(t,
		inTx(t, 1, "2020-01-01T00:00:00Z", "buy", "1", "1000"),
		inTx(t, 2, "2020-02-01T00:00:00Z", "buy", "1", "2000"),
		outTx(t, 3, "2020-03-01T00:00:00Z", "1.5", "0", "3000"),
	)

	require.Len(t, data.GainLoss.Entries, 2)

	first := data.GainLoss.Entries[0]
	assert.Equal(t, "1.00000000", first.CryptoAmount.Crypto())
	assert.Equal(t, 1, first.AcquiredLine)
	assert.Equal(t, "2000.0000", first.Gain().Fiat())

	second := data.GainLoss.Entries[1]
	assert.Equal(t, "0.50000000", second.CryptoAmount.Crypto())
	assert.Equal(t, 2, second.AcquiredLine)
	// 0.5 * 3000 proceeds against 0.5 * 2000 basis.
	assert.Equal(t, "500.0000", second.Gain().Fiat())

	assert.Equal(t, "2500.0000", data.GainLoss.TotalGain().Fiat())
	assert.Equal(t, "0.50000000", data.Balances.Total().Crypto())
}

func TestComputeEarnOrdinaryIncome(t *testing.T) {
	data := compute(t,
		inTx(t, 1, "2020-01-01T00:00:00Z", "earn", "0.1", "10000"),
		outTx(t, 2, "2020-02-01T00:00:00Z", "0.1", "0", "12000"),
	)

	require.Len(t, data.GainLoss.Entries, 2)

	income := data.GainLoss.Entries[0]
	assert.Equal(t, KindOrdinary, income.Kind)
	// Income is the fiat value at receipt: 0.1 * 10000.
	assert.Equal(t, "1000.0000", income.Gain().Fiat())

	capital := data.GainLoss.Entries[1]
	assert.Equal(t, KindCapital, capital.Kind)
	// The earned lot's basis is the already-taxed income value.
	assert.Equal(t, "1000.0000", capital.FiatCostBasis.Fiat())
	assert.Equal(t, "200.0000", capital.Gain().Fiat())

	assert.Equal(t, "1000.0000", data.GainLoss.OrdinaryIncome().Fiat())
	assert.Equal(t, "200.0000", data.GainLoss.CapitalGainShortTerm().Fiat())
}

func TestComputeLongTermBoundary(t *testing.T) {
	tests := []struct {
		name     string
		disposed string
		longTerm bool
	}{
		{"exactly one year", "2021-01-01T00:00:00Z", false},
		{"one year and a second", "2021-01-01T00:00:01Z", true},
		{"well past a year", "2021-06-01T00:00:00Z", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := compute(t,
				inTx(t, 1, "2020-01-01T00:00:00Z", "buy", "1", "1000"),
				outTx(t, 2, tt.disposed, "1", "0", "2000"),
			)
			require.Len(t, data.GainLoss.Entries, 1)
			assert.Equal(t, tt.longTerm, data.GainLoss.Entries[0].LongTerm)
		})
	}
}

func TestComputeIntraFeeDisposal(t *testing.T) {
	data := compute(t,
		inTx(t, 1, "2020-01-01T00:00:00Z", "buy", "1", "1000"),
		moveTx(t, 2, "2020-02-01T00:00:00Z", "0.5", "0.4999", "2000"),
	)

	require.Len(t, data.GainLoss.Entries, 1)
	g := data.GainLoss.Entries[0]
	assert.Equal(t, "0.00010000", g.CryptoAmount.Crypto())
	// Fee proceeds 0.0001 * 2000 against basis 0.0001 * 1000.
	assert.Equal(t, "0.1000", g.Gain().Fiat())

	assert.Equal(t, "0.50000000",
		data.Balances.Get(Account{Exchange: "Coinbase", Holder: "Bob"}).Crypto())
	assert.Equal(t, "0.49990000",
		data.Balances.Get(Account{Exchange: "BlockFi", Holder: "Alice"}).Crypto())
	assert.Empty(t, data.Balances.Negative())
}

func TestComputeLosslessMoveNoGainLoss(t *testing.T) {
	data := compute(t,
		inTx(t, 1, "2020-01-01T00:00:00Z", "buy", "1", "1000"),
		moveTx(t, 2, "2020-02-01T00:00:00Z", "0.5", "0.5", "2000"),
	)
	assert.Empty(t, data.GainLoss.Entries)
	assert.Equal(t, "1.00000000", data.Balances.Total().Crypto())
}

func TestComputeInsufficientCrypto(t *testing.T) {
	cfg := engineConfig(t)
	input, err := ledger.BuildInput(cfg, "B1", []ledger.Record{
		inTx(t, 1, "2020-01-01T00:00:00Z", "buy", "1", "1000"),
		outTx(t, 2, "2020-02-01T00:00:00Z", "1.5", "0", "2000"),
	})
	require.NoError(t, err)

	_, err = Compute(cfg, input)
	assert.ErrorIs(t, err, ErrInsufficientCrypto)
}

func TestComputeNegativeBalance(t *testing.T) {
	// A per-account overdraft that is covered asset-wide: Bob acquires on
	// Coinbase but the sale happens on BlockFi. FIFO funding still works,
	// the account balance goes negative and is reported as such.
	sale := outTx(t, 2, "2020-02-01T00:00:00Z", "0.5", "0", "2000")
	sale.Exchange = "BlockFi"
	data := compute(t,
		inTx(t, 1, "2020-01-01T00:00:00Z", "buy", "1", "1000"),
		sale,
	)

	neg := data.Balances.Negative()
	require.Len(t, neg, 1)
	assert.Equal(t, "BlockFi", neg[0].Exchange)
	assert.Equal(t, "-0.50000000", neg[0].Crypto.Crypto())
}

func TestInYear(t *testing.T) {
	data := compute(t,
		inTx(t, 1, "2019-06-01T00:00:00Z", "buy", "2", "1000"),
		outTx(t, 2, "2019-12-01T00:00:00Z", "0.5", "0", "1500"),
		outTx(t, 3, "2020-03-01T00:00:00Z", "0.5", "0", "2500"),
	)

	y2019 := data.GainLoss.InYear(2019)
	require.Len(t, y2019.Entries, 1)
	assert.Equal(t, "250.0000", y2019.TotalGain().Fiat())

	y2020 := data.GainLoss.InYear(2020)
	require.Len(t, y2020.Entries, 1)
	assert.Equal(t, "750.0000", y2020.TotalGain().Fiat())

	assert.Empty(t, data.GainLoss.InYear(2021).Entries)
}
