package transaction

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eprbell/rp2go/internal/amount"
	"github.com/eprbell/rp2go/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.New(
		[]string{"B1", "B2"},
		[]string{"BlockFi", "Coinbase"},
		[]string{"Bob", "Alice"},
	)
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	return cfg
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := ParseTimestamp(s)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q): %v", s, err)
	}
	return ts
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "utc with millis", input: "2021-01-02T08:42:43.882Z"},
		{name: "explicit offset", input: "2021-01-02T08:42:43+01:00"},
		{name: "no timezone", input: "2021-01-02T08:42:43", wantErr: ErrTimestampNoZone},
		{name: "space separated naive", input: "2021-01-02 08:42:43", wantErr: ErrTimestampNoZone},
		{name: "garbage", input: "abcdefg", wantErr: ErrTimestampFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseTimestamp(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.input, err)
			}
			if ts.IsZero() {
				t.Errorf("ParseTimestamp(%q) returned zero time", tt.input)
			}
		})
	}
}

func TestParseTimestampFields(t *testing.T) {
	ts := mustTime(t, "2021-01-02T08:42:43.882Z").UTC()
	if ts.Year() != 2021 || ts.Month() != time.January || ts.Day() != 2 {
		t.Errorf("date = %v, want 2021-01-02", ts)
	}
	if ts.Hour() != 8 || ts.Minute() != 42 || ts.Second() != 43 {
		t.Errorf("time = %v, want 08:42:43", ts)
	}
	if ts.Nanosecond() != 882000000 {
		t.Errorf("nanoseconds = %d, want 882000000", ts.Nanosecond())
	}
}

func validIn(t *testing.T) *In {
	t.Helper()
	return &In{
		Common: Common{
			Line:      19,
			Timestamp: mustTime(t, "2021-01-02T08:42:43.882Z"),
			Asset:     "B1",
			Type:      Earn,
			SpotPrice: amount.MustParse("1000"),
		},
		Exchange:      "BlockFi",
		Holder:        "Bob",
		CryptoIn:      amount.MustParse("2.0002"),
		FiatFee:       amount.Zero(),
		FiatInNoFee:   amount.MustParse("2000.2"),
		FiatInWithFee: amount.MustParse("2000.2"),
	}
}

func TestTaxableIn(t *testing.T) {
	cfg := testConfig(t)
	tx := validIn(t)

	if err := tx.Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !tx.IsTaxable() {
		t.Error("earn transaction not taxable")
	}
	if got := tx.TaxableAmount(); !got.Equal(amount.MustParse("2000.2")) {
		t.Errorf("TaxableAmount = %s, want 2000.2", got)
	}
	if got := tx.CryptoBalanceChange(); !got.Equal(amount.MustParse("2.0002")) {
		t.Errorf("CryptoBalanceChange = %s, want 2.0002", got)
	}
	if got := tx.FiatBalanceChange(); !got.Equal(amount.MustParse("2000.2")) {
		t.Errorf("FiatBalanceChange = %s, want 2000.2", got)
	}
}

func TestNonTaxableIn(t *testing.T) {
	cfg := testConfig(t)
	tx := &In{
		Common: Common{
			Line:      19,
			Timestamp: mustTime(t, "1841-01-02T15:22:03Z"),
			Asset:     "B2",
			Type:      Buy,
			SpotPrice: amount.MustParse("1000"),
		},
		Exchange: "Coinbase",
		Holder:   "Alice",
		CryptoIn: amount.MustParse("2.0002"),
		FiatFee:  amount.MustParse("20"),
	}

	if err := tx.Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if tx.IsTaxable() {
		t.Error("buy transaction reported taxable")
	}
	if !tx.TaxableAmount().IsZero() {
		t.Errorf("TaxableAmount = %s, want 0", tx.TaxableAmount())
	}

	// Fiat fields are derived from the spot price when omitted.
	if got := tx.FiatInNoFee; !got.Equal(amount.MustParse("2000.2")) {
		t.Errorf("derived FiatInNoFee = %s, want 2000.2", got)
	}
	if got := tx.FiatInWithFee; !got.Equal(amount.MustParse("2020.2")) {
		t.Errorf("derived FiatInWithFee = %s, want 2020.2", got)
	}
	if got := tx.FiatBalanceChange(); !got.Equal(amount.MustParse("2020.2")) {
		t.Errorf("FiatBalanceChange = %s, want 2020.2", got)
	}
}

func TestInRender(t *testing.T) {
	cfg := testConfig(t)
	tx := validIn(t)
	if err := tx.Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	got := tx.String()
	want := strings.Join([]string{
		"InTransaction:",
		"  line=19",
		"  timestamp=2021-01-02 08:42:43.882000 +0000",
		"  asset=B1",
		"  exchange=BlockFi",
		"  holder=Bob",
		"  transaction_type=earn",
		"  spot_price=1000.0000",
		"  crypto_in=2.00020000",
		"  fiat_fee=0.0000",
		"  fiat_in_no_fee=2000.2000",
		"  fiat_in_with_fee=2000.2000",
		"  is_taxable=true",
		"  taxable_amount=2000.2000",
	}, "\n")
	if got != want {
		t.Errorf("String() =\n%s\nwant:\n%s", got, want)
	}

	indented := tx.Render(2)
	if !strings.HasPrefix(indented, "    InTransaction:") {
		t.Errorf("Render(2) not indented: %q", indented[:30])
	}
}

func TestBadIn(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name    string
		mutate  func(*In)
		wantErr error
	}{
		{name: "non-positive line", mutate: func(tx *In) { tx.Line = -19 }, wantErr: ErrNonPositiveLine},
		{name: "unknown asset", mutate: func(tx *In) { tx.Asset = "yyy" }, wantErr: ErrUnknownAsset},
		{name: "unknown exchange", mutate: func(tx *In) { tx.Exchange = "blockfi" }, wantErr: ErrUnknownExchange},
		{name: "unknown holder", mutate: func(tx *In) { tx.Holder = "qwerty" }, wantErr: ErrUnknownHolder},
		{name: "out type on in", mutate: func(tx *In) { tx.Type = Sell }, wantErr: ErrTypeDirection},
		{name: "zero spot price", mutate: func(tx *In) { tx.SpotPrice = amount.Zero() }, wantErr: ErrNonPositiveSpotPrice},
		{name: "negative spot price", mutate: func(tx *In) { tx.SpotPrice = amount.MustParse("-1000") }, wantErr: ErrNonPositiveSpotPrice},
		{name: "zero crypto in", mutate: func(tx *In) { tx.CryptoIn = amount.Zero() }, wantErr: ErrNonPositiveCryptoIn},
		{name: "negative crypto in", mutate: func(tx *In) { tx.CryptoIn = amount.MustParse("-2.0002") }, wantErr: ErrNonPositiveCryptoIn},
		{name: "negative fiat fee", mutate: func(tx *In) { tx.FiatFee = amount.MustParse("-20") }, wantErr: ErrNegativeFiatFee},
		{
			name: "negative fiat in no fee",
			mutate: func(tx *In) {
				tx.FiatInNoFee = amount.MustParse("-2000.2")
			},
			wantErr: ErrNonPositiveFiatIn,
		},
		{
			name: "negative fiat in with fee",
			mutate: func(tx *In) {
				tx.FiatInWithFee = amount.MustParse("-2020.2")
			},
			wantErr: ErrNonPositiveFiatInFee,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validIn(t)
			tt.mutate(tx)
			err := tx.Validate(cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBadInErrorNamesLine(t *testing.T) {
	cfg := testConfig(t)
	tx := validIn(t)
	tx.Asset = "yyy"
	err := tx.Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "line 19") {
		t.Errorf("error does not name the line: %v", err)
	}
}
