package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eprbell/rp2go/internal/amount"
	"github.com/eprbell/rp2go/internal/config"
)

// Validation errors shared across transaction kinds.
var (
	ErrNonPositiveLine      = errors.New("line has non-positive value")
	ErrTimestampNoZone      = errors.New("timestamp has no timezone info")
	ErrTimestampFormat      = errors.New("timestamp has invalid format")
	ErrUnknownAsset         = errors.New("asset value is not known")
	ErrUnknownExchange      = errors.New("exchange value is not known")
	ErrUnknownHolder        = errors.New("holder value is not known")
	ErrTypeDirection        = errors.New("transaction type not valid for direction")
	ErrNonPositiveSpotPrice = errors.New("spot_price has non-positive value")
)

// TimestampLayout is the canonical ledger timestamp format. Timestamps
// must carry an explicit UTC offset; fractional seconds are optional.
const TimestampLayout = time.RFC3339

// ParseTimestamp parses a ledger timestamp, rejecting timezone-naive
// values with a dedicated error.
func ParseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	// Distinguish a missing offset from a malformed string.
	naive := []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02 15:04:05"}
	for _, layout := range naive {
		if _, err := time.Parse(layout, s); err == nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrTimestampNoZone, s)
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrTimestampFormat, s)
}

// Transaction is the behavior common to in, out and intra transactions.
// Implementations are *In, *Out and *Intra.
type Transaction interface {
	// Direction returns the ledger side of the transaction.
	Direction() Direction
	// LineNumber returns the ledger line the transaction came from.
	LineNumber() int
	// When returns the transaction timestamp.
	When() time.Time
	// AssetName returns the asset the transaction concerns.
	AssetName() string
	// IsTaxable reports whether the transaction triggers a taxable event.
	IsTaxable() bool
	// TaxableAmount returns the fiat amount subject to tax. Zero when not
	// taxable.
	TaxableAmount() amount.Amount
	// Render returns the multi-line human-readable form, indented by the
	// given number of levels.
	Render(indent int) string
}

// Common holds the fields shared by every transaction kind.
type Common struct {
	Line      int           `json:"line"`
	Timestamp time.Time     `json:"timestamp"`
	Asset     string        `json:"asset"`
	Type      Type          `json:"type"`
	SpotPrice amount.Amount `json:"spot_price"`
	Notes     string        `json:"notes,omitempty"`
}

// LineNumber returns the ledger line the transaction came from.
func (c *Common) LineNumber() int { return c.Line }

// When returns the transaction timestamp.
func (c *Common) When() time.Time { return c.Timestamp }

// AssetName returns the asset the transaction concerns.
func (c *Common) AssetName() string { return c.Asset }

// validate checks the fields shared by every transaction kind. The
// direction parameter ties the type check to the concrete kind.
func (c *Common) validate(cfg *config.Config, dir Direction) error {
	if c.Line <= 0 {
		return fmt.Errorf("%w: %d", ErrNonPositiveLine, c.Line)
	}
	if c.Timestamp.IsZero() {
		return fmt.Errorf("%w: empty", ErrTimestampFormat)
	}
	if !cfg.KnownAsset(c.Asset) {
		return c.errf(ErrUnknownAsset, c.Asset)
	}
	d, err := c.Type.Direction()
	if err != nil {
		return c.wrapf(err)
	}
	if d != dir {
		return c.errf(ErrTypeDirection, string(c.Type))
	}
	if !c.SpotPrice.IsPositive() {
		return c.errf(ErrNonPositiveSpotPrice, c.SpotPrice.String())
	}
	return nil
}

// errf wraps a sentinel with the line number and offending value.
func (c *Common) errf(sentinel error, value string) error {
	return fmt.Errorf("line %d: %w: %q", c.Line, sentinel, value)
}

// wrapf wraps an already-descriptive error with the line number.
func (c *Common) wrapf(err error) error {
	return fmt.Errorf("line %d: %w", c.Line, err)
}

// renderLines assembles the shared multi-line rendering. kind is the
// struct name ("InTransaction"), fields the kind-specific lines.
func (c *Common) renderLines(indent int, kind string, fields []string) string {
	pad := strings.Repeat("  ", indent)
	var b strings.Builder
	b.WriteString(pad + kind + ":")
	lines := []string{
		fmt.Sprintf("line=%d", c.Line),
		fmt.Sprintf("timestamp=%s", c.Timestamp.UTC().Format("2006-01-02 15:04:05.000000 -0700")),
		fmt.Sprintf("asset=%s", c.Asset),
	}
	lines = append(lines, fields...)
	for _, l := range lines {
		b.WriteString("\n" + pad + "  " + l)
	}
	return b.String()
}
