// Package amount provides exact decimal arithmetic for fiat and crypto
// quantities. Values are arbitrary-precision rationals so that repeated
// lot splitting never accumulates rounding error; rounding happens only
// at render time.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Rendering precision by quantity kind.
const (
	FiatDecimals   = 4
	CryptoDecimals = 8
)

// ErrParse indicates a string that could not be parsed as a decimal number.
var ErrParse = errors.New("invalid decimal number")

// Amount is an immutable exact decimal value. The zero value is 0.
type Amount struct {
	rat *big.Rat
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{}
}

// FromInt returns an Amount holding the given integer.
func FromInt(n int64) Amount {
	return Amount{rat: new(big.Rat).SetInt64(n)}
}

// Parse parses a decimal string such as "2.0002" or "-20".
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty string", ErrParse)
	}
	// big.Rat accepts "a/b" and exponent forms; restrict to plain decimals.
	if strings.ContainsAny(s, "/eE") {
		return Amount{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	return Amount{rat: r}, nil
}

// MustParse parses a decimal string and panics on failure. For tests and
// package-level constants.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) value() *big.Rat {
	if a.rat == nil {
		return new(big.Rat)
	}
	return a.rat
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{rat: new(big.Rat).Add(a.value(), b.value())}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{rat: new(big.Rat).Sub(a.value(), b.value())}
}

// Mul returns a * b.
func (a Amount) Mul(b Amount) Amount {
	return Amount{rat: new(big.Rat).Mul(a.value(), b.value())}
}

// Div returns a / b. Division by zero panics, as with integer division.
func (a Amount) Div(b Amount) Amount {
	return Amount{rat: new(big.Rat).Quo(a.value(), b.value())}
}

// Cmp compares a and b: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int {
	return a.value().Cmp(b.value())
}

// Equal reports whether a and b represent the same value.
func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

// IsZero reports whether a == 0.
func (a Amount) IsZero() bool {
	return a.value().Sign() == 0
}

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool {
	return a.value().Sign() < 0
}

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool {
	return a.value().Sign() > 0
}

// StringFixed renders the amount with exactly n decimal places, rounding
// half away from zero.
func (a Amount) StringFixed(n int) string {
	return a.value().FloatString(n)
}

// Fiat renders the amount with fiat precision (4 decimal places).
func (a Amount) Fiat() string {
	return a.StringFixed(FiatDecimals)
}

// Crypto renders the amount with crypto precision (8 decimal places).
func (a Amount) Crypto() string {
	return a.StringFixed(CryptoDecimals)
}

// Exact returns a lossless textual form for storage round trips:
// integers render as integers, everything else as a rational "a/b".
// Use ParseExact to read the value back.
func (a Amount) Exact() string {
	return a.value().RatString()
}

// ParseExact parses the lossless form produced by Exact. Plain decimal
// strings are also accepted.
func ParseExact(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty string", ErrParse)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	return Amount{rat: r}, nil
}

// String renders the amount as a decimal without trailing zeros.
// Non-terminating values are truncated; Exact is the lossless form.
func (a Amount) String() string {
	r := a.value()
	if r.IsInt() {
		return r.Num().String()
	}
	s := r.FloatString(CryptoDecimals * 2)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// MarshalJSON encodes the amount as a JSON string to preserve precision.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes an amount from a JSON string or bare number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*a = Amount{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
