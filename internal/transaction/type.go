// Package transaction defines the typed ledger transaction model: in
// (acquisitions), out (disposals) and intra (transfers between accounts),
// with validation against the accounting configuration.
package transaction

import (
	"errors"
	"fmt"
	"strings"
)

// Type classifies a transaction.
type Type string

// Transaction types. Parsing is case-insensitive; the canonical form is
// lowercase.
const (
	Buy    Type = "buy"
	Sell   Type = "sell"
	Donate Type = "donate"
	Earn   Type = "earn"
	Gift   Type = "gift"
	Move   Type = "move"
)

// Direction groups transaction types by the side of the ledger they
// appear on.
type Direction string

// Ledger directions.
const (
	DirIn    Direction = "in"
	DirOut   Direction = "out"
	DirIntra Direction = "intra"
)

// ErrUnknownType indicates a string that names no transaction type.
var ErrUnknownType = errors.New("invalid transaction type")

// ErrUnknownDirection indicates a string that names no ledger direction.
var ErrUnknownDirection = errors.New("invalid ledger direction")

// ParseType parses a transaction type case-insensitively ("eaRn" -> Earn).
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(s)) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	case Donate:
		return Donate, nil
	case Earn:
		return Earn, nil
	case Gift:
		return Gift, nil
	case Move:
		return Move, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// ParseDirection parses a ledger direction case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(s)) {
	case DirIn:
		return DirIn, nil
	case DirOut:
		return DirOut, nil
	case DirIntra:
		return DirIntra, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Direction returns the ledger side the type belongs to.
func (t Type) Direction() (Direction, error) {
	switch t {
	case Buy, Earn:
		return DirIn, nil
	case Sell, Gift, Donate:
		return DirOut, nil
	case Move:
		return DirIntra, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, string(t))
}

// String returns the canonical lowercase name.
func (t Type) String() string {
	return string(t)
}
