// Package core provides money parsing and handling utilities.
//
// Amounts are fixed-point decimals so repeated additions over a ledger
// window never drift the way binary floats do.
package core

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// AmountPlaces is the precision amounts are kept at, in storage and on the wire.
const AmountPlaces = 2

type Money struct {
	Amount decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{Amount: decimal.Zero}

// NewMoney builds an amount from a whole-unit integer.
func NewMoney(units int64) Money {
	return Money{Amount: decimal.NewFromInt(units)}
}

// NewMoneyFromCents builds an amount from minor units.
func NewMoneyFromCents(cents int64) Money {
	return Money{Amount: decimal.New(cents, -2)}
}

// ParseAmount converts a decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Empty strings, stray characters and multiple
// separators are rejected with ErrInvalidAmount. Extra decimals are rounded
// half away from zero to AmountPlaces.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-5")    -> -5, nil
//	ParseAmount("0.005") -> 0.01, nil
//	ParseAmount("1.2.3") -> 0, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 || body == "" {
		return Zero, ErrInvalidAmount
	}
	parts := strings.Split(body, ".")
	if len(parts) > 2 {
		return Zero, ErrInvalidAmount
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return Zero, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return Zero, ErrInvalidAmount
			}
		}
	}

	normalized := ""
	if strings.HasPrefix(s, "-") {
		normalized = "-"
	}
	if parts[0] == "" {
		normalized += "0"
	} else {
		normalized += parts[0]
	}
	if len(parts) == 2 && parts[1] != "" {
		normalized += "." + parts[1]
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	return Money{Amount: d.Round(AmountPlaces)}, nil
}

// LenientAmount parses user input and substitutes zero for anything that is
// not a number. Entry forms rely on this instead of surfacing an error.
func LenientAmount(s string) Money {
	m, err := ParseAmount(s)
	if err != nil {
		return Zero
	}
	return m
}

func (m Money) Add(o Money) Money { return Money{Amount: m.Amount.Add(o.Amount)} }

func (m Money) Sub(o Money) Money { return Money{Amount: m.Amount.Sub(o.Amount)} }

func (m Money) IsZero() bool { return m.Amount.IsZero() }

func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// Equal compares by value, so 1.5 equals 1.50.
func (m Money) Equal(o Money) bool { return m.Amount.Equal(o.Amount) }

// String renders the amount with two decimal places.
func (m Money) String() string { return m.Amount.StringFixed(AmountPlaces) }

// Float64 returns the value for display purposes only.
// Use decimal arithmetic for calculations.
func (m Money) Float64() float64 {
	f, _ := m.Amount.Float64()
	return f
}

// MarshalJSON encodes the amount as a quoted two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
