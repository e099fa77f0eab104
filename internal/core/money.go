// Package core provides the domain types of the expense log.
//
// This file contains the decimal money type used for expense amounts and
// the parsing rules applied to amounts typed into the entry form.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MinimumAmount is the smallest amount the entry form accepts.
var MinimumAmount = decimal.NewFromInt(1)

var ErrInvalidAmount = errors.New("invalid amount")

// Money is a non-negative decimal amount. It is written to JSON as a bare
// number so documents stay compatible with plain numeric amounts.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromInt is a shorthand used mostly by tests and fixtures.
func MoneyFromInt(v int64) Money {
	return Money{Decimal: decimal.NewFromInt(v)}
}

// ParseMoney converts user input to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rejects signs, empty strings and anything that is not a plain number.
//
// Examples:
//
//	ParseMoney("120")   -> 120
//	ParseMoney("12,50") -> 12.5
//	ParseMoney("-1")    -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d}, nil
}

// Validate enforces the entry form minimum.
func (m Money) Validate() error {
	if m.LessThan(MinimumAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// Plus returns m + o.
func (m Money) Plus(o Money) Money {
	return Money{Decimal: m.Add(o.Decimal)}
}

// Display formats the amount with two decimals for tables and totals.
func (m Money) Display() string {
	return m.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	*m = Money{Decimal: d}
	return nil
}
