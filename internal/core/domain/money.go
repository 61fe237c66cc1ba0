package domain

import (
	"fmt"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Currency identifies a currency by its ISO 4217-like code. Equality is by code.
type Currency struct {
	Code string `json:"code"` // e.g. "KES", "USD"
}

// minorUnits is the exponent used when rounding rate-derived amounts.
// All supported currencies use two decimal places.
const minorUnits = 2

// Money is an immutable currency-tagged monetary value. All binary operations
// between two Money values of different currencies fail with ErrCurrencyMismatch.
// Plain arithmetic never rounds; only MulRate rounds, to the currency's minor
// units using banker's rounding.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMoney builds a Money from a decimal amount and a currency code.
func NewMoney(amount decimal.Decimal, currencyCode string) Money {
	return Money{Amount: amount, Currency: Currency{Code: currencyCode}}
}

// ZeroMoney returns the zero value in the given currency.
func ZeroMoney(currencyCode string) Money {
	return Money{Amount: decimal.Zero, Currency: Currency{Code: currencyCode}}
}

func (m Money) sameCurrency(other Money) error {
	if m.Currency.Code != other.Currency.Code {
		return fmt.Errorf("%w: %s vs %s", apperrors.ErrCurrencyMismatch, m.Currency.Code, other.Currency.Code)
	}
	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// MulRate multiplies by a rate (e.g. an interchange percentage) and rounds the
// result to the currency's minor units with banker's rounding. This is the
// only Money operation that rounds.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(rate).RoundBank(minorUnits), Currency: m.Currency}
}

// Cmp compares two Money values: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.Amount.Cmp(other.Amount), nil
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c > 0, err
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c < 0, err
}

// MinMoney returns the smaller of the two values.
func MinMoney(a, b Money) (Money, error) {
	less, err := a.LessThan(b)
	if err != nil {
		return Money{}, err
	}
	if less {
		return a, nil
	}
	return b, nil
}

// Neg returns the negated value.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// Equal reports whether both amount and currency match exactly.
func (m Money) Equal(other Money) bool {
	return m.Currency.Code == other.Currency.Code && m.Amount.Equal(other.Amount)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(minorUnits), m.Currency.Code)
}
