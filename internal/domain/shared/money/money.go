package money

import (
	"errors"
	"math"
	"strings"

	"golang.org/x/text/currency"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrInvalidAmount    = errors.New("money: amount is not a finite number")
)

// DefaultCurrency is used when an admin does not pick one.
const DefaultCurrency = "USD"

// Money keeps amounts in integer minor units (cents for USD) to avoid floating point drift.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value validating the ISO-4217 code.
func New(amount int64, code string) (Money, error) {
	unit, err := ParseCurrency(code)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: unit}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, code string) Money {
	m, err := New(amount, code)
	if err != nil {
		panic(err)
	}
	return m
}

// FromMajor converts a decimal amount (e.g. 149.99) into minor units of the currency.
func FromMajor(value float64, code string) (Money, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Money{}, ErrInvalidAmount
	}
	unit, err := ParseCurrency(code)
	if err != nil {
		return Money{}, err
	}
	minor := math.Round(value * math.Pow10(Scale(unit)))
	return Money{Amount: int64(minor), Currency: unit}, nil
}

// ParseCurrency normalizes an ISO-4217 code ("usd" -> "USD").
func ParseCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", ErrInvalidCurrency
	}
	return unit.String(), nil
}

// Scale returns the number of minor-unit digits for the currency (2 for USD, 0 for JPY).
func Scale(code string) int {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// Major renders the amount in major units.
func (m Money) Major() float64 {
	return float64(m.Amount) / math.Pow10(Scale(m.Currency))
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Multiply multiplies the amount by the provided factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
