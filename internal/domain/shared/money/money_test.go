package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMajorUsesCurrencyScale(t *testing.T) {
	usd, err := FromMajor(149.99, "usd")
	require.NoError(t, err)
	assert.Equal(t, Money{Amount: 14999, Currency: "USD"}, usd)
	assert.InDelta(t, 149.99, usd.Major(), 1e-9)

	jpy, err := FromMajor(12000, "JPY")
	require.NoError(t, err)
	assert.Equal(t, int64(12000), jpy.Amount)
}

func TestFromMajorRejectsBadInput(t *testing.T) {
	_, err := FromMajor(math.NaN(), "USD")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = FromMajor(10, "dollars")
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	_, err = FromMajor(10, "ZZZ")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestAddRequiresSameCurrency(t *testing.T) {
	sum, err := Must(500, "USD").Add(Must(700, "USD"))
	require.NoError(t, err)
	assert.Equal(t, int64(1200), sum.Amount)

	_, err = Must(500, "USD").Add(Must(700, "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}
