package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
)

func kes(s string) domain.Money {
	return domain.NewMoney(decimal.RequireFromString(s), "KES")
}

func TestMoneyAdd(t *testing.T) {
	sum, err := kes("100.50").Add(kes("0.50"))
	require.NoError(t, err)
	assert.True(t, sum.Amount.Equal(decimal.RequireFromString("101")), "got %s", sum)
	assert.Equal(t, "KES", sum.Currency.Code)
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	usd := domain.NewMoney(decimal.NewFromInt(10), "USD")

	_, err := kes("10").Add(usd)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	_, err = kes("10").Sub(usd)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	_, err = kes("10").Cmp(usd)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	_, err = domain.MinMoney(kes("10"), usd)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)
}

func TestMoneyMulRateBankersRounding(t *testing.T) {
	// Half-to-even at the second decimal place.
	tests := []struct {
		base string
		rate string
		want string
	}{
		{"100", "0.00125", "0.12"}, // 0.125 rounds down to even
		{"100", "0.00135", "0.14"}, // 0.135 rounds up to even
		{"100", "0.0175", "1.75"},  // exact, untouched
		{"33.33", "0.01", "0.33"},
	}
	for _, tc := range tests {
		got := kes(tc.base).MulRate(decimal.RequireFromString(tc.rate))
		assert.True(t, got.Amount.Equal(decimal.RequireFromString(tc.want)),
			"%s * %s = %s, want %s", tc.base, tc.rate, got.Amount, tc.want)
	}
}

func TestMoneyComparisons(t *testing.T) {
	gt, err := kes("10").GreaterThan(kes("5"))
	require.NoError(t, err)
	assert.True(t, gt)

	lt, err := kes("10").LessThan(kes("5"))
	require.NoError(t, err)
	assert.False(t, lt)

	min, err := domain.MinMoney(kes("10"), kes("5"))
	require.NoError(t, err)
	assert.True(t, min.Equal(kes("5")))
}

func TestMoneySigns(t *testing.T) {
	assert.True(t, domain.ZeroMoney("KES").IsZero())
	assert.True(t, kes("1").IsPositive())
	assert.True(t, kes("1").Neg().IsNegative())
	assert.True(t, kes("-3.50").Neg().Equal(kes("3.50")))
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "1234.50 KES", kes("1234.5").String())
}
