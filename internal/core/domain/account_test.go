package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
)

func testAccount(balance, overdraft string) *domain.Account {
	return &domain.Account{
		AccountID:      "acc-1",
		AccountNumber:  "1000000001",
		CustomerID:     "cust-1",
		Balance:        kes(balance),
		OverdraftLimit: kes(overdraft),
		Status:         domain.AccountActive,
		CustomerGLCode: "2001",
		AuditFields:    domain.NewAuditFields("tester", time.Now().UTC()),
	}
}

func TestAccountDebitWithinOverdraft(t *testing.T) {
	acc := testAccount("100", "50")

	require.NoError(t, acc.Debit(kes("150")))
	assert.True(t, acc.Balance.Equal(kes("-50")), "balance %s", acc.Balance)
}

func TestAccountDebitInsufficientFunds(t *testing.T) {
	acc := testAccount("100", "50")

	err := acc.Debit(kes("150.01"))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.True(t, acc.Balance.Equal(kes("100")), "balance must not move on a rejected debit")
}

func TestAccountDebitValidation(t *testing.T) {
	acc := testAccount("100", "0")

	err := acc.Debit(domain.NewMoney(decimal.NewFromInt(10), "USD"))
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	err = acc.Debit(kes("0"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	err = acc.Debit(kes("-5"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestAccountCreditValidation(t *testing.T) {
	acc := testAccount("0", "0")

	require.NoError(t, acc.Credit(kes("25")))
	assert.True(t, acc.Balance.Equal(kes("25")))

	err := acc.Credit(kes("0"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	err = acc.Credit(domain.NewMoney(decimal.NewFromInt(10), "USD"))
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)
}

func TestAccountFrozenRejectsTransactions(t *testing.T) {
	acc := testAccount("100", "0")
	require.NoError(t, acc.Freeze())

	assert.ErrorIs(t, acc.Debit(kes("10")), apperrors.ErrAccountNotActive)
	assert.ErrorIs(t, acc.Credit(kes("10")), apperrors.ErrAccountNotActive)

	require.NoError(t, acc.Unfreeze())
	assert.NoError(t, acc.Debit(kes("10")))
}

func TestAccountFreezeTransitions(t *testing.T) {
	acc := testAccount("0", "0")

	require.NoError(t, acc.Freeze())
	assert.ErrorIs(t, acc.Freeze(), apperrors.ErrValidation)

	require.NoError(t, acc.Unfreeze())
	assert.ErrorIs(t, acc.Unfreeze(), apperrors.ErrValidation)
}

func TestAccountCloseRequiresZeroBalance(t *testing.T) {
	acc := testAccount("10", "0")
	assert.ErrorIs(t, acc.Close(), apperrors.ErrValidation)

	require.NoError(t, acc.Debit(kes("10")))
	require.NoError(t, acc.Close())
	assert.Equal(t, domain.AccountClosed, acc.Status)

	assert.ErrorIs(t, acc.Close(), apperrors.ErrValidation)
	assert.ErrorIs(t, acc.Freeze(), apperrors.ErrValidation)
}

func TestAccountDormant(t *testing.T) {
	acc := testAccount("5", "0")
	require.NoError(t, acc.MarkDormant())
	assert.Equal(t, domain.AccountDormant, acc.Status)
	assert.ErrorIs(t, acc.Debit(kes("1")), apperrors.ErrAccountNotActive)
}
