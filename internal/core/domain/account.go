package domain

import (
	"fmt"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
)

// AccountStatus is the lifecycle status of a customer account.
type AccountStatus string

const (
	AccountActive  AccountStatus = "ACTIVE"
	AccountFrozen  AccountStatus = "FROZEN"
	AccountClosed  AccountStatus = "CLOSED"
	AccountDormant AccountStatus = "DORMANT"
)

// Account is a customer deposit account. It enforces the business rules for
// debits and credits (status, sufficiency, overdraft). Accounting rules are
// not its concern: every balance mutation must be paired with a balanced
// journal entry by the calling service.
type Account struct {
	AccountID      string        `json:"accountID"`
	AccountNumber  string        `json:"accountNumber"`
	CustomerID     string        `json:"customerID"`
	Balance        Money         `json:"balance"`
	OverdraftLimit Money         `json:"overdraftLimit"`
	Status         AccountStatus `json:"status"`
	// CustomerGLCode is the leaf GL code customer balances of this account
	// post against.
	CustomerGLCode string `json:"customerGLCode"`
	AuditFields
}

// CurrencyCode is the currency the account is denominated in.
func (a *Account) CurrencyCode() string { return a.Balance.Currency.Code }

// IsActive reports whether the account accepts transactions.
func (a *Account) IsActive() bool { return a.Status == AccountActive }

// CanDebit reports whether a debit of the given amount would be accepted.
func (a *Account) CanDebit(amount Money) error {
	if !a.IsActive() {
		return fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountNotActive, a.AccountNumber, a.Status)
	}
	if amount.Currency.Code != a.CurrencyCode() {
		return fmt.Errorf("%w: debit %s against %s account %s",
			apperrors.ErrCurrencyMismatch, amount.Currency.Code, a.CurrencyCode(), a.AccountNumber)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: debit of %s", apperrors.ErrInvalidAmount, amount)
	}
	available, err := a.Balance.Add(a.OverdraftLimit)
	if err != nil {
		return err
	}
	over, err := amount.GreaterThan(available)
	if err != nil {
		return err
	}
	if over {
		return fmt.Errorf("%w: account %s available %s, requested %s",
			apperrors.ErrInsufficientFunds, a.AccountNumber, available, amount)
	}
	return nil
}

// Debit reduces the balance. The reference and description of the movement
// travel with the paired journal entry; the account only enforces the
// precondition.
func (a *Account) Debit(amount Money) error {
	if err := a.CanDebit(amount); err != nil {
		return err
	}
	nb, err := a.Balance.Sub(amount)
	if err != nil {
		return err
	}
	a.Balance = nb
	return nil
}

// Credit increases the balance.
func (a *Account) Credit(amount Money) error {
	if !a.IsActive() {
		return fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountNotActive, a.AccountNumber, a.Status)
	}
	if amount.Currency.Code != a.CurrencyCode() {
		return fmt.Errorf("%w: credit %s to %s account %s",
			apperrors.ErrCurrencyMismatch, amount.Currency.Code, a.CurrencyCode(), a.AccountNumber)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: credit of %s", apperrors.ErrInvalidAmount, amount)
	}
	nb, err := a.Balance.Add(amount)
	if err != nil {
		return err
	}
	a.Balance = nb
	return nil
}

// Withdraw is the teller-facing alias for Debit.
func (a *Account) Withdraw(amount Money) error {
	return a.Debit(amount)
}

// Deposit is the teller-facing alias for Credit.
func (a *Account) Deposit(amount Money) error {
	return a.Credit(amount)
}

// Freeze blocks all transactions on the account.
func (a *Account) Freeze() error {
	if a.Status == AccountFrozen {
		return fmt.Errorf("%w: account %s already frozen", apperrors.ErrValidation, a.AccountNumber)
	}
	if a.Status == AccountClosed {
		return fmt.Errorf("%w: account %s is closed", apperrors.ErrValidation, a.AccountNumber)
	}
	a.Status = AccountFrozen
	return nil
}

// Unfreeze reactivates a frozen account.
func (a *Account) Unfreeze() error {
	if a.Status != AccountFrozen {
		return fmt.Errorf("%w: account %s is not frozen", apperrors.ErrValidation, a.AccountNumber)
	}
	a.Status = AccountActive
	return nil
}

// Close terminates the account. Accounts are never deleted, only closed, and
// only with a zero balance.
func (a *Account) Close() error {
	if a.Status == AccountClosed {
		return fmt.Errorf("%w: account %s already closed", apperrors.ErrValidation, a.AccountNumber)
	}
	if !a.Balance.IsZero() {
		return fmt.Errorf("%w: account %s has balance %s", apperrors.ErrValidation, a.AccountNumber, a.Balance)
	}
	a.Status = AccountClosed
	return nil
}

// MarkDormant flags an inactive account. Dormant accounts reject transactions
// until reactivated.
func (a *Account) MarkDormant() error {
	if a.Status != AccountActive {
		return fmt.Errorf("%w: account %s is %s", apperrors.ErrValidation, a.AccountNumber, a.Status)
	}
	a.Status = AccountDormant
	return nil
}
