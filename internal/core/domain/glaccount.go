package domain

import (
	"fmt"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// GLAccountType is the fundamental accounting type of a chart-of-accounts node.
// By convention the first digit of a 4-digit GL code denotes the type:
// 1 Asset, 2 Liability, 3 Equity, 4 Income, 5 Expense.
type GLAccountType string

const (
	GLAsset     GLAccountType = "ASSET"
	GLLiability GLAccountType = "LIABILITY"
	GLEquity    GLAccountType = "EQUITY"
	GLIncome    GLAccountType = "INCOME"
	GLExpense   GLAccountType = "EXPENSE"
)

// GLAccountStatus is the lifecycle status of a GL account.
type GLAccountStatus string

const (
	GLActive    GLAccountStatus = "ACTIVE"
	GLSuspended GLAccountStatus = "SUSPENDED"
	GLClosed    GLAccountStatus = "CLOSED"
)

// GLAccount is a chart-of-accounts node with a running posted balance.
// Only leaf accounts accept postings; parent codes aggregate externally.
// A GL account is never deleted once it carries postings.
type GLAccount struct {
	GLAccountID  string          `json:"glAccountID"`
	GLCode       string          `json:"glCode"` // unique, hierarchical by convention
	Name         string          `json:"name"`
	Type         GLAccountType   `json:"type"`
	Category     string          `json:"category"`
	Status       GLAccountStatus `json:"status"`
	ParentGLCode string          `json:"parentGLCode"` // empty for top-level codes
	Level        int             `json:"level"`
	IsLeaf       bool            `json:"isLeaf"`
	CurrencyCode string          `json:"currencyCode"`
	DebitBalance decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
	AuditFields
}

func (g *GLAccount) canPost() error {
	if !g.IsLeaf {
		return fmt.Errorf("%w: GL %s is not a leaf account", apperrors.ErrValidation, g.GLCode)
	}
	if g.Status != GLActive {
		return fmt.Errorf("%w: GL %s is %s", apperrors.ErrValidation, g.GLCode, g.Status)
	}
	return nil
}

// PostDebit applies a posted debit to the running balance.
func (g *GLAccount) PostDebit(amount decimal.Decimal) error {
	if err := g.canPost(); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: GL debit of %s", apperrors.ErrInvalidAmount, amount)
	}
	g.DebitBalance = g.DebitBalance.Add(amount)
	return nil
}

// PostCredit applies a posted credit to the running balance.
func (g *GLAccount) PostCredit(amount decimal.Decimal) error {
	if err := g.canPost(); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: GL credit of %s", apperrors.ErrInvalidAmount, amount)
	}
	g.CreditBalance = g.CreditBalance.Add(amount)
	return nil
}

// NetBalance returns the balance on the account's normal side: debit-normal
// for Asset/Expense, credit-normal for Liability/Equity/Income.
func (g *GLAccount) NetBalance() decimal.Decimal {
	if g.Type == GLAsset || g.Type == GLExpense {
		return g.DebitBalance.Sub(g.CreditBalance)
	}
	return g.CreditBalance.Sub(g.DebitBalance)
}

// Close marks the account closed. Only zero-balance accounts may close.
func (g *GLAccount) Close() error {
	if !g.NetBalance().IsZero() {
		return fmt.Errorf("%w: GL %s has net balance %s", apperrors.ErrValidation, g.GLCode, g.NetBalance())
	}
	g.Status = GLClosed
	return nil
}

// Suspend blocks postings without closing the account.
func (g *GLAccount) Suspend() {
	g.Status = GLSuspended
}

// GLTypeForCode derives the account type from the leading digit of a numeric
// GL code. Returns false when the code does not follow the convention.
func GLTypeForCode(glCode string) (GLAccountType, bool) {
	if glCode == "" {
		return "", false
	}
	switch glCode[0] {
	case '1':
		return GLAsset, true
	case '2':
		return GLLiability, true
	case '3':
		return GLEquity, true
	case '4':
		return GLIncome, true
	case '5':
		return GLExpense, true
	default:
		return "", false
	}
}
