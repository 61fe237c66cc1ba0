package models

import (
	"github.com/shopspring/decimal"
)

// Account represents a customer deposit account row.
type Account struct {
	AccountID      string          `db:"account_id"`
	AccountNumber  string          `db:"account_number"`
	CustomerID     string          `db:"customer_id"`
	Balance        decimal.Decimal `db:"balance"`
	OverdraftLimit decimal.Decimal `db:"overdraft_limit"`
	CurrencyCode   string          `db:"currency_code"`
	Status         string          `db:"status"`
	CustomerGLCode string          `db:"customer_gl_code"`
	AuditFields
}

// GLAccount represents a chart-of-accounts row.
type GLAccount struct {
	GLAccountID   string          `db:"gl_account_id"`
	GLCode        string          `db:"gl_code"`
	Name          string          `db:"name"`
	AccountType   string          `db:"account_type"`
	Category      string          `db:"category"`
	Status        string          `db:"status"`
	ParentGLCode  string          `db:"parent_gl_code"`
	Level         int             `db:"level"`
	IsLeaf        bool            `db:"is_leaf"`
	CurrencyCode  string          `db:"currency_code"`
	DebitBalance  decimal.Decimal `db:"debit_balance"`
	CreditBalance decimal.Decimal `db:"credit_balance"`
	AuditFields
}
