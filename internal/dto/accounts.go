package dto

import (
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest opens a new customer account.
type CreateAccountRequest struct {
	AccountNumber  string          `json:"accountNumber" binding:"required"`
	CustomerID     string          `json:"customerID" binding:"required"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,len=3"`
	CustomerGLCode string          `json:"customerGLCode" binding:"required"`
	OverdraftLimit decimal.Decimal `json:"overdraftLimit"`
}

// AccountResponse is the external view of a customer account.
type AccountResponse struct {
	AccountID      string          `json:"accountID"`
	AccountNumber  string          `json:"accountNumber"`
	CustomerID     string          `json:"customerID"`
	Balance        decimal.Decimal `json:"balance"`
	OverdraftLimit decimal.Decimal `json:"overdraftLimit"`
	CurrencyCode   string          `json:"currencyCode"`
	Status         string          `json:"status"`
	CustomerGLCode string          `json:"customerGLCode"`
}

// ToAccountResponse maps a domain account to its response shape.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      a.AccountID,
		AccountNumber:  a.AccountNumber,
		CustomerID:     a.CustomerID,
		Balance:        a.Balance.Amount,
		OverdraftLimit: a.OverdraftLimit.Amount,
		CurrencyCode:   a.CurrencyCode(),
		Status:         string(a.Status),
		CustomerGLCode: a.CustomerGLCode,
	}
}

// CreateGLAccountRequest registers a chart-of-accounts node.
type CreateGLAccountRequest struct {
	GLCode       string `json:"glCode" binding:"required,numeric,len=4"`
	Name         string `json:"name" binding:"required"`
	Category     string `json:"category" binding:"required"`
	ParentGLCode string `json:"parentGLCode"`
	Level        int    `json:"level" binding:"required,min=1,max=3"`
	IsLeaf       bool   `json:"isLeaf"`
	CurrencyCode string `json:"currencyCode" binding:"required,len=3"`
}

// GLAccountResponse is the external view of a GL account.
type GLAccountResponse struct {
	GLAccountID   string          `json:"glAccountID"`
	GLCode        string          `json:"glCode"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Status        string          `json:"status"`
	ParentGLCode  string          `json:"parentGLCode,omitempty"`
	Level         int             `json:"level"`
	IsLeaf        bool            `json:"isLeaf"`
	CurrencyCode  string          `json:"currencyCode"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
	NetBalance    decimal.Decimal `json:"netBalance"`
}

// ToGLAccountResponse maps a domain GL account to its response shape.
func ToGLAccountResponse(g *domain.GLAccount) GLAccountResponse {
	return GLAccountResponse{
		GLAccountID:   g.GLAccountID,
		GLCode:        g.GLCode,
		Name:          g.Name,
		Type:          string(g.Type),
		Category:      g.Category,
		Status:        string(g.Status),
		ParentGLCode:  g.ParentGLCode,
		Level:         g.Level,
		IsLeaf:        g.IsLeaf,
		CurrencyCode:  g.CurrencyCode,
		DebitBalance:  g.DebitBalance,
		CreditBalance: g.CreditBalance,
		NetBalance:    g.NetBalance(),
	}
}
