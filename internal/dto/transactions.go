package dto

import (
	"time"

	"github.com/hazina-bank/core_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DepositRequest credits a customer account over the counter.
type DepositRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required,gt=0"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Reference    string          `json:"reference" binding:"required"`
	Description  string          `json:"description"`
}

// WithdrawRequest debits a customer account over the counter.
type WithdrawRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required,gt=0"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Reference    string          `json:"reference" binding:"required"`
	Description  string          `json:"description"`
}

// FeeRequest collects a fee from a customer account.
type FeeRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required,gt=0"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	FeeType      string          `json:"feeType" binding:"required"`
	Reference    string          `json:"reference" binding:"required"`
}

// TransferRequest moves funds between two accounts of the same currency.
type TransferRequest struct {
	FromAccountID string          `json:"fromAccountID" binding:"required"`
	ToAccountID   string          `json:"toAccountID" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required,gt=0"`
	CurrencyCode  string          `json:"currencyCode" binding:"required,len=3"`
	Reference     string          `json:"reference" binding:"required"`
	Description   string          `json:"description"`
}

// DepositInterestRequest accrues one day of interest owed on a deposit
// account at the given annual percentage rate.
type DepositInterestRequest struct {
	AccountID  string          `json:"accountID" binding:"required"`
	AnnualRate decimal.Decimal `json:"annualRate" binding:"required,gt=0"`
}

// TransactionResponse reports the outcome of a posted monetary operation.
type TransactionResponse struct {
	JournalID     string          `json:"journalID"`
	JournalNumber string          `json:"journalNumber"`
	AccountID     string          `json:"accountID"`
	NewBalance    decimal.Decimal `json:"newBalance"`
	CurrencyCode  string          `json:"currencyCode"`
	Reference     string          `json:"reference"`
	PostedAt      time.Time       `json:"postedAt"`
}

// JournalLineResponse is one line of a journal entry.
type JournalLineResponse struct {
	LineNo      int             `json:"lineNo"`
	GLCode      string          `json:"glCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// JournalResponse is a full journal entry with its lines.
type JournalResponse struct {
	JournalID     string                `json:"journalID"`
	JournalNumber string                `json:"journalNumber"`
	EntryDate     time.Time             `json:"entryDate"`
	ValueDate     time.Time             `json:"valueDate"`
	Type          string                `json:"type"`
	Status        string                `json:"status"`
	SourceType    string                `json:"sourceType"`
	SourceID      string                `json:"sourceID"`
	Reference     string                `json:"reference"`
	CurrencyCode  string                `json:"currencyCode"`
	Description   string                `json:"description"`
	TotalDebit    decimal.Decimal       `json:"totalDebit"`
	TotalCredit   decimal.Decimal       `json:"totalCredit"`
	Lines         []JournalLineResponse `json:"lines"`
}

// ToJournalResponse maps a domain journal entry to its response shape.
func ToJournalResponse(j *domain.JournalEntry) JournalResponse {
	lines := make([]JournalLineResponse, len(j.Lines))
	for i, l := range j.Lines {
		lines[i] = JournalLineResponse{
			LineNo:      l.LineNo,
			GLCode:      l.GLCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return JournalResponse{
		JournalID:     j.JournalID,
		JournalNumber: j.JournalNumber,
		EntryDate:     j.EntryDate,
		ValueDate:     j.ValueDate,
		Type:          string(j.Type),
		Status:        string(j.Status),
		SourceType:    j.SourceType,
		SourceID:      j.SourceID,
		Reference:     j.Reference,
		CurrencyCode:  j.CurrencyCode,
		Description:   j.Description,
		TotalDebit:    j.TotalDebit(),
		TotalCredit:   j.TotalCredit(),
		Lines:         lines,
	}
}
