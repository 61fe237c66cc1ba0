package dto

import (
	"time"

	"github.com/hazina-bank/core_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLoanRequest registers an approved loan ready for disbursement.
type CreateLoanRequest struct {
	CustomerID               string          `json:"customerID" binding:"required"`
	Principal                decimal.Decimal `json:"principal" binding:"required,gt=0"`
	CurrencyCode             string          `json:"currencyCode" binding:"required,len=3"`
	InterestRate             decimal.Decimal `json:"interestRate" binding:"required"` // annual %
	LoanGLCode               string          `json:"loanGLCode" binding:"required"`
	InterestReceivableGLCode string          `json:"interestReceivableGLCode" binding:"required"`
}

// DisburseLoanRequest releases loan funds into a customer account.
type DisburseLoanRequest struct {
	DisbursementAccountID string `json:"disbursementAccountID" binding:"required"`
}

// RepayLoanRequest applies a payment from a customer account to a loan.
type RepayLoanRequest struct {
	PaymentAccountID string          `json:"paymentAccountID" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Reference        string          `json:"reference"`
}

// AccrueLoanInterestRequest accrues interest on a loan up to the given date.
// AsOf defaults to now when omitted.
type AccrueLoanInterestRequest struct {
	AsOf time.Time `json:"asOf"`
}

// UpdateProvisionRequest regrades a loan's loss provision from its current
// days past due.
type UpdateProvisionRequest struct {
	DaysPastDue int `json:"daysPastDue" binding:"min=0"`
}

// LoanResponse is the external view of a loan.
type LoanResponse struct {
	LoanID               string          `json:"loanID"`
	LoanNumber           string          `json:"loanNumber"`
	CustomerID           string          `json:"customerID"`
	Principal            decimal.Decimal `json:"principal"`
	OutstandingPrincipal decimal.Decimal `json:"outstandingPrincipal"`
	AccruedInterest      decimal.Decimal `json:"accruedInterest"`
	InterestRate         decimal.Decimal `json:"interestRate"`
	CurrencyCode         string          `json:"currencyCode"`
	Status               string          `json:"status"`
	DaysPastDue          int             `json:"daysPastDue"`
	ProvisionRate        decimal.Decimal `json:"provisionRate"`
	ProvisionAmount      decimal.Decimal `json:"provisionAmount"`
}

// ToLoanResponse maps a domain loan to its response shape.
func ToLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:               l.LoanID,
		LoanNumber:           l.LoanNumber,
		CustomerID:           l.CustomerID,
		Principal:            l.Principal.Amount,
		OutstandingPrincipal: l.OutstandingPrincipal.Amount,
		AccruedInterest:      l.AccruedInterest.Amount,
		InterestRate:         l.InterestRate,
		CurrencyCode:         l.Principal.Currency.Code,
		Status:               string(l.Status),
		DaysPastDue:          l.DaysPastDue,
		ProvisionRate:        l.ProvisionRate,
		ProvisionAmount:      l.ProvisionAmount.Amount,
	}
}

// RepaymentResponse reports a processed repayment and its allocation.
type RepaymentResponse struct {
	LoanNumber           string          `json:"loanNumber"`
	JournalNumber        string          `json:"journalNumber"`
	InterestPortion      decimal.Decimal `json:"interestPortion"`
	PrincipalPortion     decimal.Decimal `json:"principalPortion"`
	RemainingPrincipal   decimal.Decimal `json:"remainingPrincipal"`
	LoanStatus           string          `json:"loanStatus"`
	ProcessedAt          time.Time       `json:"processedAt"`
}
