package services

import (
	"context"
	"time"

	"github.com/hazina-bank/core_ledger/internal/core/domain"
	"github.com/hazina-bank/core_ledger/internal/dto"
)

// LoanSvcFacade defines loan origination and servicing operations.
type LoanSvcFacade interface {
	// CreateLoan registers an approved loan ready for disbursement.
	CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error)

	// GetLoanByID retrieves a loan.
	GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// DisburseLoan releases the principal into a customer account.
	DisburseLoan(ctx context.Context, loanID string, req dto.DisburseLoanRequest, requestingUserID string) (*domain.Loan, error)

	// RepayLoan applies a payment through the interest-first waterfall.
	RepayLoan(ctx context.Context, loanID string, req dto.RepayLoanRequest, requestingUserID string) (*dto.RepaymentResponse, error)

	// AccrueLoanInterest accrues daily interest up to asOf and posts it to
	// interest income. Returns nil when no interest accrued.
	AccrueLoanInterest(ctx context.Context, loanID string, asOf time.Time, requestingUserID string) (*dto.TransactionResponse, error)

	// UpdateProvision recomputes the loss provision from the given
	// days-past-due grade and posts the delta. Returns nil when the
	// provision is unchanged.
	UpdateProvision(ctx context.Context, loanID string, daysPastDue int, requestingUserID string) (*dto.TransactionResponse, error)
}
