package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
	"github.com/hazina-bank/core_ledger/internal/dto"
	"github.com/hazina-bank/core_ledger/internal/platform/metrics"
)

type loanService struct {
	BaseService
	engine      *postingEngine
	loanRepo    portsrepo.LoanRepository
	accountRepo portsrepo.AccountRepository
	ledgerRepo  portsrepo.LedgerRepository
	policy      domain.ProvisionPolicy
}

// NewLoanService creates the loan origination and servicing facade.
func NewLoanService(engine *postingEngine, loanRepo portsrepo.LoanRepository, accountRepo portsrepo.AccountRepository, ledgerRepo portsrepo.LedgerRepository) portssvc.LoanSvcFacade {
	return &loanService{
		engine:      engine,
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		policy:      domain.StandardProvisionPolicy,
	}
}

func newLoanNumber() string {
	return "LN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func (s *loanService) CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error) {
	principal := domain.NewMoney(req.Principal, req.CurrencyCode)
	if !principal.IsPositive() {
		return nil, fmt.Errorf("%w: loan principal %s", apperrors.ErrInvalidAmount, principal)
	}
	if req.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: negative interest rate", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	loan := domain.Loan{
		LoanID:                   uuid.NewString(),
		LoanNumber:               newLoanNumber(),
		CustomerID:               req.CustomerID,
		Principal:                principal,
		OutstandingPrincipal:     principal,
		AccruedInterest:          domain.ZeroMoney(req.CurrencyCode),
		InterestRate:             req.InterestRate,
		Status:                   domain.LoanApproved,
		ProvisionRate:            decimal.Zero,
		ProvisionAmount:          domain.ZeroMoney(req.CurrencyCode),
		LoanGLCode:               req.LoanGLCode,
		InterestReceivableGLCode: req.InterestReceivableGLCode,
		LastAccrualDate:          now,
		AuditFields:              domain.NewAuditFields(creatorUserID, now),
	}
	if err := s.loanRepo.SaveLoan(ctx, loan); err != nil {
		s.LogError(ctx, err, "Loan creation failed", "customer_id", req.CustomerID)
		return nil, err
	}
	s.LogInfo(ctx, "Loan created", "loan_number", loan.LoanNumber, "customer_id", req.CustomerID)
	return &loan, nil
}

func (s *loanService) GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	return s.loanRepo.FindLoanByID(ctx, loanID)
}

func (s *loanService) DisburseLoan(ctx context.Context, loanID string, req dto.DisburseLoanRequest, requestingUserID string) (*domain.Loan, error) {
	var disbursed *domain.Loan
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
		if err != nil {
			return fmt.Errorf("finding loan %s: %w", loanID, err)
		}
		account, err := s.accountRepo.FindAccountByID(ctx, req.DisbursementAccountID)
		if err != nil {
			return fmt.Errorf("finding disbursement account %s: %w", req.DisbursementAccountID, err)
		}
		if account.CurrencyCode() != loan.Principal.Currency.Code {
			return fmt.Errorf("%w: loan %s into %s account", apperrors.ErrCurrencyMismatch,
				loan.Principal.Currency.Code, account.CurrencyCode())
		}

		now := time.Now().UTC()
		if err := loan.Disburse(account.AccountID, requestingUserID, now); err != nil {
			return err
		}
		reference := fmt.Sprintf("DISB-%s", loan.LoanNumber)
		if err := account.Credit(loan.Principal); err != nil {
			return err
		}

		entry, err := s.engine.buildEntry(ctx, postingInput{
			Kind:         KindLoanDisbursement,
			SourceType:   sourceLoan,
			SourceID:     loan.LoanID,
			Reference:    reference,
			Description:  fmt.Sprintf("Disbursement of loan %s", loan.LoanNumber),
			CurrencyCode: loan.Principal.Currency.Code,
			Amounts:      map[amountRole]decimal.Decimal{amtPrimary: loan.Principal.Amount},
			GLCodes: map[glRole]string{
				roleLoan:     loan.LoanGLCode,
				roleCustomer: account.CustomerGLCode,
			},
			By: requestingUserID,
			At: now,
		})
		if err != nil {
			return err
		}

		posting := portsrepo.Posting{
			Entry:         entry,
			AccountDeltas: map[string]decimal.Decimal{account.AccountID: loan.Principal.Amount},
			Loan:          loan,
		}
		if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
			return err
		}
		metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
		disbursed = loan
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Loan disbursement failed", "loan_id", loanID)
		return nil, err
	}
	s.LogInfo(ctx, "Loan disbursed", "loan_number", disbursed.LoanNumber, "account_id", disbursed.DisbursementAccountID)
	return disbursed, nil
}

// RepayLoan debits the payment account and settles the loan through the
// interest-first waterfall, all in one commit.
func (s *loanService) RepayLoan(ctx context.Context, loanID string, req dto.RepayLoanRequest, requestingUserID string) (*dto.RepaymentResponse, error) {
	var resp *dto.RepaymentResponse
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
		if err != nil {
			return fmt.Errorf("finding loan %s: %w", loanID, err)
		}
		account, err := s.accountRepo.FindAccountByID(ctx, req.PaymentAccountID)
		if err != nil {
			return fmt.Errorf("finding payment account %s: %w", req.PaymentAccountID, err)
		}

		payment := domain.NewMoney(req.Amount, loan.Principal.Currency.Code)
		alloc, err := loan.AllocatePayment(payment)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		reference := req.Reference
		if reference == "" {
			reference = fmt.Sprintf("RPMT-%s-%s", loan.LoanNumber, now.Format("20060102150405"))
		}
		if err := account.Debit(payment); err != nil {
			return err
		}
		if err := loan.ApplyRepayment(alloc, requestingUserID, now); err != nil {
			return err
		}

		entry, err := s.engine.buildEntry(ctx, postingInput{
			Kind:         KindLoanRepayment,
			SourceType:   sourceLoan,
			SourceID:     loan.LoanID,
			Reference:    reference,
			Description:  fmt.Sprintf("Repayment of loan %s", loan.LoanNumber),
			CurrencyCode: payment.Currency.Code,
			Amounts: map[amountRole]decimal.Decimal{
				amtPrimary:   payment.Amount,
				amtInterest:  alloc.Interest.Amount,
				amtPrincipal: alloc.Principal.Amount,
			},
			GLCodes: map[glRole]string{
				roleCustomer: account.CustomerGLCode,
				roleLoan:     loan.LoanGLCode,
			},
			By: requestingUserID,
			At: now,
		})
		if err != nil {
			return err
		}

		posting := portsrepo.Posting{
			Entry:         entry,
			AccountDeltas: map[string]decimal.Decimal{account.AccountID: payment.Amount.Neg()},
			Loan:          loan,
		}
		if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
			return err
		}
		metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
		resp = &dto.RepaymentResponse{
			LoanNumber:         loan.LoanNumber,
			JournalNumber:      entry.JournalNumber,
			InterestPortion:    alloc.Interest.Amount,
			PrincipalPortion:   alloc.Principal.Amount,
			RemainingPrincipal: loan.OutstandingPrincipal.Amount,
			LoanStatus:         string(loan.Status),
			ProcessedAt:        now,
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Loan repayment failed", "loan_id", loanID)
		return nil, err
	}
	s.LogInfo(ctx, "Loan repayment posted", "loan_number", resp.LoanNumber, "journal_number", resp.JournalNumber)
	return resp, nil
}

// AccrueLoanInterest accrues daily interest and posts it to interest income.
// Returns nil when no interest accrued since the last accrual date.
func (s *loanService) AccrueLoanInterest(ctx context.Context, loanID string, asOf time.Time, requestingUserID string) (*dto.TransactionResponse, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("finding loan %s: %w", loanID, err)
	}
	accrued, err := loan.AccrueInterest(asOf, requestingUserID)
	if err != nil {
		return nil, err
	}
	if !accrued.IsPositive() {
		return nil, nil
	}

	entry, err := s.engine.buildEntry(ctx, postingInput{
		Kind:         KindLoanInterestAccrual,
		SourceType:   sourceLoan,
		SourceID:     loan.LoanID,
		Reference:    fmt.Sprintf("ACCR-%s-%s", loan.LoanNumber, asOf.Format("20060102")),
		Description:  fmt.Sprintf("Interest accrual on loan %s", loan.LoanNumber),
		CurrencyCode: loan.Principal.Currency.Code,
		Amounts:      map[amountRole]decimal.Decimal{amtPrimary: accrued.Amount},
		GLCodes:      map[glRole]string{roleInterestReceivable: loan.InterestReceivableGLCode},
		By:           requestingUserID,
		At:           asOf,
	})
	if err != nil {
		s.LogError(ctx, err, "Loan interest accrual failed", "loan_id", loanID)
		return nil, err
	}
	if err := s.ledgerRepo.CommitPosting(ctx, portsrepo.Posting{Entry: entry, Loan: loan}); err != nil {
		s.LogError(ctx, err, "Loan interest accrual commit failed", "loan_id", loanID)
		return nil, err
	}
	metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
	s.LogInfo(ctx, "Loan interest accrued", "loan_number", loan.LoanNumber, "amount", accrued.Amount.String())
	return transactionResponse(entry, nil), nil
}

// UpdateProvision regrades the loan from the collections-supplied days past
// due and posts only the provision delta. Returns nil when unchanged.
func (s *loanService) UpdateProvision(ctx context.Context, loanID string, daysPastDue int, requestingUserID string) (*dto.TransactionResponse, error) {
	if daysPastDue < 0 {
		return nil, fmt.Errorf("%w: negative days past due", apperrors.ErrValidation)
	}
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("finding loan %s: %w", loanID, err)
	}

	now := time.Now().UTC()
	loan.DaysPastDue = daysPastDue
	delta, err := loan.RecomputeProvision(s.policy, now, requestingUserID)
	if err != nil {
		return nil, err
	}
	if delta.IsZero() {
		// Grade unchanged, just persist the new DPD.
		if err := s.loanRepo.UpdateLoan(ctx, *loan); err != nil {
			return nil, err
		}
		return nil, nil
	}

	kind := KindProvisionIncrease
	amount := delta.Amount
	if delta.IsNegative() {
		kind = KindProvisionRelease
		amount = delta.Amount.Neg()
	}

	entry, err := s.engine.buildEntry(ctx, postingInput{
		Kind:         kind,
		SourceType:   sourceLoan,
		SourceID:     loan.LoanID,
		Reference:    fmt.Sprintf("PROV-%s-%s", loan.LoanNumber, now.Format("20060102")),
		Description:  fmt.Sprintf("Provision adjustment on loan %s at %d DPD", loan.LoanNumber, daysPastDue),
		CurrencyCode: loan.Principal.Currency.Code,
		Amounts:      map[amountRole]decimal.Decimal{amtPrimary: amount},
		By:           requestingUserID,
		At:           now,
	})
	if err != nil {
		s.LogError(ctx, err, "Provision posting failed", "loan_id", loanID)
		return nil, err
	}
	if err := s.ledgerRepo.CommitPosting(ctx, portsrepo.Posting{Entry: entry, Loan: loan}); err != nil {
		s.LogError(ctx, err, "Provision commit failed", "loan_id", loanID)
		return nil, err
	}
	metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
	s.LogInfo(ctx, "Provision adjusted", "loan_number", loan.LoanNumber, "delta", delta.Amount.String())
	return transactionResponse(entry, nil), nil
}
