package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
	"github.com/hazina-bank/core_ledger/internal/dto"
	"github.com/hazina-bank/core_ledger/internal/platform/metrics"
)

// Source types stamped on journal entries for traceability.
const (
	sourceAccountTransaction = "AccountTransaction"
	sourceTransfer           = "Transfer"
	sourceLoan               = "Loan"
	sourceCard               = "Card"
	sourceCardAuthorization  = "CardAuthorization"
	sourceJournal            = "Journal"
)

type transactionService struct {
	BaseService
	engine      *postingEngine
	accountRepo portsrepo.AccountRepository
	ledgerRepo  portsrepo.LedgerRepository
}

// NewTransactionService creates the over-the-counter transaction service.
func NewTransactionService(engine *postingEngine, accountRepo portsrepo.AccountRepository, ledgerRepo portsrepo.LedgerRepository) portssvc.TransactionSvcFacade {
	return &transactionService{engine: engine, accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

func transactionResponse(entry *domain.JournalEntry, account *domain.Account) *dto.TransactionResponse {
	postedAt := entry.EntryDate
	if entry.PostedAt != nil {
		postedAt = *entry.PostedAt
	}
	resp := &dto.TransactionResponse{
		JournalID:     entry.JournalID,
		JournalNumber: entry.JournalNumber,
		CurrencyCode:  entry.CurrencyCode,
		Reference:     entry.Reference,
		PostedAt:      postedAt,
	}
	if account != nil {
		resp.AccountID = account.AccountID
		resp.NewBalance = account.Balance.Amount
	}
	return resp
}

func (s *transactionService) Deposit(ctx context.Context, req dto.DepositRequest, requestingUserID string) (*dto.TransactionResponse, error) {
	var resp *dto.TransactionResponse
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
		if err != nil {
			return fmt.Errorf("finding account %s: %w", req.AccountID, err)
		}
		amount := domain.NewMoney(req.Amount, req.CurrencyCode)
		if err := account.Deposit(amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		entry, err := s.engine.buildEntry(ctx, postingInput{
			Kind:         KindCashDeposit,
			SourceType:   sourceAccountTransaction,
			SourceID:     account.AccountID,
			Reference:    req.Reference,
			Description:  req.Description,
			CurrencyCode: req.CurrencyCode,
			Amounts:      map[amountRole]decimal.Decimal{amtPrimary: amount.Amount},
			GLCodes:      map[glRole]string{roleCustomer: account.CustomerGLCode},
			By:           requestingUserID,
			At:           now,
		})
		if err != nil {
			return err
		}

		posting := portsrepo.Posting{
			Entry:         entry,
			AccountDeltas: map[string]decimal.Decimal{account.AccountID: amount.Amount},
		}
		if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
			return err
		}
		metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
		resp = transactionResponse(entry, account)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Deposit failed", "account_id", req.AccountID)
		return nil, err
	}
	s.LogInfo(ctx, "Deposit posted", "account_id", req.AccountID, "journal_number", resp.JournalNumber)
	return resp, nil
}

func (s *transactionService) Withdraw(ctx context.Context, req dto.WithdrawRequest, requestingUserID string) (*dto.TransactionResponse, error) {
	var resp *dto.TransactionResponse
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
		if err != nil {
			return fmt.Errorf("finding account %s: %w", req.AccountID, err)
		}
		amount := domain.NewMoney(req.Amount, req.CurrencyCode)
		if err := account.Withdraw(amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		entry, err := s.engine.buildEntry(ctx, postingInput{
			Kind:         KindCashWithdrawal,
			SourceType:   sourceAccountTransaction,
			SourceID:     account.AccountID,
			Reference:    req.Reference,
			Description:  req.Description,
			CurrencyCode: req.CurrencyCode,
			Amounts:      map[amountRole]decimal.Decimal{amtPrimary: amount.Amount},
			GLCodes:      map[glRole]string{roleCustomer: account.CustomerGLCode},
			By:           requestingUserID,
			At:           now,
		})
		if err != nil {
			return err
		}

		posting := portsrepo.Posting{
			Entry:         entry,
			AccountDeltas: map[string]decimal.Decimal{account.AccountID: amount.Amount.Neg()},
		}
		if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
			return err
		}
		metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
		resp = transactionResponse(entry, account)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Withdrawal failed", "account_id", req.AccountID)
		return nil, err
	}
	s.LogInfo(ctx, "Withdrawal posted", "account_id", req.AccountID, "journal_number", resp.JournalNumber)
	return resp, nil
}

func (s *transactionService) CollectFee(ctx context.Context, req dto.FeeRequest, requestingUserID string) (*dto.TransactionResponse, error) {
	var resp *dto.TransactionResponse
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
		if err != nil {
			return fmt.Errorf("finding account %s: %w", req.AccountID, err)
		}
		amount := domain.NewMoney(req.Amount, req.CurrencyCode)
		description := fmt.Sprintf("%s fee", req.FeeType)
		if err := account.Debit(amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		entry, err := s.engine.buildEntry(ctx, postingInput{
			Kind:         KindFeeCollection,
			SourceType:   sourceAccountTransaction,
			SourceID:     account.AccountID,
			Reference:    req.Reference,
			Description:  description,
			CurrencyCode: req.CurrencyCode,
			Amounts:      map[amountRole]decimal.Decimal{amtPrimary: amount.Amount},
			GLCodes:      map[glRole]string{roleCustomer: account.CustomerGLCode},
			By:           requestingUserID,
			At:           now,
		})
		if err != nil {
			return err
		}

		posting := portsrepo.Posting{
			Entry:         entry,
			AccountDeltas: map[string]decimal.Decimal{account.AccountID: amount.Amount.Neg()},
		}
		if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
			return err
		}
		metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
		resp = transactionResponse(entry, account)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Fee collection failed", "account_id", req.AccountID, "fee_type", req.FeeType)
		return nil, err
	}
	s.LogInfo(ctx, "Fee posted", "account_id", req.AccountID, "journal_number", resp.JournalNumber)
	return resp, nil
}

// AccrueDepositInterest posts one day of interest on the current balance at
// the given annual rate. A zero or negative computed amount posts nothing.
func (s *transactionService) AccrueDepositInterest(ctx context.Context, accountID string, annualRate decimal.Decimal, requestingUserID string) (*dto.TransactionResponse, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("finding account %s: %w", accountID, err)
	}
	dailyRate := annualRate.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(365))
	interest := account.Balance.MulRate(dailyRate)
	if !interest.IsPositive() {
		return nil, nil
	}

	now := time.Now().UTC()
	entry, err := s.engine.buildEntry(ctx, postingInput{
		Kind:         KindDepositInterestAccrual,
		SourceType:   sourceAccountTransaction,
		SourceID:     account.AccountID,
		Reference:    fmt.Sprintf("INT-%s-%s", account.AccountNumber, now.Format("20060102")),
		Description:  "Daily deposit interest accrual",
		CurrencyCode: account.CurrencyCode(),
		Amounts:      map[amountRole]decimal.Decimal{amtPrimary: interest.Amount},
		By:           requestingUserID,
		At:           now,
	})
	if err != nil {
		s.LogError(ctx, err, "Deposit interest accrual failed", "account_id", accountID)
		return nil, err
	}
	if err := s.ledgerRepo.CommitPosting(ctx, portsrepo.Posting{Entry: entry}); err != nil {
		s.LogError(ctx, err, "Deposit interest accrual commit failed", "account_id", accountID)
		return nil, err
	}
	metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
	s.LogInfo(ctx, "Deposit interest accrued", "account_id", accountID, "amount", interest.Amount.String())
	return transactionResponse(entry, account), nil
}
