package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
	"github.com/hazina-bank/core_ledger/internal/dto"
	"github.com/hazina-bank/core_ledger/internal/platform/metrics"
)

type transferService struct {
	BaseService
	engine      *postingEngine
	accountRepo portsrepo.AccountRepository
	ledgerRepo  portsrepo.LedgerRepository
}

// NewTransferService creates the account-to-account transfer orchestrator.
func NewTransferService(engine *postingEngine, accountRepo portsrepo.AccountRepository, ledgerRepo portsrepo.LedgerRepository) portssvc.TransferSvcFacade {
	return &transferService{engine: engine, accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

// Transfer debits the source and credits the destination in one balanced
// two-line entry. Both balance changes and the entry commit atomically.
func (s *transferService) Transfer(ctx context.Context, req dto.TransferRequest, requestingUserID string) (*dto.TransactionResponse, error) {
	if req.FromAccountID == req.ToAccountID {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrSameAccountTransfer, req.FromAccountID)
	}

	var resp *dto.TransactionResponse
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		from, err := s.accountRepo.FindAccountByID(ctx, req.FromAccountID)
		if err != nil {
			return fmt.Errorf("finding source account %s: %w", req.FromAccountID, err)
		}
		to, err := s.accountRepo.FindAccountByID(ctx, req.ToAccountID)
		if err != nil {
			return fmt.Errorf("finding destination account %s: %w", req.ToAccountID, err)
		}
		if from.CurrencyCode() != to.CurrencyCode() {
			return fmt.Errorf("%w: %s to %s", apperrors.ErrCurrencyMismatch, from.CurrencyCode(), to.CurrencyCode())
		}

		amount := domain.NewMoney(req.Amount, req.CurrencyCode)
		if err := from.Debit(amount); err != nil {
			return err
		}
		if err := to.Credit(amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		entry, err := s.engine.buildEntry(ctx, postingInput{
			Kind:         KindAccountTransfer,
			SourceType:   sourceTransfer,
			SourceID:     from.AccountID,
			Reference:    req.Reference,
			Description:  req.Description,
			CurrencyCode: req.CurrencyCode,
			Amounts:      map[amountRole]decimal.Decimal{amtPrimary: amount.Amount},
			GLCodes: map[glRole]string{
				roleCustomer:     from.CustomerGLCode,
				roleCustomerDest: to.CustomerGLCode,
			},
			By: requestingUserID,
			At: now,
		})
		if err != nil {
			return err
		}

		posting := portsrepo.Posting{
			Entry: entry,
			AccountDeltas: map[string]decimal.Decimal{
				from.AccountID: amount.Amount.Neg(),
				to.AccountID:   amount.Amount,
			},
		}
		if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
			return err
		}
		metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
		resp = transactionResponse(entry, from)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Transfer failed", "from_account_id", req.FromAccountID, "to_account_id", req.ToAccountID)
		return nil, err
	}
	s.LogInfo(ctx, "Transfer posted", "from_account_id", req.FromAccountID, "to_account_id", req.ToAccountID, "journal_number", resp.JournalNumber)
	return resp, nil
}
