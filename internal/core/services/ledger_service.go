package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
	"github.com/hazina-bank/core_ledger/internal/platform/metrics"
)

type ledgerService struct {
	BaseService
	journalRepo portsrepo.JournalRepository
	ledgerRepo  portsrepo.LedgerRepository
}

// NewLedgerService creates the journal read and reversal facade.
func NewLedgerService(journalRepo portsrepo.JournalRepository, ledgerRepo portsrepo.LedgerRepository) portssvc.LedgerSvcFacade {
	return &ledgerService{journalRepo: journalRepo, ledgerRepo: ledgerRepo}
}

func (s *ledgerService) GetJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	return s.journalRepo.FindJournalByID(ctx, journalID)
}

func (s *ledgerService) ListJournalsBySource(ctx context.Context, sourceType, sourceID string) ([]domain.JournalEntry, error) {
	return s.journalRepo.ListJournalsBySource(ctx, sourceType, sourceID)
}

// ReverseJournal posts a reversal entry with swapped debit/credit sides and
// negates the original's customer-account balance deltas in the same commit.
// The original entry transitions to Reversed; it is never edited.
func (s *ledgerService) ReverseJournal(ctx context.Context, journalID string, requestingUserID string) (*domain.JournalEntry, error) {
	var reversal *domain.JournalEntry
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		original, err := s.journalRepo.FindJournalByID(ctx, journalID)
		if err != nil {
			return fmt.Errorf("finding journal %s: %w", journalID, err)
		}

		now := time.Now().UTC()
		number, err := s.journalRepo.NextJournalNumber(ctx, domain.JournalReversal)
		if err != nil {
			return fmt.Errorf("issuing reversal journal number: %w", err)
		}
		rev, err := original.BuildReversal(uuid.NewString(), number, requestingUserID, now)
		if err != nil {
			return err
		}
		if err := rev.Post(requestingUserID, now); err != nil {
			return err
		}
		if err := original.MarkReversed(rev.JournalID, requestingUserID, now); err != nil {
			return err
		}

		deltas, err := s.journalRepo.FindAccountDeltas(ctx, original.JournalID)
		if err != nil {
			return fmt.Errorf("finding account deltas for %s: %w", original.JournalID, err)
		}
		posting := portsrepo.Posting{
			Entry:           rev,
			ReversedJournal: original,
		}
		if len(deltas) > 0 {
			posting.AccountDeltas = negateDeltas(deltas)
		}
		if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
			return err
		}
		metrics.JournalsPosted.WithLabelValues(string(rev.Type)).Inc()
		reversal = rev
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Journal reversal failed", "journal_id", journalID)
		return nil, err
	}
	s.LogInfo(ctx, "Journal reversed", "journal_id", journalID, "reversal_journal_number", reversal.JournalNumber)
	return reversal, nil
}

func negateDeltas(deltas map[string]decimal.Decimal) map[string]decimal.Decimal {
	negated := make(map[string]decimal.Decimal, len(deltas))
	for accountID, delta := range deltas {
		negated[accountID] = delta.Neg()
	}
	return negated
}
