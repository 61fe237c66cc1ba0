package services

import (
	"context"

	"github.com/hazina-bank/core_ledger/internal/core/domain"
)

// LedgerReaderSvc defines read operations for posted journal entries
type LedgerReaderSvc interface {
	// GetJournalByID retrieves a journal entry with its lines.
	GetJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)

	// ListJournalsBySource retrieves the journal trail of an originating
	// aggregate, e.g. all entries a loan produced.
	ListJournalsBySource(ctx context.Context, sourceType, sourceID string) ([]domain.JournalEntry, error)
}

// LedgerWriterSvc defines correcting operations on posted journal entries
type LedgerWriterSvc interface {
	// ReverseJournal posts a reversal entry against a posted journal and
	// undoes its customer-account balance effect in the same commit.
	ReverseJournal(ctx context.Context, journalID string, requestingUserID string) (*domain.JournalEntry, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
