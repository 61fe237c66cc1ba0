// Package repositories defines the narrow persistence ports the posting
// engine consumes. The engine never queries beyond code lookup and
// single-aggregate fetch/update; everything wider belongs to reporting,
// which is out of scope here.
package repositories

import (
	"context"

	"github.com/hazina-bank/core_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Posting bundles one accounting event: the balanced journal entry, the
// signed balance deltas of every touched customer account, and optional
// aggregate snapshots that must persist in the same transaction. The
// implementation commits everything as one atomic unit, locking account rows
// and applying GL balance updates from the entry lines.
type Posting struct {
	Entry *domain.JournalEntry

	// SupplementalEntries are additional GL-only entries (interchange fees
	// and income) committed in the same transaction as Entry. They never
	// carry account deltas.
	SupplementalEntries []*domain.JournalEntry

	// AccountDeltas maps accountID to the signed balance change to apply.
	// Deltas are applied after row locking, where the overdraft precondition
	// is re-verified against the locked balance.
	AccountDeltas map[string]decimal.Decimal

	// Optional aggregates persisted within the same transaction.
	Loan          *domain.Loan
	Card          *domain.Card
	Authorization *domain.Authorization

	// ReversedJournal, when set, is the original entry to mark Reversed in
	// the same commit as the reversal entry.
	ReversedJournal *domain.JournalEntry
}

// LedgerRepository is the unit-of-work boundary: CommitPosting persists the
// posting atomically or not at all. Concurrency conflicts surface as
// apperrors.ErrConcurrencyConflict and may be retried once by the caller.
type LedgerRepository interface {
	CommitPosting(ctx context.Context, p Posting) error
}

// AccountRepository provides fetch/update for customer accounts.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// GLAccountRepository provides chart-of-accounts lookups by code.
type GLAccountRepository interface {
	SaveGLAccount(ctx context.Context, account domain.GLAccount) error
	FindGLAccountByCode(ctx context.Context, glCode string) (*domain.GLAccount, error)
	// FindGLAccountsByCodes returns all matching accounts keyed by code.
	// Missing codes are simply absent from the map.
	FindGLAccountsByCodes(ctx context.Context, glCodes []string) (map[string]domain.GLAccount, error)
	ListGLAccounts(ctx context.Context) ([]domain.GLAccount, error)
}

// JournalRepository reads journal entries and issues journal numbers.
type JournalRepository interface {
	FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error)
	ListJournalsBySource(ctx context.Context, sourceType, sourceID string) ([]domain.JournalEntry, error)
	// NextJournalNumber returns a unique, monotonically increasing number
	// scoped by journal type. Implementations must be safe under concurrent
	// callers: an atomic increment or database sequence, never
	// read-max-then-add-one.
	NextJournalNumber(ctx context.Context, jType domain.JournalType) (string, error)
	// FindAccountDeltas returns the signed customer-account balance changes
	// recorded when the journal committed, keyed by accountID. Reversals
	// negate these to undo the balance effect together with the GL effect.
	FindAccountDeltas(ctx context.Context, journalID string) (map[string]decimal.Decimal, error)
}

// LoanRepository provides fetch/update for loans.
type LoanRepository interface {
	SaveLoan(ctx context.Context, loan domain.Loan) error
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)
	UpdateLoan(ctx context.Context, loan domain.Loan) error
}

// CardRepository provides fetch/update for cards.
type CardRepository interface {
	SaveCard(ctx context.Context, card domain.Card) error
	FindCardByNumber(ctx context.Context, cardNumber string) (*domain.Card, error)
	UpdateCard(ctx context.Context, card domain.Card) error
}

// AuthorizationRepository persists authorization attempts. Declines are
// always recorded even though they never touch the ledger.
type AuthorizationRepository interface {
	SaveAuthorization(ctx context.Context, auth domain.Authorization) error
	ListAuthorizationsByCard(ctx context.Context, cardID string, limit int) ([]domain.Authorization, error)
}
