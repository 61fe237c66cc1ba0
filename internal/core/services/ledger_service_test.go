package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
	"github.com/hazina-bank/core_ledger/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	env          *testEnv
	service      portssvc.LedgerSvcFacade
	transactions portssvc.TransactionSvcFacade
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.env = newTestEnv()
	s.service = NewLedgerService(s.env.journals, s.env.ledger)
	s.transactions = NewTransactionService(s.env.engine, s.env.accounts, s.env.ledger)
}

func (s *LedgerServiceTestSuite) postDeposit(amount string) *dto.TransactionResponse {
	s.env.addAccount("acc-1", testCustomerGL, "100", "0")
	resp, err := s.transactions.Deposit(context.Background(), dto.DepositRequest{
		AccountID:    "acc-1",
		Amount:       dec(amount),
		CurrencyCode: testCurrency,
		Reference:    "DEP-1",
	}, "teller-1")
	s.Require().NoError(err)
	return resp
}

func (s *LedgerServiceTestSuite) TestGetJournalByID() {
	posted := s.postDeposit("50")

	entry, err := s.service.GetJournalByID(context.Background(), posted.JournalID)
	s.Require().NoError(err)
	s.Equal(posted.JournalNumber, entry.JournalNumber)
	s.Len(entry.Lines, 2)

	_, err = s.service.GetJournalByID(context.Background(), "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestListJournalsBySource() {
	s.postDeposit("50")

	entries, err := s.service.ListJournalsBySource(context.Background(), "AccountTransaction", "acc-1")
	s.Require().NoError(err)
	s.Len(entries, 1)

	entries, err = s.service.ListJournalsBySource(context.Background(), "AccountTransaction", "other")
	s.Require().NoError(err)
	s.Empty(entries)
}

// Reversal posts a mirrored entry and undoes the account balance effect in
// the same commit; the original flips to Reversed and is never edited.
func (s *LedgerServiceTestSuite) TestReverseJournal() {
	posted := s.postDeposit("50")
	s.True(s.env.accounts.balance("acc-1").Equal(dec("150")))

	rev, err := s.service.ReverseJournal(context.Background(), posted.JournalID, "supervisor-1")
	s.Require().NoError(err)

	s.Equal(domain.JournalReversal, rev.Type)
	s.Equal(domain.JournalPosted, rev.Status)
	s.True(strings.HasPrefix(rev.JournalNumber, "REV-"))
	s.Equal(posted.JournalID, rev.OriginalJournalID)
	s.True(rev.IsBalanced())

	// Sides swapped against the same GL codes.
	s.Require().Len(rev.Lines, 2)
	s.Equal(s.env.cfg.Cash, rev.Lines[0].GLCode)
	s.True(rev.Lines[0].Credit.Equal(dec("50")))
	s.Equal(testCustomerGL, rev.Lines[1].GLCode)
	s.True(rev.Lines[1].Debit.Equal(dec("50")))

	// Balance restored through the negated deltas.
	s.True(s.env.accounts.balance("acc-1").Equal(dec("100")))
	posting := s.env.ledger.lastCommit()
	s.True(posting.AccountDeltas["acc-1"].Equal(dec("-50")))

	original, err := s.service.GetJournalByID(context.Background(), posted.JournalID)
	s.Require().NoError(err)
	s.Equal(domain.JournalReversed, original.Status)
	s.Equal(rev.JournalID, original.ReversalJournalID)
}

func (s *LedgerServiceTestSuite) TestReverseJournal_OnlyOnce() {
	posted := s.postDeposit("50")

	_, err := s.service.ReverseJournal(context.Background(), posted.JournalID, "supervisor-1")
	s.Require().NoError(err)

	_, err = s.service.ReverseJournal(context.Background(), posted.JournalID, "supervisor-1")
	s.ErrorIs(err, apperrors.ErrValidation)
	s.True(s.env.accounts.balance("acc-1").Equal(dec("100")), "balance must not move twice")
}

func (s *LedgerServiceTestSuite) TestReverseJournal_ConflictRetried() {
	posted := s.postDeposit("50")
	s.env.ledger.failNext(apperrors.ErrConcurrencyConflict)

	rev, err := s.service.ReverseJournal(context.Background(), posted.JournalID, "supervisor-1")
	s.Require().NoError(err)
	s.Equal(domain.JournalPosted, rev.Status)
	s.True(s.env.accounts.balance("acc-1").Equal(dec("100")))
}

func (s *LedgerServiceTestSuite) TestReverseJournal_NotFound() {
	_, err := s.service.ReverseJournal(context.Background(), "missing", "supervisor-1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
