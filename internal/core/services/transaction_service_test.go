package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
	"github.com/hazina-bank/core_ledger/internal/dto"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	env     *testEnv
	service portssvc.TransactionSvcFacade
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.env = newTestEnv()
	s.service = NewTransactionService(s.env.engine, s.env.accounts, s.env.ledger)
}

func (s *TransactionServiceTestSuite) TestDeposit_Success() {
	s.env.addAccount("acc-1", testCustomerGL, "100", "0")

	resp, err := s.service.Deposit(context.Background(), dto.DepositRequest{
		AccountID:    "acc-1",
		Amount:       dec("50"),
		CurrencyCode: testCurrency,
		Reference:    "DEP-1",
	}, "teller-1")
	s.Require().NoError(err)

	s.True(resp.NewBalance.Equal(dec("150")), "response balance %s", resp.NewBalance)
	s.NotEmpty(resp.JournalNumber)
	s.True(s.env.accounts.balance("acc-1").Equal(dec("150")))

	s.Require().Len(s.env.ledger.commits(), 1)
	posting := s.env.ledger.lastCommit()
	s.Require().Len(posting.Entry.Lines, 2)
	s.Equal(s.env.cfg.Cash, posting.Entry.Lines[0].GLCode)
	s.Equal(testCustomerGL, posting.Entry.Lines[1].GLCode)
	s.True(posting.AccountDeltas["acc-1"].Equal(dec("50")))
}

func (s *TransactionServiceTestSuite) TestWithdraw_Success() {
	s.env.addAccount("acc-1", testCustomerGL, "100", "0")

	resp, err := s.service.Withdraw(context.Background(), dto.WithdrawRequest{
		AccountID:    "acc-1",
		Amount:       dec("40"),
		CurrencyCode: testCurrency,
		Reference:    "WDR-1",
	}, "teller-1")
	s.Require().NoError(err)

	s.True(resp.NewBalance.Equal(dec("60")))
	s.True(s.env.ledger.lastCommit().AccountDeltas["acc-1"].Equal(dec("-40")))
}

func (s *TransactionServiceTestSuite) TestWithdraw_InsufficientFunds() {
	s.env.addAccount("acc-1", testCustomerGL, "100", "0")

	_, err := s.service.Withdraw(context.Background(), dto.WithdrawRequest{
		AccountID:    "acc-1",
		Amount:       dec("100.01"),
		CurrencyCode: testCurrency,
		Reference:    "WDR-1",
	}, "teller-1")
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)

	s.Empty(s.env.ledger.commits(), "a rejected withdrawal must not post")
	s.True(s.env.accounts.balance("acc-1").Equal(dec("100")))
}

// The balance read before posting can go stale under concurrency. The commit
// re-verifies the debit against the stored balance, so a withdrawal raced by
// another debit conflicts, retries against fresh state and is rejected rather
// than overdrawing the account.
func (s *TransactionServiceTestSuite) TestWithdraw_RacedDebitCannotOverdraw() {
	s.env.addAccount("acc-1", testCustomerGL, "1000", "0")

	// A competing debit lands between this withdrawal's balance check and
	// its commit.
	s.env.ledger.beforeCommit = func() {
		account := s.env.accounts.accounts["acc-1"]
		account.Balance.Amount = dec("100")
		s.env.accounts.accounts["acc-1"] = account
	}

	_, err := s.service.Withdraw(context.Background(), dto.WithdrawRequest{
		AccountID:    "acc-1",
		Amount:       dec("800"),
		CurrencyCode: testCurrency,
		Reference:    "WDR-1",
	}, "teller-1")
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)

	s.Empty(s.env.ledger.commits())
	s.True(s.env.accounts.balance("acc-1").Equal(dec("100")), "the competing debit stands, nothing else posts")
}

func (s *TransactionServiceTestSuite) TestWithdraw_UnknownAccount() {
	_, err := s.service.Withdraw(context.Background(), dto.WithdrawRequest{
		AccountID:    "nope",
		Amount:       dec("10"),
		CurrencyCode: testCurrency,
		Reference:    "WDR-1",
	}, "teller-1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *TransactionServiceTestSuite) TestCollectFee() {
	s.env.addAccount("acc-1", testCustomerGL, "100", "0")

	resp, err := s.service.CollectFee(context.Background(), dto.FeeRequest{
		AccountID:    "acc-1",
		Amount:       dec("15"),
		CurrencyCode: testCurrency,
		FeeType:      "MONTHLY_MAINTENANCE",
		Reference:    "FEE-1",
	}, "system")
	s.Require().NoError(err)

	s.True(resp.NewBalance.Equal(dec("85")))
	posting := s.env.ledger.lastCommit()
	s.Equal(testCustomerGL, posting.Entry.Lines[0].GLCode)
	s.Equal(s.env.cfg.FeeIncome, posting.Entry.Lines[1].GLCode)
}

// A concurrency conflict on commit is retried exactly once with fresh state.
func (s *TransactionServiceTestSuite) TestDeposit_RetriesOnceOnConflict() {
	s.env.addAccount("acc-1", testCustomerGL, "100", "0")
	s.env.ledger.failNext(apperrors.ErrConcurrencyConflict)

	resp, err := s.service.Deposit(context.Background(), dto.DepositRequest{
		AccountID:    "acc-1",
		Amount:       dec("50"),
		CurrencyCode: testCurrency,
		Reference:    "DEP-1",
	}, "teller-1")
	s.Require().NoError(err)
	s.True(resp.NewBalance.Equal(dec("150")))
	s.Len(s.env.ledger.commits(), 1)
}

func (s *TransactionServiceTestSuite) TestDeposit_GivesUpAfterSecondConflict() {
	s.env.addAccount("acc-1", testCustomerGL, "100", "0")
	s.env.ledger.failNext(apperrors.ErrConcurrencyConflict, apperrors.ErrConcurrencyConflict)

	_, err := s.service.Deposit(context.Background(), dto.DepositRequest{
		AccountID:    "acc-1",
		Amount:       dec("50"),
		CurrencyCode: testCurrency,
		Reference:    "DEP-1",
	}, "teller-1")
	s.ErrorIs(err, apperrors.ErrConcurrencyConflict)
	s.Empty(s.env.ledger.commits())
	s.True(s.env.accounts.balance("acc-1").Equal(dec("100")))
}

func (s *TransactionServiceTestSuite) TestDeposit_NonConflictErrorNotRetried() {
	s.env.addAccount("acc-1", testCustomerGL, "100", "0")
	s.env.ledger.failNext(errors.New("connection reset"))

	_, err := s.service.Deposit(context.Background(), dto.DepositRequest{
		AccountID:    "acc-1",
		Amount:       dec("50"),
		CurrencyCode: testCurrency,
		Reference:    "DEP-1",
	}, "teller-1")
	s.Error(err)
	s.Empty(s.env.ledger.commits())
}

func (s *TransactionServiceTestSuite) TestAccrueDepositInterest() {
	s.env.addAccount("acc-1", testCustomerGL, "10000", "0")

	// 3.65% annual is 0.01% per day: 1.00 on a 10000 balance.
	resp, err := s.service.AccrueDepositInterest(context.Background(), "acc-1", dec("3.65"), "system")
	s.Require().NoError(err)
	s.Require().NotNil(resp)

	posting := s.env.ledger.lastCommit()
	s.Equal(domain.JournalAccrual, posting.Entry.Type)
	s.True(posting.Entry.Lines[0].Debit.Equal(dec("1")), "interest %s", posting.Entry.Lines[0].Debit)
	s.Equal(s.env.cfg.InterestExpense, posting.Entry.Lines[0].GLCode)
	s.Equal(s.env.cfg.InterestPayable, posting.Entry.Lines[1].GLCode)
	// Accrual owes the depositor via interest payable; the account balance
	// itself does not move.
	s.Empty(posting.AccountDeltas)
	s.True(s.env.accounts.balance("acc-1").Equal(dec("10000")))
}

func (s *TransactionServiceTestSuite) TestAccrueDepositInterest_ZeroBalancePostsNothing() {
	s.env.addAccount("acc-1", testCustomerGL, "0", "0")

	resp, err := s.service.AccrueDepositInterest(context.Background(), "acc-1", dec("3.65"), "system")
	s.Require().NoError(err)
	s.Nil(resp)
	s.Empty(s.env.ledger.commits())
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
