package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
)

type PostingEngineTestSuite struct {
	suite.Suite
	env *testEnv
}

func (s *PostingEngineTestSuite) SetupTest() {
	s.env = newTestEnv()
}

func (s *PostingEngineTestSuite) input(kind TransactionKind, amounts map[amountRole]decimal.Decimal, codes map[glRole]string) postingInput {
	return postingInput{
		Kind:         kind,
		SourceType:   "Test",
		SourceID:     "src-1",
		Reference:    "REF-1",
		Description:  "test posting",
		CurrencyCode: testCurrency,
		Amounts:      amounts,
		GLCodes:      codes,
		By:           "tester",
		At:           time.Now().UTC(),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Every catalog row must produce a balanced, posted entry when all its
// amount roles are supplied.
func (s *PostingEngineTestSuite) TestCatalogProducesBalancedEntries() {
	customer := map[glRole]string{roleCustomer: testCustomerGL}
	tests := []struct {
		kind      TransactionKind
		amounts   map[amountRole]decimal.Decimal
		codes     map[glRole]string
		wantLines int
		prefix    string
	}{
		{KindCashDeposit, map[amountRole]decimal.Decimal{amtPrimary: dec("100")}, customer, 2, "STD"},
		{KindCashWithdrawal, map[amountRole]decimal.Decimal{amtPrimary: dec("100")}, customer, 2, "STD"},
		{KindAccountTransfer, map[amountRole]decimal.Decimal{amtPrimary: dec("100")},
			map[glRole]string{roleCustomer: testCustomerGL, roleCustomerDest: testCustomerDestGL}, 2, "STD"},
		{KindFeeCollection, map[amountRole]decimal.Decimal{amtPrimary: dec("25")}, customer, 2, "STD"},
		{KindLoanDisbursement, map[amountRole]decimal.Decimal{amtPrimary: dec("10000")},
			map[glRole]string{roleCustomer: testCustomerGL, roleLoan: testLoanGL}, 2, "STD"},
		{KindLoanRepayment, map[amountRole]decimal.Decimal{amtPrimary: dec("1000"), amtInterest: dec("300"), amtPrincipal: dec("700")},
			map[glRole]string{roleCustomer: testCustomerGL, roleLoan: testLoanGL}, 3, "STD"},
		{KindLoanInterestAccrual, map[amountRole]decimal.Decimal{amtPrimary: dec("10")}, nil, 2, "ACR"},
		{KindDepositInterestAccrual, map[amountRole]decimal.Decimal{amtPrimary: dec("1")}, nil, 2, "ACR"},
		{KindProvisionIncrease, map[amountRole]decimal.Decimal{amtPrimary: dec("400")}, nil, 2, "PRV"},
		{KindProvisionRelease, map[amountRole]decimal.Decimal{amtPrimary: dec("400")}, nil, 2, "PRV"},
		{KindATMWithdrawal, map[amountRole]decimal.Decimal{amtPrimary: dec("5000")}, customer, 2, "STD"},
		{KindPOSPurchase, map[amountRole]decimal.Decimal{amtTotal: dec("110")}, customer, 2, "STD"},
		{KindPOSRefund, map[amountRole]decimal.Decimal{amtPrimary: dec("100")}, customer, 2, "STD"},
		{KindInterchangeFee, map[amountRole]decimal.Decimal{amtPrimary: dec("62.50")}, customer, 2, "STD"},
		{KindInterchangeIncome, map[amountRole]decimal.Decimal{amtPrimary: dec("1.75")}, nil, 2, "STD"},
	}

	for _, tc := range tests {
		entry, err := s.env.engine.buildEntry(context.Background(), s.input(tc.kind, tc.amounts, tc.codes))
		s.Require().NoError(err, "kind %s", tc.kind)
		s.Equal(domain.JournalPosted, entry.Status, "kind %s", tc.kind)
		s.True(entry.IsBalanced(), "kind %s: debit %s credit %s", tc.kind, entry.TotalDebit(), entry.TotalCredit())
		s.Len(entry.Lines, tc.wantLines, "kind %s", tc.kind)
		s.True(strings.HasPrefix(entry.JournalNumber, tc.prefix+"-"), "kind %s: number %s", tc.kind, entry.JournalNumber)
	}
}

func (s *PostingEngineTestSuite) TestOptionalLegsDropWhenZero() {
	// Repayment fully consumed by interest: no principal leg.
	entry, err := s.env.engine.buildEntry(context.Background(), s.input(KindLoanRepayment,
		map[amountRole]decimal.Decimal{amtPrimary: dec("100"), amtInterest: dec("100"), amtPrincipal: decimal.Zero},
		map[glRole]string{roleCustomer: testCustomerGL, roleLoan: testLoanGL}))
	s.Require().NoError(err)
	s.Len(entry.Lines, 2)
	s.True(entry.IsBalanced())

	// Repayment fully consumed by principal: no interest leg.
	entry, err = s.env.engine.buildEntry(context.Background(), s.input(KindLoanRepayment,
		map[amountRole]decimal.Decimal{amtPrimary: dec("100"), amtInterest: decimal.Zero, amtPrincipal: dec("100")},
		map[glRole]string{roleCustomer: testCustomerGL, roleLoan: testLoanGL}))
	s.Require().NoError(err)
	s.Len(entry.Lines, 2)
	s.True(entry.IsBalanced())
}

// Card kinds must hit the mandated GLs on the mandated sides: cash leaves
// through ATM Cash, merchant settlement is a payable, refunds reverse the
// purchase, and repayment interest lands in income.
func (s *PostingEngineTestSuite) TestCardAndRepaymentLegDirections() {
	customer := map[glRole]string{roleCustomer: testCustomerGL}
	cfg := s.env.cfg

	type leg struct{ gl, debit, credit string }
	tests := []struct {
		kind    TransactionKind
		amounts map[amountRole]decimal.Decimal
		codes   map[glRole]string
		legs    []leg
	}{
		{KindATMWithdrawal, map[amountRole]decimal.Decimal{amtPrimary: dec("5000")}, customer, []leg{
			{cfg.ATMCash, "5000", "0"},
			{testCustomerGL, "0", "5000"},
		}},
		{KindPOSPurchase, map[amountRole]decimal.Decimal{amtTotal: dec("110")}, customer, []leg{
			{cfg.MerchantSettlement, "110", "0"},
			{testCustomerGL, "0", "110"},
		}},
		{KindPOSRefund, map[amountRole]decimal.Decimal{amtPrimary: dec("100")}, customer, []leg{
			{testCustomerGL, "100", "0"},
			{cfg.MerchantSettlement, "0", "100"},
		}},
		{KindInterchangeFee, map[amountRole]decimal.Decimal{amtPrimary: dec("62.50")}, customer, []leg{
			{cfg.InterchangeExpense, "62.5", "0"},
			{testCustomerGL, "0", "62.5"},
		}},
		{KindInterchangeIncome, map[amountRole]decimal.Decimal{amtPrimary: dec("1.75")}, nil, []leg{
			{cfg.MerchantSettlement, "1.75", "0"},
			{cfg.InterchangeIncome, "0", "1.75"},
		}},
		{KindLoanRepayment, map[amountRole]decimal.Decimal{amtPrimary: dec("1000"), amtInterest: dec("300"), amtPrincipal: dec("700")},
			map[glRole]string{roleCustomer: testCustomerGL, roleLoan: testLoanGL}, []leg{
				{testCustomerGL, "1000", "0"},
				{cfg.InterestIncome, "0", "300"},
				{testLoanGL, "0", "700"},
			}},
	}

	for _, tc := range tests {
		entry, err := s.env.engine.buildEntry(context.Background(), s.input(tc.kind, tc.amounts, tc.codes))
		s.Require().NoError(err, "kind %s", tc.kind)
		s.Require().Len(entry.Lines, len(tc.legs), "kind %s", tc.kind)
		for i, want := range tc.legs {
			line := entry.Lines[i]
			s.Equal(want.gl, line.GLCode, "kind %s line %d", tc.kind, i)
			s.True(line.Debit.Equal(dec(want.debit)), "kind %s line %d debit %s", tc.kind, i, line.Debit)
			s.True(line.Credit.Equal(dec(want.credit)), "kind %s line %d credit %s", tc.kind, i, line.Credit)
		}
	}
}

func (s *PostingEngineTestSuite) TestUnknownKindRejected() {
	_, err := s.env.engine.buildEntry(context.Background(), s.input("NOT_A_KIND",
		map[amountRole]decimal.Decimal{amtPrimary: dec("1")}, nil))
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *PostingEngineTestSuite) TestRequiredAmountMustBePositive() {
	_, err := s.env.engine.buildEntry(context.Background(), s.input(KindCashDeposit,
		map[amountRole]decimal.Decimal{amtPrimary: decimal.Zero},
		map[glRole]string{roleCustomer: testCustomerGL}))
	s.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = s.env.engine.buildEntry(context.Background(), s.input(KindCashDeposit,
		map[amountRole]decimal.Decimal{amtPrimary: dec("-5")},
		map[glRole]string{roleCustomer: testCustomerGL}))
	s.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (s *PostingEngineTestSuite) TestUnboundRoleFailsClosed() {
	engine := newPostingEngine(s.env.gls, s.env.journals, GLConfig{})
	_, err := engine.buildEntry(context.Background(), s.input(KindCashDeposit,
		map[amountRole]decimal.Decimal{amtPrimary: dec("100")},
		map[glRole]string{roleCustomer: testCustomerGL}))
	s.ErrorIs(err, apperrors.ErrMissingGLConfiguration)
}

func (s *PostingEngineTestSuite) TestMissingGLAccountFailsClosed() {
	_, err := s.env.engine.buildEntry(context.Background(), s.input(KindCashDeposit,
		map[amountRole]decimal.Decimal{amtPrimary: dec("100")},
		map[glRole]string{roleCustomer: "2999"}))
	s.ErrorIs(err, apperrors.ErrMissingGLConfiguration)
}

func (s *PostingEngineTestSuite) TestNonLeafGLFailsClosed() {
	s.env.mutateGL(testCustomerGL, func(gl *domain.GLAccount) { gl.IsLeaf = false })
	_, err := s.env.engine.buildEntry(context.Background(), s.input(KindCashDeposit,
		map[amountRole]decimal.Decimal{amtPrimary: dec("100")},
		map[glRole]string{roleCustomer: testCustomerGL}))
	s.ErrorIs(err, apperrors.ErrMissingGLConfiguration)
}

func (s *PostingEngineTestSuite) TestInactiveGLFailsClosed() {
	s.env.mutateGL(s.env.cfg.Cash, func(gl *domain.GLAccount) { gl.Status = domain.GLSuspended })
	_, err := s.env.engine.buildEntry(context.Background(), s.input(KindCashDeposit,
		map[amountRole]decimal.Decimal{amtPrimary: dec("100")},
		map[glRole]string{roleCustomer: testCustomerGL}))
	s.ErrorIs(err, apperrors.ErrMissingGLConfiguration)
}

func (s *PostingEngineTestSuite) TestCurrencyMismatchedGLFailsClosed() {
	s.env.mutateGL(testCustomerGL, func(gl *domain.GLAccount) { gl.CurrencyCode = "USD" })
	_, err := s.env.engine.buildEntry(context.Background(), s.input(KindCashDeposit,
		map[amountRole]decimal.Decimal{amtPrimary: dec("100")},
		map[glRole]string{roleCustomer: testCustomerGL}))
	s.ErrorIs(err, apperrors.ErrMissingGLConfiguration)
}

// Context-supplied codes take precedence over the configured defaults.
func (s *PostingEngineTestSuite) TestContextCodesOverrideDefaults() {
	s.env.seedGL("1860", testCurrency)
	entry, err := s.env.engine.buildEntry(context.Background(), s.input(KindLoanInterestAccrual,
		map[amountRole]decimal.Decimal{amtPrimary: dec("10")},
		map[glRole]string{roleInterestReceivable: "1860"}))
	s.Require().NoError(err)
	s.Equal("1860", entry.Lines[0].GLCode)
	s.Equal(s.env.cfg.InterestIncome, entry.Lines[1].GLCode)
}

func (s *PostingEngineTestSuite) TestJournalNumbersIncreasePerType() {
	first, err := s.env.journals.NextJournalNumber(context.Background(), domain.JournalStandard)
	s.Require().NoError(err)
	second, err := s.env.journals.NextJournalNumber(context.Background(), domain.JournalStandard)
	s.Require().NoError(err)
	accrual, err := s.env.journals.NextJournalNumber(context.Background(), domain.JournalAccrual)
	s.Require().NoError(err)

	s.Equal("STD-00000001", first)
	s.Equal("STD-00000002", second)
	s.Equal("ACR-00000001", accrual)
}

func (s *PostingEngineTestSuite) TestJournalNumbersUniqueUnderConcurrency() {
	const n = 1000
	numbers := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := s.env.journals.NextJournalNumber(context.Background(), domain.JournalStandard)
			s.NoError(err)
			numbers <- num
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]struct{}, n)
	for num := range numbers {
		_, dup := seen[num]
		s.False(dup, "journal number %s issued twice", num)
		seen[num] = struct{}{}
	}
	s.Len(seen, n)
}

func TestPostingEngineTestSuite(t *testing.T) {
	suite.Run(t, new(PostingEngineTestSuite))
}
