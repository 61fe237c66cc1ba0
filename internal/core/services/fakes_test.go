package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
)

// In-memory repository fakes. They mirror the transactional semantics of the
// real implementations closely enough for the services to be exercised end to
// end: CommitPosting applies account deltas, persists aggregates and marks
// reversals in one step, or fails without touching anything.

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]domain.Account)}
}

func (f *fakeAccountRepo) SaveAccount(_ context.Context, account domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[account.AccountID]; ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	f.accounts[account.AccountID] = account
	return nil
}

func (f *fakeAccountRepo) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &account, nil
}

func (f *fakeAccountRepo) FindAccountByNumber(_ context.Context, accountNumber string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.AccountNumber == accountNumber {
			return &account, nil
		}
	}
	return nil, fmt.Errorf("%w: account number %s", apperrors.ErrNotFound, accountNumber)
}

func (f *fakeAccountRepo) UpdateAccount(_ context.Context, account domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[account.AccountID]; !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}
	f.accounts[account.AccountID] = account
	return nil
}

func (f *fakeAccountRepo) balance(accountID string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[accountID].Balance.Amount
}

type fakeGLRepo struct {
	mu  sync.Mutex
	gls map[string]domain.GLAccount
}

func newFakeGLRepo() *fakeGLRepo {
	return &fakeGLRepo{gls: make(map[string]domain.GLAccount)}
}

func (f *fakeGLRepo) SaveGLAccount(_ context.Context, gl domain.GLAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.gls[gl.GLCode]; ok {
		return fmt.Errorf("%w: GL %s", apperrors.ErrDuplicate, gl.GLCode)
	}
	f.gls[gl.GLCode] = gl
	return nil
}

func (f *fakeGLRepo) FindGLAccountByCode(_ context.Context, glCode string) (*domain.GLAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gl, ok := f.gls[glCode]
	if !ok {
		return nil, fmt.Errorf("%w: GL %s", apperrors.ErrNotFound, glCode)
	}
	return &gl, nil
}

func (f *fakeGLRepo) FindGLAccountsByCodes(_ context.Context, glCodes []string) (map[string]domain.GLAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	found := make(map[string]domain.GLAccount, len(glCodes))
	for _, code := range glCodes {
		if gl, ok := f.gls[code]; ok {
			found[code] = gl
		}
	}
	return found, nil
}

func (f *fakeGLRepo) ListGLAccounts(_ context.Context) ([]domain.GLAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	codes := make([]string, 0, len(f.gls))
	for code := range f.gls {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	out := make([]domain.GLAccount, 0, len(codes))
	for _, code := range codes {
		out = append(out, f.gls[code])
	}
	return out, nil
}

type fakeJournalRepo struct {
	mu       sync.Mutex
	journals map[string]domain.JournalEntry
	deltas   map[string]map[string]decimal.Decimal
	counters map[domain.JournalType]int64
}

func newFakeJournalRepo() *fakeJournalRepo {
	return &fakeJournalRepo{
		journals: make(map[string]domain.JournalEntry),
		deltas:   make(map[string]map[string]decimal.Decimal),
		counters: make(map[domain.JournalType]int64),
	}
}

var fakeJournalPrefixes = map[domain.JournalType]string{
	domain.JournalStandard:  "STD",
	domain.JournalAccrual:   "ACR",
	domain.JournalProvision: "PRV",
	domain.JournalReversal:  "REV",
}

func (f *fakeJournalRepo) NextJournalNumber(_ context.Context, jType domain.JournalType) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[jType]++
	return fmt.Sprintf("%s-%08d", fakeJournalPrefixes[jType], f.counters[jType]), nil
}

func (f *fakeJournalRepo) FindJournalByID(_ context.Context, journalID string) (*domain.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.journals[journalID]
	if !ok {
		return nil, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, journalID)
	}
	entry.Lines = append([]domain.JournalLine(nil), entry.Lines...)
	return &entry, nil
}

func (f *fakeJournalRepo) ListJournalsBySource(_ context.Context, sourceType, sourceID string) ([]domain.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.JournalEntry
	for _, entry := range f.journals {
		if entry.SourceType == sourceType && entry.SourceID == sourceID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JournalNumber < out[j].JournalNumber })
	return out, nil
}

func (f *fakeJournalRepo) FindAccountDeltas(_ context.Context, journalID string) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]decimal.Decimal, len(f.deltas[journalID]))
	for accountID, delta := range f.deltas[journalID] {
		out[accountID] = delta
	}
	return out, nil
}

type fakeLoanRepo struct {
	mu    sync.Mutex
	loans map[string]domain.Loan
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[string]domain.Loan)}
}

func (f *fakeLoanRepo) SaveLoan(_ context.Context, loan domain.Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.loans[loan.LoanID]; ok {
		return fmt.Errorf("%w: loan %s", apperrors.ErrDuplicate, loan.LoanID)
	}
	f.loans[loan.LoanID] = loan
	return nil
}

func (f *fakeLoanRepo) FindLoanByID(_ context.Context, loanID string) (*domain.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	loan, ok := f.loans[loanID]
	if !ok {
		return nil, fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loanID)
	}
	return &loan, nil
}

func (f *fakeLoanRepo) UpdateLoan(_ context.Context, loan domain.Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.loans[loan.LoanID]; !ok {
		return fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loan.LoanID)
	}
	f.loans[loan.LoanID] = loan
	return nil
}

func (f *fakeLoanRepo) put(loan domain.Loan) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loans[loan.LoanID] = loan
}

type fakeCardRepo struct {
	mu    sync.Mutex
	cards map[string]domain.Card // keyed by card ID
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: make(map[string]domain.Card)}
}

func (f *fakeCardRepo) SaveCard(_ context.Context, card domain.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cards[card.CardID]; ok {
		return fmt.Errorf("%w: card %s", apperrors.ErrDuplicate, card.CardID)
	}
	f.cards[card.CardID] = card
	return nil
}

func (f *fakeCardRepo) FindCardByNumber(_ context.Context, cardNumber string) (*domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, card := range f.cards {
		if card.CardNumber == cardNumber {
			c := card
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeCardRepo) UpdateCard(_ context.Context, card domain.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cards[card.CardID]; !ok {
		return fmt.Errorf("%w: card %s", apperrors.ErrNotFound, card.CardID)
	}
	f.cards[card.CardID] = card
	return nil
}

func (f *fakeCardRepo) get(cardID string) domain.Card {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cards[cardID]
}

type fakeAuthRepo struct {
	mu       sync.Mutex
	auths    map[string]domain.Authorization
	failSave error
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{auths: make(map[string]domain.Authorization)}
}

func (f *fakeAuthRepo) SaveAuthorization(_ context.Context, auth domain.Authorization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave != nil {
		return f.failSave
	}
	f.auths[auth.AuthorizationID] = auth
	return nil
}

func (f *fakeAuthRepo) ListAuthorizationsByCard(_ context.Context, cardID string, limit int) ([]domain.Authorization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []domain.Authorization
	for _, auth := range f.auths {
		if auth.CardID == cardID {
			out = append(out, auth)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAuthRepo) all() []domain.Authorization {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Authorization, 0, len(f.auths))
	for _, auth := range f.auths {
		out = append(out, auth)
	}
	return out
}

// fakeLedgerRepo applies the whole posting in one step, against the same
// stores the other fakes read from. Errors queued in failures are returned,
// one per call, before any state changes.
type fakeLedgerRepo struct {
	mu       sync.Mutex
	accounts *fakeAccountRepo
	journals *fakeJournalRepo
	loans    *fakeLoanRepo
	cards    *fakeCardRepo
	auths    *fakeAuthRepo

	failures  []error
	committed []portsrepo.Posting

	// beforeCommit runs once at the start of the next CommitPosting, before
	// any validation. Tests use it to move state between the service's read
	// and its commit.
	beforeCommit func()
}

func (f *fakeLedgerRepo) failNext(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, errs...)
}

func (f *fakeLedgerRepo) CommitPosting(_ context.Context, p portsrepo.Posting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.beforeCommit != nil {
		hook := f.beforeCommit
		f.beforeCommit = nil
		hook()
	}
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return err
	}

	if p.Entry == nil {
		return fmt.Errorf("%w: posting requires a journal entry", apperrors.ErrValidation)
	}
	entries := append([]*domain.JournalEntry{p.Entry}, p.SupplementalEntries...)
	for _, entry := range entries {
		if entry.Status != domain.JournalPosted {
			return fmt.Errorf("%w: posting requires a posted journal entry", apperrors.ErrValidation)
		}
		if !entry.IsBalanced() {
			return fmt.Errorf("%w: journal %s", apperrors.ErrUnbalancedEntry, entry.JournalNumber)
		}
	}

	// Same all-or-nothing semantics as the real repository: every delta is
	// re-verified against the stored balance before any is applied, and a
	// debit the balance can no longer absorb is a retryable conflict.
	f.accounts.mu.Lock()
	for accountID, delta := range p.AccountDeltas {
		account, ok := f.accounts.accounts[accountID]
		if !ok {
			f.accounts.mu.Unlock()
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		if delta.IsNegative() && account.Balance.Amount.Add(delta).LessThan(account.OverdraftLimit.Amount.Neg()) {
			f.accounts.mu.Unlock()
			return fmt.Errorf("account %s balance %s cannot absorb %s: %w",
				accountID, account.Balance.Amount, delta, apperrors.ErrConcurrencyConflict)
		}
	}
	for accountID, delta := range p.AccountDeltas {
		account := f.accounts.accounts[accountID]
		account.Balance.Amount = account.Balance.Amount.Add(delta)
		f.accounts.accounts[accountID] = account
	}
	f.accounts.mu.Unlock()

	f.journals.mu.Lock()
	f.journals.journals[p.Entry.JournalID] = *p.Entry
	for _, extra := range p.SupplementalEntries {
		f.journals.journals[extra.JournalID] = *extra
	}
	if len(p.AccountDeltas) > 0 {
		deltas := make(map[string]decimal.Decimal, len(p.AccountDeltas))
		for accountID, delta := range p.AccountDeltas {
			deltas[accountID] = delta
		}
		f.journals.deltas[p.Entry.JournalID] = deltas
	}
	if p.ReversedJournal != nil {
		f.journals.journals[p.ReversedJournal.JournalID] = *p.ReversedJournal
	}
	f.journals.mu.Unlock()

	if p.Loan != nil {
		f.loans.put(*p.Loan)
	}
	if p.Card != nil {
		f.cards.mu.Lock()
		f.cards.cards[p.Card.CardID] = *p.Card
		f.cards.mu.Unlock()
	}
	if p.Authorization != nil {
		f.auths.mu.Lock()
		f.auths.auths[p.Authorization.AuthorizationID] = *p.Authorization
		f.auths.mu.Unlock()
	}

	f.committed = append(f.committed, p)
	return nil
}

func (f *fakeLedgerRepo) commits() []portsrepo.Posting {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]portsrepo.Posting(nil), f.committed...)
}

func (f *fakeLedgerRepo) lastCommit() portsrepo.Posting {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.committed[len(f.committed)-1]
}

var (
	_ portsrepo.AccountRepository       = (*fakeAccountRepo)(nil)
	_ portsrepo.GLAccountRepository     = (*fakeGLRepo)(nil)
	_ portsrepo.JournalRepository       = (*fakeJournalRepo)(nil)
	_ portsrepo.LoanRepository          = (*fakeLoanRepo)(nil)
	_ portsrepo.CardRepository          = (*fakeCardRepo)(nil)
	_ portsrepo.AuthorizationRepository = (*fakeAuthRepo)(nil)
	_ portsrepo.LedgerRepository        = (*fakeLedgerRepo)(nil)
)

// testEnv wires the fakes into a posting engine with a fully seeded chart of
// accounts.
type testEnv struct {
	accounts *fakeAccountRepo
	gls      *fakeGLRepo
	journals *fakeJournalRepo
	loans    *fakeLoanRepo
	cards    *fakeCardRepo
	auths    *fakeAuthRepo
	ledger   *fakeLedgerRepo
	engine   *postingEngine
	cfg      GLConfig
}

const (
	testCurrency       = "KES"
	testCustomerGL     = "2001"
	testCustomerDestGL = "2002"
	testLoanGL         = "1201"
)

func newTestEnv() *testEnv {
	env := &testEnv{
		accounts: newFakeAccountRepo(),
		gls:      newFakeGLRepo(),
		journals: newFakeJournalRepo(),
		loans:    newFakeLoanRepo(),
		cards:    newFakeCardRepo(),
		auths:    newFakeAuthRepo(),
		cfg:      DefaultGLConfig(),
	}
	env.ledger = &fakeLedgerRepo{
		accounts: env.accounts,
		journals: env.journals,
		loans:    env.loans,
		cards:    env.cards,
		auths:    env.auths,
	}
	for _, code := range []string{
		env.cfg.Cash, env.cfg.ATMCash, env.cfg.InterestReceivable, env.cfg.LossProvision,
		env.cfg.MerchantSettlement, env.cfg.InterestPayable, env.cfg.InterestIncome,
		env.cfg.FeeIncome, env.cfg.InterchangeIncome, env.cfg.InterestExpense,
		env.cfg.ProvisionExpense, env.cfg.InterchangeExpense,
		testCustomerGL, testCustomerDestGL, testLoanGL,
	} {
		env.seedGL(code, testCurrency)
	}
	env.engine = newPostingEngine(env.gls, env.journals, env.cfg)
	return env
}

func (e *testEnv) seedGL(code, currency string) {
	glType, _ := domain.GLTypeForCode(code)
	e.gls.mu.Lock()
	defer e.gls.mu.Unlock()
	e.gls.gls[code] = domain.GLAccount{
		GLAccountID:  "gl-" + code,
		GLCode:       code,
		Name:         "Test " + code,
		Type:         glType,
		Status:       domain.GLActive,
		Level:        3,
		IsLeaf:       true,
		CurrencyCode: currency,
		AuditFields:  domain.NewAuditFields("seed", time.Now().UTC()),
	}
}

func (e *testEnv) mutateGL(code string, fn func(gl *domain.GLAccount)) {
	e.gls.mu.Lock()
	defer e.gls.mu.Unlock()
	gl := e.gls.gls[code]
	fn(&gl)
	e.gls.gls[code] = gl
}

func (e *testEnv) addAccount(id, glCode, balance, overdraft string) domain.Account {
	now := time.Now().UTC()
	account := domain.Account{
		AccountID:      id,
		AccountNumber:  "NUM-" + id,
		CustomerID:     "cust-" + id,
		Balance:        domain.NewMoney(decimal.RequireFromString(balance), testCurrency),
		OverdraftLimit: domain.NewMoney(decimal.RequireFromString(overdraft), testCurrency),
		Status:         domain.AccountActive,
		CustomerGLCode: glCode,
		AuditFields:    domain.NewAuditFields("seed", now),
	}
	e.accounts.mu.Lock()
	e.accounts.accounts[id] = account
	e.accounts.mu.Unlock()
	return account
}

func (e *testEnv) addCard(id, accountID, cardNumber, pin, withdrawalLimit, purchaseLimit string) domain.Card {
	now := time.Now().UTC()
	card := domain.Card{
		CardID:               id,
		AccountID:            accountID,
		CustomerID:           "cust-" + accountID,
		CardNumber:           cardNumber,
		NameOnCard:           "TEST HOLDER",
		Status:               domain.CardActive,
		ExpiresAt:            now.AddDate(4, 0, 0),
		DailyWithdrawalLimit: domain.NewMoney(decimal.RequireFromString(withdrawalLimit), testCurrency),
		DailyPurchaseLimit:   domain.NewMoney(decimal.RequireFromString(purchaseLimit), testCurrency),
		WithdrawnToday:       domain.ZeroMoney(testCurrency),
		PurchasedToday:       domain.ZeroMoney(testCurrency),
		UsageDate:            now.Truncate(24 * time.Hour),
		AuditFields:          domain.NewAuditFields("seed", now),
	}
	if err := card.SetPIN(pin); err != nil {
		panic(err)
	}
	e.cards.mu.Lock()
	e.cards.cards[id] = card
	e.cards.mu.Unlock()
	return card
}
