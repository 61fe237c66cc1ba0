package repositories

// RepositoryProvider bundles every repository implementation handed to the
// service container at startup.
type RepositoryProvider struct {
	Ledger        LedgerRepository
	Account       AccountRepository
	GLAccount     GLAccountRepository
	Journal       JournalRepository
	Loan          LoanRepository
	Card          CardRepository
	Authorization AuthorizationRepository
}
