package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgx-backed repository onto one shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Ledger:        newPgxLedgerRepository(pool),
		Account:       newPgxAccountRepository(pool),
		GLAccount:     newPgxGLAccountRepository(pool),
		Journal:       newPgxJournalRepository(pool),
		Loan:          newPgxLoanRepository(pool),
		Card:          newPgxCardRepository(pool),
		Authorization: newPgxAuthorizationRepository(pool),
	}
}
