package services

import (
	"github.com/shopspring/decimal"

	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
)

// NewServiceContainer creates a service container with properly initialized
// dependencies. All posting services share one posting engine so they agree
// on the GL bindings.
func NewServiceContainer(repos portsrepo.RepositoryProvider, glCfg GLConfig, balanceInquiryFee, cardIssuanceFee decimal.Decimal) *portssvc.ServiceContainer {
	engine := newPostingEngine(repos.GLAccount, repos.Journal, glCfg)

	container := &portssvc.ServiceContainer{}
	container.Account = NewAccountService(repos.Account, repos.GLAccount)
	container.GLAccount = NewGLAccountService(repos.GLAccount)
	container.Ledger = NewLedgerService(repos.Journal, repos.Ledger)
	container.Transaction = NewTransactionService(engine, repos.Account, repos.Ledger)
	container.Transfer = NewTransferService(engine, repos.Account, repos.Ledger)
	container.Loan = NewLoanService(engine, repos.Loan, repos.Account, repos.Ledger)
	container.Card = NewCardService(engine, repos.Card, repos.Account, repos.Authorization, repos.Ledger, balanceInquiryFee, cardIssuanceFee)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.AccountSvcFacade     = (*accountService)(nil)
	_ portssvc.GLAccountSvcFacade   = (*glAccountService)(nil)
	_ portssvc.LedgerSvcFacade      = (*ledgerService)(nil)
	_ portssvc.TransactionSvcFacade = (*transactionService)(nil)
	_ portssvc.TransferSvcFacade    = (*transferService)(nil)
	_ portssvc.LoanSvcFacade        = (*loanService)(nil)
	_ portssvc.CardSvcFacade        = (*cardService)(nil)
)
