package services

// ServiceContainer holds every service facade the handlers consume.
type ServiceContainer struct {
	Account     AccountSvcFacade
	GLAccount   GLAccountSvcFacade
	Ledger      LedgerSvcFacade
	Transaction TransactionSvcFacade
	Transfer    TransferSvcFacade
	Loan        LoanSvcFacade
	Card        CardSvcFacade
}
