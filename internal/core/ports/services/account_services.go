package services

import (
	"context"

	"github.com/hazina-bank/core_ledger/internal/core/domain"
	"github.com/hazina-bank/core_ledger/internal/dto"
)

// AccountReaderSvc defines read operations for customer accounts
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account by its ID.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByNumber retrieves an account by its account number.
	GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
}

// AccountWriterSvc defines write operations for customer accounts
type AccountWriterSvc interface {
	// CreateAccount opens a new customer account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// FreezeAccount blocks all transactions on the account.
	FreezeAccount(ctx context.Context, accountID string, requestingUserID string) error

	// UnfreezeAccount reactivates a frozen account.
	UnfreezeAccount(ctx context.Context, accountID string, requestingUserID string) error

	// CloseAccount terminates a zero-balance account.
	CloseAccount(ctx context.Context, accountID string, requestingUserID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}

// GLAccountSvcFacade defines operations on the chart of accounts
type GLAccountSvcFacade interface {
	// CreateGLAccount registers a chart-of-accounts node.
	CreateGLAccount(ctx context.Context, req dto.CreateGLAccountRequest, creatorUserID string) (*domain.GLAccount, error)

	// GetGLAccountByCode retrieves a GL account by its code.
	GetGLAccountByCode(ctx context.Context, glCode string) (*domain.GLAccount, error)

	// ListGLAccounts retrieves the full chart of accounts.
	ListGLAccounts(ctx context.Context) ([]domain.GLAccount, error)
}
