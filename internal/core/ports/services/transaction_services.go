package services

import (
	"context"

	"github.com/hazina-bank/core_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// TransactionSvcFacade defines the over-the-counter monetary operations.
// Every operation posts exactly one balanced journal entry and mutates the
// customer account in the same atomic commit.
type TransactionSvcFacade interface {
	// Deposit credits a customer account against the cash GL.
	Deposit(ctx context.Context, req dto.DepositRequest, requestingUserID string) (*dto.TransactionResponse, error)

	// Withdraw debits a customer account against the cash GL.
	Withdraw(ctx context.Context, req dto.WithdrawRequest, requestingUserID string) (*dto.TransactionResponse, error)

	// CollectFee debits a customer account against fee income.
	CollectFee(ctx context.Context, req dto.FeeRequest, requestingUserID string) (*dto.TransactionResponse, error)

	// AccrueDepositInterest posts one day of interest expense owed to the
	// account into interest payable. The customer balance is untouched
	// until the payable is capitalized. Returns nil when nothing accrued.
	AccrueDepositInterest(ctx context.Context, accountID string, annualRate decimal.Decimal, requestingUserID string) (*dto.TransactionResponse, error)
}

// TransferSvcFacade moves funds between two accounts of the same currency.
type TransferSvcFacade interface {
	// Transfer debits the source and credits the destination in one
	// two-line journal entry, atomically.
	Transfer(ctx context.Context, req dto.TransferRequest, requestingUserID string) (*dto.TransactionResponse, error)
}
