package services

import (
	"context"

	"github.com/hazina-bank/core_ledger/internal/core/domain"
	"github.com/hazina-bank/core_ledger/internal/dto"
)

// CardSvcFacade defines card issuance and the ATM/POS authorization flows.
// Authorization operations never return a Go error for a declined attempt:
// the decline is recorded and reported in the response.
type CardSvcFacade interface {
	// IssueCard links a new debit card to a customer account.
	IssueCard(ctx context.Context, req dto.IssueCardRequest, creatorUserID string) (*domain.Card, error)

	// ATMWithdrawal runs the full authorization state machine for an ATM
	// cash withdrawal and, when authorized, posts the debit atomically.
	ATMWithdrawal(ctx context.Context, req dto.ATMWithdrawalRequest) (*dto.AuthorizationResponse, error)

	// BalanceInquiry reports the available balance. Off-network inquiries
	// attract a fee posted against the account.
	BalanceInquiry(ctx context.Context, req dto.BalanceInquiryRequest) (*dto.AuthorizationResponse, error)

	// POSPurchase authorizes a point-of-sale purchase with optional tip.
	POSPurchase(ctx context.Context, req dto.POSPurchaseRequest) (*dto.AuthorizationResponse, error)

	// POSRefund returns funds from a merchant to the cardholder.
	POSRefund(ctx context.Context, req dto.POSRefundRequest) (*dto.AuthorizationResponse, error)

	// ListCardAuthorizations retrieves the recent authorization trail of a
	// card, declines included.
	ListCardAuthorizations(ctx context.Context, cardID string, limit int) ([]domain.Authorization, error)
}
