package dto

import (
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// IssueCardRequest links a new debit card to a customer account.
type IssueCardRequest struct {
	AccountID            string          `json:"accountID" binding:"required"`
	CustomerID           string          `json:"customerID" binding:"required"`
	CardNumber           string          `json:"cardNumber" binding:"required,numeric,min=12,max=19"`
	NameOnCard           string          `json:"nameOnCard" binding:"required"`
	PIN                  string          `json:"pin" binding:"required,numeric,len=4"`
	DailyWithdrawalLimit decimal.Decimal `json:"dailyWithdrawalLimit" binding:"required,gt=0"`
	DailyPurchaseLimit   decimal.Decimal `json:"dailyPurchaseLimit" binding:"required,gt=0"`
}

// ATMWithdrawalRequest is a cash withdrawal attempt at an ATM.
type ATMWithdrawalRequest struct {
	CardNumber  string          `json:"cardNumber" binding:"required"`
	PIN         string          `json:"pin" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	ATMID       string          `json:"atmID" binding:"required"`
	ATMLocation string          `json:"atmLocation"`
	IsOnUs      bool            `json:"isOnUs"`
}

// BalanceInquiryRequest is an ATM balance inquiry attempt.
type BalanceInquiryRequest struct {
	CardNumber  string `json:"cardNumber" binding:"required"`
	PIN         string `json:"pin" binding:"required"`
	ATMID       string `json:"atmID" binding:"required"`
	ATMLocation string `json:"atmLocation"`
	IsOnUs      bool   `json:"isOnUs"`
}

// POSPurchaseRequest is a card purchase attempt at a point of sale.
type POSPurchaseRequest struct {
	CardNumber       string          `json:"cardNumber" binding:"required"`
	PIN              string          `json:"pin" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Tip              decimal.Decimal `json:"tip" binding:"gte=0"`
	MerchantID       string          `json:"merchantID" binding:"required"`
	MerchantName     string          `json:"merchantName" binding:"required"`
	MerchantCategory string          `json:"merchantCategory" binding:"required,numeric,len=4"`
	TerminalID       string          `json:"terminalID" binding:"required"`
	IsOnUs           bool            `json:"isOnUs"`
}

// POSRefundRequest returns funds from a merchant to the cardholder.
type POSRefundRequest struct {
	CardNumber       string          `json:"cardNumber" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required,gt=0"`
	MerchantID       string          `json:"merchantID" binding:"required"`
	MerchantName     string          `json:"merchantName" binding:"required"`
	MerchantCategory string          `json:"merchantCategory" binding:"required"`
	TerminalID       string          `json:"terminalID" binding:"required"`
	OriginalReference string         `json:"originalReference" binding:"required"`
}

// AuthorizationResponse reports the terminal state of an authorization
// attempt. A decline is a valid outcome, not an HTTP error.
type AuthorizationResponse struct {
	AuthorizationID   string          `json:"authorizationID"`
	Status            string          `json:"status"`
	Reference         string          `json:"reference"`
	AuthorizationCode string          `json:"authorizationCode,omitempty"`
	AvailableBalance  decimal.Decimal `json:"availableBalance"`
	CurrencyCode      string          `json:"currencyCode"`
	DeclineCode       int             `json:"declineCode,omitempty"`
	DeclineReason     string          `json:"declineReason,omitempty"`
	JournalNumber     string          `json:"journalNumber,omitempty"`
}

// ToAuthorizationResponse maps a terminal authorization to its response shape.
func ToAuthorizationResponse(a *domain.Authorization, journalNumber string) AuthorizationResponse {
	return AuthorizationResponse{
		AuthorizationID:   a.AuthorizationID,
		Status:            string(a.Status),
		Reference:         a.Reference,
		AuthorizationCode: a.AuthorizationCode,
		AvailableBalance:  a.AvailableBalance.Amount,
		CurrencyCode:      a.AvailableBalance.Currency.Code,
		DeclineCode:       int(a.DeclineCode),
		DeclineReason:     a.DeclineReason,
		JournalNumber:     journalNumber,
	}
}

// CardResponse is the external view of an issued card.
type CardResponse struct {
	CardID               string          `json:"cardID"`
	AccountID            string          `json:"accountID"`
	MaskedCardNumber     string          `json:"maskedCardNumber"`
	NameOnCard           string          `json:"nameOnCard"`
	Status               string          `json:"status"`
	DailyWithdrawalLimit decimal.Decimal `json:"dailyWithdrawalLimit"`
	DailyPurchaseLimit   decimal.Decimal `json:"dailyPurchaseLimit"`
}

// ToCardResponse maps a domain card to its response shape.
func ToCardResponse(c *domain.Card) CardResponse {
	return CardResponse{
		CardID:               c.CardID,
		AccountID:            c.AccountID,
		MaskedCardNumber:     c.MaskedNumber(),
		NameOnCard:           c.NameOnCard,
		Status:               string(c.Status),
		DailyWithdrawalLimit: c.DailyWithdrawalLimit.Amount,
		DailyPurchaseLimit:   c.DailyPurchaseLimit.Amount,
	}
}
