package domain

import (
	"fmt"
	"time"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
)

// AuthorizationStatus is the state of a card/ATM/POS authorization attempt.
// Valid transitions: Initiated → PINVerified → Authorized → Completed, and
// any non-terminal state → Declined. Declines are a valid terminal state,
// not an error.
type AuthorizationStatus string

const (
	AuthInitiated   AuthorizationStatus = "INITIATED"
	AuthPINVerified AuthorizationStatus = "PIN_VERIFIED"
	AuthAuthorized  AuthorizationStatus = "AUTHORIZED"
	AuthCompleted   AuthorizationStatus = "COMPLETED"
	AuthDeclined    AuthorizationStatus = "DECLINED"
)

// DeclineCode is the stable ISO-8583-like numeric reason carried by every
// declined attempt.
type DeclineCode int

const (
	DeclineInvalidCard        DeclineCode = 14 // invalid card or account
	DeclineInsufficientFunds  DeclineCode = 51
	DeclineIncorrectPIN       DeclineCode = 55
	DeclineNotPermitted       DeclineCode = 57 // merchant category restricted
	DeclineLimitExceeded      DeclineCode = 61
	DeclineRestrictedAccount  DeclineCode = 62
	DeclineSystemError        DeclineCode = 96 // posting failed after authorization
)

// AuthorizationChannel identifies where the attempt originated.
type AuthorizationChannel string

const (
	ChannelATM AuthorizationChannel = "ATM"
	ChannelPOS AuthorizationChannel = "POS"
)

// AuthorizationKind is the operation being authorized.
type AuthorizationKind string

const (
	AuthKindWithdrawal     AuthorizationKind = "WITHDRAWAL"
	AuthKindBalanceInquiry AuthorizationKind = "BALANCE_INQUIRY"
	AuthKindPurchase       AuthorizationKind = "PURCHASE"
	AuthKindRefund         AuthorizationKind = "REFUND"
)

// Authorization records one card/ATM/POS attempt end to end. Every attempt
// is persisted as an audit trail, including declines, which carry a reason
// code and produce no ledger mutation.
type Authorization struct {
	AuthorizationID string               `json:"authorizationID"`
	Channel         AuthorizationChannel `json:"channel"`
	Kind            AuthorizationKind    `json:"kind"`
	Status          AuthorizationStatus  `json:"status"`

	CardID           string `json:"cardID"`
	AccountID        string `json:"accountID"`
	MaskedCardNumber string `json:"maskedCardNumber"`

	Amount Money `json:"amount"`
	Tip    Money `json:"tip"`

	// POS fields
	MerchantID       string `json:"merchantID,omitempty"`
	MerchantName     string `json:"merchantName,omitempty"`
	MerchantCategory string `json:"merchantCategory,omitempty"`
	TerminalID       string `json:"terminalID,omitempty"`

	// ATM fields
	ATMID       string `json:"atmID,omitempty"`
	ATMLocation string `json:"atmLocation,omitempty"`

	// IsOnUs is false for off-network transactions, which attract interchange.
	IsOnUs bool `json:"isOnUs"`

	Reference         string      `json:"reference"`
	AuthorizationCode string      `json:"authorizationCode,omitempty"`
	AvailableBalance  Money       `json:"availableBalance"`
	DeclineCode       DeclineCode `json:"declineCode,omitempty"`
	DeclineReason     string      `json:"declineReason,omitempty"`
	CompletedAt       *time.Time  `json:"completedAt,omitempty"`
	AuditFields
}

// IsTerminal reports whether the authorization reached a final state.
func (a *Authorization) IsTerminal() bool {
	return a.Status == AuthCompleted || a.Status == AuthDeclined
}

// MarkPINVerified advances Initiated → PINVerified.
func (a *Authorization) MarkPINVerified() error {
	if a.Status != AuthInitiated {
		return fmt.Errorf("%w: cannot verify PIN in %s state", apperrors.ErrValidation, a.Status)
	}
	a.Status = AuthPINVerified
	return nil
}

// Authorize advances to Authorized, carrying the authorization code and the
// post-transaction available balance.
func (a *Authorization) Authorize(code string, availableBalance Money) error {
	if a.Status != AuthInitiated && a.Status != AuthPINVerified {
		return fmt.Errorf("%w: cannot authorize in %s state", apperrors.ErrValidation, a.Status)
	}
	a.Status = AuthAuthorized
	a.AuthorizationCode = code
	a.AvailableBalance = availableBalance
	return nil
}

// Complete records that the paired journal entry posted. Only Authorized
// attempts complete.
func (a *Authorization) Complete(at time.Time) error {
	if a.Status != AuthAuthorized {
		return fmt.Errorf("%w: cannot complete in %s state", apperrors.ErrValidation, a.Status)
	}
	a.Status = AuthCompleted
	a.CompletedAt = &at
	return nil
}

// Decline terminates the attempt with a stable reason code. Completed
// attempts can never be declined.
func (a *Authorization) Decline(code DeclineCode, reason string) error {
	if a.Status == AuthCompleted {
		return fmt.Errorf("%w: cannot decline a completed authorization", apperrors.ErrValidation)
	}
	a.Status = AuthDeclined
	a.DeclineCode = code
	a.DeclineReason = reason
	return nil
}

// TotalAmount is purchase plus tip for POS, or the plain amount elsewhere.
func (a *Authorization) TotalAmount() (Money, error) {
	if a.Tip.Amount.IsZero() {
		return a.Amount, nil
	}
	return a.Amount.Add(a.Tip)
}
