package domain

import (
	"fmt"
	"time"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"golang.org/x/crypto/bcrypt"
)

// CardStatus is the lifecycle status of a payment card.
type CardStatus string

const (
	CardActive  CardStatus = "ACTIVE"
	CardBlocked CardStatus = "BLOCKED"
	CardExpired CardStatus = "EXPIRED"
)

// CardTransactionKind distinguishes limit buckets for card usage.
type CardTransactionKind string

const (
	CardATMWithdrawal CardTransactionKind = "ATM_WITHDRAWAL"
	CardPOSPurchase   CardTransactionKind = "POS_PURCHASE"
)

// Card is a debit card linked to one customer account. It owns the PIN hash
// and the daily usage limits the authorization state machine checks before
// any posting is attempted.
type Card struct {
	CardID     string     `json:"cardID"`
	AccountID  string     `json:"accountID"`
	CustomerID string     `json:"customerID"`
	CardNumber string     `json:"cardNumber"`
	NameOnCard string     `json:"nameOnCard"`
	Status     CardStatus `json:"status"`
	PINHash    string     `json:"-"`
	ExpiresAt  time.Time  `json:"expiresAt"`

	DailyWithdrawalLimit Money `json:"dailyWithdrawalLimit"`
	DailyPurchaseLimit   Money `json:"dailyPurchaseLimit"`

	// Usage counters roll over at midnight UTC.
	WithdrawnToday Money     `json:"withdrawnToday"`
	PurchasedToday Money     `json:"purchasedToday"`
	UsageDate      time.Time `json:"usageDate"`
	AuditFields
}

// SetPIN stores a bcrypt hash of the given PIN.
func (c *Card) SetPIN(pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing card PIN: %w", err)
	}
	c.PINHash = string(hash)
	return nil
}

// VerifyPIN reports whether the PIN matches the stored hash.
func (c *Card) VerifyPIN(pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.PINHash), []byte(pin)) == nil
}

// IsUsable reports whether the card may initiate transactions at the given time.
func (c *Card) IsUsable(at time.Time) bool {
	return c.Status == CardActive && at.Before(c.ExpiresAt)
}

func (c *Card) rollUsage(at time.Time) {
	day := at.UTC().Truncate(24 * time.Hour)
	if !c.UsageDate.Equal(day) {
		c.UsageDate = day
		c.WithdrawnToday = ZeroMoney(c.DailyWithdrawalLimit.Currency.Code)
		c.PurchasedToday = ZeroMoney(c.DailyPurchaseLimit.Currency.Code)
	}
}

// WithinLimit reports whether spending the amount now would stay within the
// daily limit for the given transaction kind.
func (c *Card) WithinLimit(amount Money, kind CardTransactionKind, at time.Time) (bool, error) {
	c.rollUsage(at)
	var used, limit Money
	switch kind {
	case CardATMWithdrawal:
		used, limit = c.WithdrawnToday, c.DailyWithdrawalLimit
	case CardPOSPurchase:
		used, limit = c.PurchasedToday, c.DailyPurchaseLimit
	default:
		return false, fmt.Errorf("%w: unknown card transaction kind %q", apperrors.ErrValidation, kind)
	}
	total, err := used.Add(amount)
	if err != nil {
		return false, err
	}
	over, err := total.GreaterThan(limit)
	if err != nil {
		return false, err
	}
	return !over, nil
}

// RecordUsage adds a successful transaction to the daily usage counters.
func (c *Card) RecordUsage(amount Money, kind CardTransactionKind, at time.Time) error {
	c.rollUsage(at)
	switch kind {
	case CardATMWithdrawal:
		t, err := c.WithdrawnToday.Add(amount)
		if err != nil {
			return err
		}
		c.WithdrawnToday = t
	case CardPOSPurchase:
		t, err := c.PurchasedToday.Add(amount)
		if err != nil {
			return err
		}
		c.PurchasedToday = t
	default:
		return fmt.Errorf("%w: unknown card transaction kind %q", apperrors.ErrValidation, kind)
	}
	c.Touch(c.LastUpdatedBy, at)
	return nil
}

// MaskedNumber hides all but the first and last four digits.
func (c *Card) MaskedNumber() string {
	if len(c.CardNumber) < 8 {
		return "****"
	}
	return c.CardNumber[:4] + "****" + c.CardNumber[len(c.CardNumber)-4:]
}
