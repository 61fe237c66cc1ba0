package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card represents a debit card row.
type Card struct {
	CardID               string          `db:"card_id"`
	AccountID            string          `db:"account_id"`
	CustomerID           string          `db:"customer_id"`
	CardNumber           string          `db:"card_number"`
	NameOnCard           string          `db:"name_on_card"`
	Status               string          `db:"status"`
	PINHash              string          `db:"pin_hash"`
	ExpiresAt            time.Time       `db:"expires_at"`
	CurrencyCode         string          `db:"currency_code"`
	DailyWithdrawalLimit decimal.Decimal `db:"daily_withdrawal_limit"`
	DailyPurchaseLimit   decimal.Decimal `db:"daily_purchase_limit"`
	WithdrawnToday       decimal.Decimal `db:"withdrawn_today"`
	PurchasedToday       decimal.Decimal `db:"purchased_today"`
	UsageDate            time.Time       `db:"usage_date"`
	AuditFields
}

// Authorization represents a recorded card/ATM/POS attempt, declines included.
type Authorization struct {
	AuthorizationID   string          `db:"authorization_id"`
	Channel           string          `db:"channel"`
	Kind              string          `db:"kind"`
	Status            string          `db:"status"`
	CardID            string          `db:"card_id"`
	AccountID         string          `db:"account_id"`
	MaskedCardNumber  string          `db:"masked_card_number"`
	Amount            decimal.Decimal `db:"amount"`
	Tip               decimal.Decimal `db:"tip"`
	CurrencyCode      string          `db:"currency_code"`
	MerchantID        string          `db:"merchant_id"`
	MerchantName      string          `db:"merchant_name"`
	MerchantCategory  string          `db:"merchant_category"`
	TerminalID        string          `db:"terminal_id"`
	ATMID             string          `db:"atm_id"`
	ATMLocation       string          `db:"atm_location"`
	IsOnUs            bool            `db:"is_on_us"`
	Reference         string          `db:"reference"`
	AuthorizationCode string          `db:"authorization_code"`
	AvailableBalance  decimal.Decimal `db:"available_balance"`
	DeclineCode       int             `db:"decline_code"`
	DeclineReason     string          `db:"decline_reason"`
	CompletedAt       *time.Time      `db:"completed_at"`
	AuditFields
}
