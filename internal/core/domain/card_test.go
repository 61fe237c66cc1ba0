package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazina-bank/core_ledger/internal/core/domain"
)

func testCard(t *testing.T) *domain.Card {
	t.Helper()
	now := time.Now().UTC()
	card := &domain.Card{
		CardID:               "card-1",
		AccountID:            "acc-1",
		CustomerID:           "cust-1",
		CardNumber:           "5412345678901234",
		NameOnCard:           "J DOE",
		Status:               domain.CardActive,
		ExpiresAt:            now.AddDate(4, 0, 0),
		DailyWithdrawalLimit: kes("40000"),
		DailyPurchaseLimit:   kes("100000"),
		WithdrawnToday:       domain.ZeroMoney("KES"),
		PurchasedToday:       domain.ZeroMoney("KES"),
		UsageDate:            now.Truncate(24 * time.Hour),
		AuditFields:          domain.NewAuditFields("tester", now),
	}
	require.NoError(t, card.SetPIN("1234"))
	return card
}

func TestCardPIN(t *testing.T) {
	card := testCard(t)
	assert.True(t, card.VerifyPIN("1234"))
	assert.False(t, card.VerifyPIN("4321"))
}

func TestCardUsability(t *testing.T) {
	now := time.Now().UTC()
	card := testCard(t)
	assert.True(t, card.IsUsable(now))

	card.Status = domain.CardBlocked
	assert.False(t, card.IsUsable(now))

	card.Status = domain.CardActive
	assert.False(t, card.IsUsable(card.ExpiresAt.Add(time.Hour)))
}

func TestCardDailyLimits(t *testing.T) {
	now := time.Now().UTC()
	card := testCard(t)

	within, err := card.WithinLimit(kes("40000"), domain.CardATMWithdrawal, now)
	require.NoError(t, err)
	assert.True(t, within)

	require.NoError(t, card.RecordUsage(kes("30000"), domain.CardATMWithdrawal, now))

	within, err = card.WithinLimit(kes("10000"), domain.CardATMWithdrawal, now)
	require.NoError(t, err)
	assert.True(t, within)

	within, err = card.WithinLimit(kes("10000.01"), domain.CardATMWithdrawal, now)
	require.NoError(t, err)
	assert.False(t, within)

	// Purchase bucket is independent of the withdrawal bucket.
	within, err = card.WithinLimit(kes("100000"), domain.CardPOSPurchase, now)
	require.NoError(t, err)
	assert.True(t, within)
}

func TestCardUsageRollsOverAtMidnight(t *testing.T) {
	now := time.Now().UTC()
	card := testCard(t)
	card.UsageDate = now.Truncate(24 * time.Hour).AddDate(0, 0, -1)
	card.WithdrawnToday = kes("40000")

	// Yesterday's usage no longer counts against today's limit.
	within, err := card.WithinLimit(kes("40000"), domain.CardATMWithdrawal, now)
	require.NoError(t, err)
	assert.True(t, within)
	assert.True(t, card.WithdrawnToday.IsZero())
	assert.Equal(t, now.Truncate(24*time.Hour), card.UsageDate)
}

func TestCardMaskedNumber(t *testing.T) {
	card := testCard(t)
	assert.Equal(t, "5412****1234", card.MaskedNumber())

	card.CardNumber = "1234"
	assert.Equal(t, "****", card.MaskedNumber())
}
