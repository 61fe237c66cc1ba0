package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	"github.com/hazina-bank/core_ledger/internal/models"
)

type PgxCardRepository struct {
	BaseRepository
}

// newPgxCardRepository creates a new repository for card data.
func newPgxCardRepository(pool *pgxpool.Pool) *PgxCardRepository {
	return &PgxCardRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CardRepository = (*PgxCardRepository)(nil)

func toModelCard(d domain.Card) models.Card {
	return models.Card{
		CardID:               d.CardID,
		AccountID:            d.AccountID,
		CustomerID:           d.CustomerID,
		CardNumber:           d.CardNumber,
		NameOnCard:           d.NameOnCard,
		Status:               string(d.Status),
		PINHash:              d.PINHash,
		ExpiresAt:            d.ExpiresAt,
		CurrencyCode:         d.DailyWithdrawalLimit.Currency.Code,
		DailyWithdrawalLimit: d.DailyWithdrawalLimit.Amount,
		DailyPurchaseLimit:   d.DailyPurchaseLimit.Amount,
		WithdrawnToday:       d.WithdrawnToday.Amount,
		PurchasedToday:       d.PurchasedToday.Amount,
		UsageDate:            d.UsageDate,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainCard(m models.Card) domain.Card {
	return domain.Card{
		CardID:               m.CardID,
		AccountID:            m.AccountID,
		CustomerID:           m.CustomerID,
		CardNumber:           m.CardNumber,
		NameOnCard:           m.NameOnCard,
		Status:               domain.CardStatus(m.Status),
		PINHash:              m.PINHash,
		ExpiresAt:            m.ExpiresAt,
		DailyWithdrawalLimit: domain.NewMoney(m.DailyWithdrawalLimit, m.CurrencyCode),
		DailyPurchaseLimit:   domain.NewMoney(m.DailyPurchaseLimit, m.CurrencyCode),
		WithdrawnToday:       domain.NewMoney(m.WithdrawnToday, m.CurrencyCode),
		PurchasedToday:       domain.NewMoney(m.PurchasedToday, m.CurrencyCode),
		UsageDate:            m.UsageDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const cardColumns = `card_id, account_id, customer_id, card_number, name_on_card, status, pin_hash, expires_at, currency_code, daily_withdrawal_limit, daily_purchase_limit, withdrawn_today, purchased_today, usage_date, created_at, created_by, last_updated_at, last_updated_by`

func scanCard(row pgx.Row) (models.Card, error) {
	var m models.Card
	err := row.Scan(&m.CardID, &m.AccountID, &m.CustomerID, &m.CardNumber, &m.NameOnCard, &m.Status,
		&m.PINHash, &m.ExpiresAt, &m.CurrencyCode, &m.DailyWithdrawalLimit, &m.DailyPurchaseLimit,
		&m.WithdrawnToday, &m.PurchasedToday, &m.UsageDate,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

// SaveCard inserts a newly issued card.
func (r *PgxCardRepository) SaveCard(ctx context.Context, card domain.Card) error {
	m := toModelCard(card)
	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CardID, m.AccountID, m.CustomerID, m.CardNumber, m.NameOnCard, m.Status,
		m.PINHash, m.ExpiresAt, m.CurrencyCode, m.DailyWithdrawalLimit, m.DailyPurchaseLimit,
		m.WithdrawnToday, m.PurchasedToday, m.UsageDate,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert card %s: %w", m.CardID, translatePgError(err))
	}
	return nil
}

func (r *PgxCardRepository) FindCardByNumber(ctx context.Context, cardNumber string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_number = $1;`
	m, err := scanCard(r.Pool.QueryRow(ctx, query, cardNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find card: %w", err)
	}
	card := toDomainCard(m)
	return &card, nil
}

// UpdateCard persists card state outside of a posting, for example a block
// or a PIN change.
func (r *PgxCardRepository) UpdateCard(ctx context.Context, card domain.Card) error {
	tag, err := r.Pool.Exec(ctx, updateCardQuery, updateCardArgs(toModelCard(card))...)
	if err != nil {
		return fmt.Errorf("failed to update card %s: %w", card.CardID, translatePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", card.CardID, apperrors.ErrNotFound)
	}
	return nil
}

const updateCardQuery = `
	UPDATE cards
	SET status = $2, pin_hash = $3, daily_withdrawal_limit = $4, daily_purchase_limit = $5,
	    withdrawn_today = $6, purchased_today = $7, usage_date = $8, last_updated_at = $9, last_updated_by = $10
	WHERE card_id = $1;
`

func updateCardArgs(m models.Card) []any {
	return []any{
		m.CardID, m.Status, m.PINHash, m.DailyWithdrawalLimit, m.DailyPurchaseLimit,
		m.WithdrawnToday, m.PurchasedToday, m.UsageDate, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

// updateCardTx persists the card within a posting transaction: usage counter
// updates for authorizations, the full row for a card issued together with
// its issuance fee.
func updateCardTx(ctx context.Context, tx pgx.Tx, card domain.Card) error {
	m := toModelCard(card)
	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (card_id) DO UPDATE
		SET status = EXCLUDED.status, pin_hash = EXCLUDED.pin_hash,
		    daily_withdrawal_limit = EXCLUDED.daily_withdrawal_limit,
		    daily_purchase_limit = EXCLUDED.daily_purchase_limit,
		    withdrawn_today = EXCLUDED.withdrawn_today,
		    purchased_today = EXCLUDED.purchased_today,
		    usage_date = EXCLUDED.usage_date,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := tx.Exec(ctx, query,
		m.CardID, m.AccountID, m.CustomerID, m.CardNumber, m.NameOnCard, m.Status,
		m.PINHash, m.ExpiresAt, m.CurrencyCode, m.DailyWithdrawalLimit, m.DailyPurchaseLimit,
		m.WithdrawnToday, m.PurchasedToday, m.UsageDate,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to upsert card %s: %w", card.CardID, translatePgError(err))
	}
	return nil
}
