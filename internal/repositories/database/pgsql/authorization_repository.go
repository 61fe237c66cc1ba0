package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	"github.com/hazina-bank/core_ledger/internal/models"
)

type PgxAuthorizationRepository struct {
	BaseRepository
}

// newPgxAuthorizationRepository creates a new repository for authorization
// attempts, declines included.
func newPgxAuthorizationRepository(pool *pgxpool.Pool) *PgxAuthorizationRepository {
	return &PgxAuthorizationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuthorizationRepository = (*PgxAuthorizationRepository)(nil)

func toModelAuthorization(d domain.Authorization) models.Authorization {
	return models.Authorization{
		AuthorizationID:   d.AuthorizationID,
		Channel:           string(d.Channel),
		Kind:              string(d.Kind),
		Status:            string(d.Status),
		CardID:            d.CardID,
		AccountID:         d.AccountID,
		MaskedCardNumber:  d.MaskedCardNumber,
		Amount:            d.Amount.Amount,
		Tip:               d.Tip.Amount,
		CurrencyCode:      d.Amount.Currency.Code,
		MerchantID:        d.MerchantID,
		MerchantName:      d.MerchantName,
		MerchantCategory:  d.MerchantCategory,
		TerminalID:        d.TerminalID,
		ATMID:             d.ATMID,
		ATMLocation:       d.ATMLocation,
		IsOnUs:            d.IsOnUs,
		Reference:         d.Reference,
		AuthorizationCode: d.AuthorizationCode,
		AvailableBalance:  d.AvailableBalance.Amount,
		DeclineCode:       int(d.DeclineCode),
		DeclineReason:     d.DeclineReason,
		CompletedAt:       d.CompletedAt,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainAuthorization(m models.Authorization) domain.Authorization {
	return domain.Authorization{
		AuthorizationID:   m.AuthorizationID,
		Channel:           domain.AuthorizationChannel(m.Channel),
		Kind:              domain.AuthorizationKind(m.Kind),
		Status:            domain.AuthorizationStatus(m.Status),
		CardID:            m.CardID,
		AccountID:         m.AccountID,
		MaskedCardNumber:  m.MaskedCardNumber,
		Amount:            domain.NewMoney(m.Amount, m.CurrencyCode),
		Tip:               domain.NewMoney(m.Tip, m.CurrencyCode),
		MerchantID:        m.MerchantID,
		MerchantName:      m.MerchantName,
		MerchantCategory:  m.MerchantCategory,
		TerminalID:        m.TerminalID,
		ATMID:             m.ATMID,
		ATMLocation:       m.ATMLocation,
		IsOnUs:            m.IsOnUs,
		Reference:         m.Reference,
		AuthorizationCode: m.AuthorizationCode,
		AvailableBalance:  domain.NewMoney(m.AvailableBalance, m.CurrencyCode),
		DeclineCode:       domain.DeclineCode(m.DeclineCode),
		DeclineReason:     m.DeclineReason,
		CompletedAt:       m.CompletedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const authorizationColumns = `authorization_id, channel, kind, status, card_id, account_id, masked_card_number, amount, tip, currency_code, merchant_id, merchant_name, merchant_category, terminal_id, atm_id, atm_location, is_on_us, reference, authorization_code, available_balance, decline_code, decline_reason, completed_at, created_at, created_by, last_updated_at, last_updated_by`

const insertAuthorizationQuery = `
	INSERT INTO authorizations (` + authorizationColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27);
`

func insertAuthorizationArgs(m models.Authorization) []any {
	return []any{
		m.AuthorizationID, m.Channel, m.Kind, m.Status, m.CardID, m.AccountID, m.MaskedCardNumber,
		m.Amount, m.Tip, m.CurrencyCode, m.MerchantID, m.MerchantName, m.MerchantCategory, m.TerminalID,
		m.ATMID, m.ATMLocation, m.IsOnUs, m.Reference, m.AuthorizationCode, m.AvailableBalance,
		m.DeclineCode, m.DeclineReason, m.CompletedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

// SaveAuthorization inserts an authorization record. Declines come through
// here directly; completed attempts are written by CommitPosting instead so
// they land in the same transaction as their journal entry.
func (r *PgxAuthorizationRepository) SaveAuthorization(ctx context.Context, auth domain.Authorization) error {
	m := toModelAuthorization(auth)
	_, err := r.Pool.Exec(ctx, insertAuthorizationQuery, insertAuthorizationArgs(m)...)
	if err != nil {
		return fmt.Errorf("failed to insert authorization %s: %w", m.AuthorizationID, translatePgError(err))
	}
	return nil
}

func (r *PgxAuthorizationRepository) ListAuthorizationsByCard(ctx context.Context, cardID string, limit int) ([]domain.Authorization, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + authorizationColumns + ` FROM authorizations WHERE card_id = $1 ORDER BY created_at DESC LIMIT $2;`
	rows, err := r.Pool.Query(ctx, query, cardID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list authorizations for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var result []domain.Authorization
	for rows.Next() {
		var m models.Authorization
		err := rows.Scan(&m.AuthorizationID, &m.Channel, &m.Kind, &m.Status, &m.CardID, &m.AccountID, &m.MaskedCardNumber,
			&m.Amount, &m.Tip, &m.CurrencyCode, &m.MerchantID, &m.MerchantName, &m.MerchantCategory, &m.TerminalID,
			&m.ATMID, &m.ATMLocation, &m.IsOnUs, &m.Reference, &m.AuthorizationCode, &m.AvailableBalance,
			&m.DeclineCode, &m.DeclineReason, &m.CompletedAt,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to scan authorization: %w", err)
		}
		result = append(result, toDomainAuthorization(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read authorizations: %w", err)
	}
	return result, nil
}

// insertAuthorizationTx writes an authorization within a posting transaction.
func insertAuthorizationTx(ctx context.Context, tx pgx.Tx, auth domain.Authorization) error {
	m := toModelAuthorization(auth)
	_, err := tx.Exec(ctx, insertAuthorizationQuery, insertAuthorizationArgs(m)...)
	if err != nil {
		return fmt.Errorf("failed to insert authorization %s: %w", m.AuthorizationID, translatePgError(err))
	}
	return nil
}
