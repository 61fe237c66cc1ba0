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

type PgxGLAccountRepository struct {
	BaseRepository
}

// newPgxGLAccountRepository creates a new repository for chart-of-accounts data.
func newPgxGLAccountRepository(pool *pgxpool.Pool) *PgxGLAccountRepository {
	return &PgxGLAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.GLAccountRepository = (*PgxGLAccountRepository)(nil)

func toModelGLAccount(d domain.GLAccount) models.GLAccount {
	return models.GLAccount{
		GLAccountID:   d.GLAccountID,
		GLCode:        d.GLCode,
		Name:          d.Name,
		AccountType:   string(d.Type),
		Category:      d.Category,
		Status:        string(d.Status),
		ParentGLCode:  d.ParentGLCode,
		Level:         d.Level,
		IsLeaf:        d.IsLeaf,
		CurrencyCode:  d.CurrencyCode,
		DebitBalance:  d.DebitBalance,
		CreditBalance: d.CreditBalance,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainGLAccount(m models.GLAccount) domain.GLAccount {
	return domain.GLAccount{
		GLAccountID:   m.GLAccountID,
		GLCode:        m.GLCode,
		Name:          m.Name,
		Type:          domain.GLAccountType(m.AccountType),
		Category:      m.Category,
		Status:        domain.GLAccountStatus(m.Status),
		ParentGLCode:  m.ParentGLCode,
		Level:         m.Level,
		IsLeaf:        m.IsLeaf,
		CurrencyCode:  m.CurrencyCode,
		DebitBalance:  m.DebitBalance,
		CreditBalance: m.CreditBalance,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const glAccountColumns = `gl_account_id, gl_code, name, account_type, category, status, parent_gl_code, level, is_leaf, currency_code, debit_balance, credit_balance, created_at, created_by, last_updated_at, last_updated_by`

func scanGLAccount(row pgx.Row) (models.GLAccount, error) {
	var m models.GLAccount
	err := row.Scan(&m.GLAccountID, &m.GLCode, &m.Name, &m.AccountType, &m.Category, &m.Status,
		&m.ParentGLCode, &m.Level, &m.IsLeaf, &m.CurrencyCode, &m.DebitBalance, &m.CreditBalance,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

// SaveGLAccount inserts a new chart-of-accounts node.
func (r *PgxGLAccountRepository) SaveGLAccount(ctx context.Context, account domain.GLAccount) error {
	m := toModelGLAccount(account)
	query := `
		INSERT INTO gl_accounts (` + glAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.GLAccountID, m.GLCode, m.Name, m.AccountType, m.Category, m.Status,
		m.ParentGLCode, m.Level, m.IsLeaf, m.CurrencyCode, m.DebitBalance, m.CreditBalance,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert GL account %s: %w", m.GLCode, translatePgError(err))
	}
	return nil
}

func (r *PgxGLAccountRepository) FindGLAccountByCode(ctx context.Context, glCode string) (*domain.GLAccount, error) {
	query := `SELECT ` + glAccountColumns + ` FROM gl_accounts WHERE gl_code = $1;`
	m, err := scanGLAccount(r.Pool.QueryRow(ctx, query, glCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("GL account %s: %w", glCode, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find GL account %s: %w", glCode, err)
	}
	gl := toDomainGLAccount(m)
	return &gl, nil
}

func (r *PgxGLAccountRepository) FindGLAccountsByCodes(ctx context.Context, glCodes []string) (map[string]domain.GLAccount, error) {
	query := `SELECT ` + glAccountColumns + ` FROM gl_accounts WHERE gl_code = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, glCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to query GL accounts: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.GLAccount, len(glCodes))
	for rows.Next() {
		m, err := scanGLAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan GL account: %w", err)
		}
		result[m.GLCode] = toDomainGLAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read GL accounts: %w", err)
	}
	return result, nil
}

func (r *PgxGLAccountRepository) ListGLAccounts(ctx context.Context) ([]domain.GLAccount, error) {
	query := `SELECT ` + glAccountColumns + ` FROM gl_accounts ORDER BY gl_code;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list GL accounts: %w", err)
	}
	defer rows.Close()

	var result []domain.GLAccount
	for rows.Next() {
		m, err := scanGLAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan GL account: %w", err)
		}
		result = append(result, toDomainGLAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read GL accounts: %w", err)
	}
	return result, nil
}
