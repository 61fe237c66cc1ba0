package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	"github.com/hazina-bank/core_ledger/internal/models"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for customer account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:      d.AccountID,
		AccountNumber:  d.AccountNumber,
		CustomerID:     d.CustomerID,
		Balance:        d.Balance.Amount,
		OverdraftLimit: d.OverdraftLimit.Amount,
		CurrencyCode:   d.CurrencyCode(),
		Status:         string(d.Status),
		CustomerGLCode: d.CustomerGLCode,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:      m.AccountID,
		AccountNumber:  m.AccountNumber,
		CustomerID:     m.CustomerID,
		Balance:        domain.NewMoney(m.Balance, m.CurrencyCode),
		OverdraftLimit: domain.NewMoney(m.OverdraftLimit, m.CurrencyCode),
		Status:         domain.AccountStatus(m.Status),
		CustomerGLCode: m.CustomerGLCode,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const accountColumns = `account_id, account_number, customer_id, balance, overdraft_limit, currency_code, status, customer_gl_code, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(&m.AccountID, &m.AccountNumber, &m.CustomerID, &m.Balance, &m.OverdraftLimit,
		&m.CurrencyCode, &m.Status, &m.CustomerGLCode,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID, m.AccountNumber, m.CustomerID, m.Balance, m.OverdraftLimit,
		m.CurrencyCode, m.Status, m.CustomerGLCode,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert account %s: %w", m.AccountID, translatePgError(err))
	}
	return nil
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	account := toDomainAccount(m)
	return &account, nil
}

func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1;`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account number %s: %w", accountNumber, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find account by number %s: %w", accountNumber, err)
	}
	account := toDomainAccount(m)
	return &account, nil
}

// UpdateAccount persists non-balance fields of the account. Balances only
// change through CommitPosting.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := toModelAccount(account)
	query := `
		UPDATE accounts
		SET status = $2, overdraft_limit = $3, customer_gl_code = $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.AccountID, m.Status, m.OverdraftLimit, m.CustomerGLCode, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, translatePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", m.AccountID, apperrors.ErrNotFound)
	}
	return nil
}

// lockAndApplyDeltas locks the affected account rows in deterministic order
// and applies the signed balance deltas. Locking order prevents deadlocks
// between concurrent transfers touching the same pair of accounts. The debit
// precondition is re-verified against the locked balance: the service checked
// it on an unlocked read, and a concurrent posting may have moved the balance
// since. A debit the locked balance can no longer absorb surfaces as
// ErrConcurrencyConflict so the caller retries against fresh state.
func lockAndApplyDeltas(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, by string, at time.Time) error {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		var current, overdraft decimal.Decimal
		err := tx.QueryRow(ctx, `SELECT balance, overdraft_limit FROM accounts WHERE account_id = $1 FOR UPDATE;`, id).Scan(&current, &overdraft)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("account %s: %w", id, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to lock account %s: %w", id, translatePgError(err))
		}
		delta := deltas[id]
		if delta.IsNegative() && current.Add(delta).LessThan(overdraft.Neg()) {
			return fmt.Errorf("account %s balance %s cannot absorb %s: %w",
				id, current, delta, apperrors.ErrConcurrencyConflict)
		}
	}
	for _, id := range ids {
		_, err := tx.Exec(ctx, `
			UPDATE accounts
			SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
			WHERE account_id = $1;
		`, id, deltas[id], at, by)
		if err != nil {
			return fmt.Errorf("failed to apply balance delta to account %s: %w", id, translatePgError(err))
		}
	}
	return nil
}
