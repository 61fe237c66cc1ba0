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

type PgxLoanRepository struct {
	BaseRepository
}

// newPgxLoanRepository creates a new repository for loan data.
func newPgxLoanRepository(pool *pgxpool.Pool) *PgxLoanRepository {
	return &PgxLoanRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LoanRepository = (*PgxLoanRepository)(nil)

func toModelLoan(d domain.Loan) models.Loan {
	return models.Loan{
		LoanID:                   d.LoanID,
		LoanNumber:               d.LoanNumber,
		CustomerID:               d.CustomerID,
		DisbursementAccountID:    d.DisbursementAccountID,
		Principal:                d.Principal.Amount,
		OutstandingPrincipal:     d.OutstandingPrincipal.Amount,
		AccruedInterest:          d.AccruedInterest.Amount,
		InterestRate:             d.InterestRate,
		CurrencyCode:             d.Principal.Currency.Code,
		Status:                   string(d.Status),
		DaysPastDue:              d.DaysPastDue,
		ProvisionRate:            d.ProvisionRate,
		ProvisionAmount:          d.ProvisionAmount.Amount,
		LoanGLCode:               d.LoanGLCode,
		InterestReceivableGLCode: d.InterestReceivableGLCode,
		LastAccrualDate:          d.LastAccrualDate,
		DisbursedAt:              d.DisbursedAt,
		ClosedAt:                 d.ClosedAt,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainLoan(m models.Loan) domain.Loan {
	return domain.Loan{
		LoanID:                   m.LoanID,
		LoanNumber:               m.LoanNumber,
		CustomerID:               m.CustomerID,
		DisbursementAccountID:    m.DisbursementAccountID,
		Principal:                domain.NewMoney(m.Principal, m.CurrencyCode),
		OutstandingPrincipal:     domain.NewMoney(m.OutstandingPrincipal, m.CurrencyCode),
		AccruedInterest:          domain.NewMoney(m.AccruedInterest, m.CurrencyCode),
		InterestRate:             m.InterestRate,
		Status:                   domain.LoanStatus(m.Status),
		DaysPastDue:              m.DaysPastDue,
		ProvisionRate:            m.ProvisionRate,
		ProvisionAmount:          domain.NewMoney(m.ProvisionAmount, m.CurrencyCode),
		LoanGLCode:               m.LoanGLCode,
		InterestReceivableGLCode: m.InterestReceivableGLCode,
		LastAccrualDate:          m.LastAccrualDate,
		DisbursedAt:              m.DisbursedAt,
		ClosedAt:                 m.ClosedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const loanColumns = `loan_id, loan_number, customer_id, disbursement_account_id, principal, outstanding_principal, accrued_interest, interest_rate, currency_code, status, days_past_due, provision_rate, provision_amount, loan_gl_code, interest_receivable_gl_code, last_accrual_date, disbursed_at, closed_at, created_at, created_by, last_updated_at, last_updated_by`

func scanLoan(row pgx.Row) (models.Loan, error) {
	var m models.Loan
	err := row.Scan(&m.LoanID, &m.LoanNumber, &m.CustomerID, &m.DisbursementAccountID,
		&m.Principal, &m.OutstandingPrincipal, &m.AccruedInterest, &m.InterestRate,
		&m.CurrencyCode, &m.Status, &m.DaysPastDue, &m.ProvisionRate, &m.ProvisionAmount,
		&m.LoanGLCode, &m.InterestReceivableGLCode, &m.LastAccrualDate, &m.DisbursedAt, &m.ClosedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

// SaveLoan inserts a new loan.
func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	m := toModelLoan(loan)
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.LoanID, m.LoanNumber, m.CustomerID, m.DisbursementAccountID,
		m.Principal, m.OutstandingPrincipal, m.AccruedInterest, m.InterestRate,
		m.CurrencyCode, m.Status, m.DaysPastDue, m.ProvisionRate, m.ProvisionAmount,
		m.LoanGLCode, m.InterestReceivableGLCode, m.LastAccrualDate, m.DisbursedAt, m.ClosedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert loan %s: %w", m.LoanID, translatePgError(err))
	}
	return nil
}

func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1;`
	m, err := scanLoan(r.Pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("loan %s: %w", loanID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	loan := toDomainLoan(m)
	return &loan, nil
}

// UpdateLoan persists loan state outside of a posting, for example days past
// due updates that produced no provision movement.
func (r *PgxLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan) error {
	tag, err := r.Pool.Exec(ctx, updateLoanQuery, updateLoanArgs(toModelLoan(loan))...)
	if err != nil {
		return fmt.Errorf("failed to update loan %s: %w", loan.LoanID, translatePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan %s: %w", loan.LoanID, apperrors.ErrNotFound)
	}
	return nil
}

const updateLoanQuery = `
	UPDATE loans
	SET disbursement_account_id = $2, outstanding_principal = $3, accrued_interest = $4, status = $5,
	    days_past_due = $6, provision_rate = $7, provision_amount = $8, last_accrual_date = $9,
	    disbursed_at = $10, closed_at = $11, last_updated_at = $12, last_updated_by = $13
	WHERE loan_id = $1;
`

func updateLoanArgs(m models.Loan) []any {
	return []any{
		m.LoanID, m.DisbursementAccountID, m.OutstandingPrincipal, m.AccruedInterest, m.Status,
		m.DaysPastDue, m.ProvisionRate, m.ProvisionAmount, m.LastAccrualDate,
		m.DisbursedAt, m.ClosedAt, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

// updateLoanTx persists loan state within a posting transaction.
func updateLoanTx(ctx context.Context, tx pgx.Tx, loan domain.Loan) error {
	tag, err := tx.Exec(ctx, updateLoanQuery, updateLoanArgs(toModelLoan(loan))...)
	if err != nil {
		return fmt.Errorf("failed to update loan %s: %w", loan.LoanID, translatePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan %s: %w", loan.LoanID, apperrors.ErrNotFound)
	}
	return nil
}
