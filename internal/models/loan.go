package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan represents a credit facility row.
type Loan struct {
	LoanID                   string          `db:"loan_id"`
	LoanNumber               string          `db:"loan_number"`
	CustomerID               string          `db:"customer_id"`
	DisbursementAccountID    string          `db:"disbursement_account_id"`
	Principal                decimal.Decimal `db:"principal"`
	OutstandingPrincipal     decimal.Decimal `db:"outstanding_principal"`
	AccruedInterest          decimal.Decimal `db:"accrued_interest"`
	InterestRate             decimal.Decimal `db:"interest_rate"`
	CurrencyCode             string          `db:"currency_code"`
	Status                   string          `db:"status"`
	DaysPastDue              int             `db:"days_past_due"`
	ProvisionRate            decimal.Decimal `db:"provision_rate"`
	ProvisionAmount          decimal.Decimal `db:"provision_amount"`
	LoanGLCode               string          `db:"loan_gl_code"`
	InterestReceivableGLCode string          `db:"interest_receivable_gl_code"`
	LastAccrualDate          time.Time       `db:"last_accrual_date"`
	DisbursedAt              *time.Time      `db:"disbursed_at"`
	ClosedAt                 *time.Time      `db:"closed_at"`
	AuditFields
}
