package domain

import (
	"fmt"
	"time"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// LoanStatus is the servicing lifecycle of a loan.
type LoanStatus string

const (
	LoanApproved   LoanStatus = "APPROVED"
	LoanActive     LoanStatus = "ACTIVE"
	LoanPaidInFull LoanStatus = "PAID_IN_FULL"
)

// PaymentAllocation is the result of running a repayment through the
// waterfall: interest is always settled before principal. The order is a
// policy invariant and is not configurable per call.
type PaymentAllocation struct {
	Total              Money `json:"total"`
	Interest           Money `json:"interest"`
	Principal          Money `json:"principal"`
	RemainingPrincipal Money `json:"remainingPrincipal"`
}

// ProvisionPolicy computes a provision rate from days past due. The engine
// only posts the delta between the previous and newly computed provision.
type ProvisionPolicy func(daysPastDue int) decimal.Decimal

// StandardProvisionPolicy is the default days-past-due banding.
func StandardProvisionPolicy(daysPastDue int) decimal.Decimal {
	switch {
	case daysPastDue <= 30:
		return decimal.NewFromFloat(0.01)
	case daysPastDue <= 90:
		return decimal.NewFromFloat(0.05)
	case daysPastDue <= 180:
		return decimal.NewFromFloat(0.20)
	case daysPastDue <= 365:
		return decimal.NewFromFloat(0.50)
	default:
		return decimal.NewFromInt(1)
	}
}

// Loan tracks outstanding principal, accrued interest and provisioning for a
// disbursed credit facility.
type Loan struct {
	LoanID                string     `json:"loanID"`
	LoanNumber            string     `json:"loanNumber"`
	CustomerID            string     `json:"customerID"`
	DisbursementAccountID string     `json:"disbursementAccountID"`
	Principal             Money      `json:"principal"`
	OutstandingPrincipal  Money      `json:"outstandingPrincipal"`
	AccruedInterest       Money      `json:"accruedInterest"`
	InterestRate          decimal.Decimal `json:"interestRate"` // annual percentage rate
	Status                LoanStatus `json:"status"`
	DaysPastDue           int        `json:"daysPastDue"`
	ProvisionRate         decimal.Decimal `json:"provisionRate"`
	ProvisionAmount       Money      `json:"provisionAmount"`
	LoanGLCode            string     `json:"loanGLCode"`
	InterestReceivableGLCode string  `json:"interestReceivableGLCode"`
	LastAccrualDate       time.Time  `json:"lastAccrualDate"`
	DisbursedAt           *time.Time `json:"disbursedAt,omitempty"`
	ClosedAt              *time.Time `json:"closedAt,omitempty"`
	AuditFields
}

// Disburse activates an approved loan against the given customer account.
func (l *Loan) Disburse(accountID, by string, at time.Time) error {
	if l.Status != LoanApproved {
		return fmt.Errorf("%w: loan %s is %s, only approved loans disburse", apperrors.ErrValidation, l.LoanNumber, l.Status)
	}
	l.DisbursementAccountID = accountID
	l.Status = LoanActive
	l.DisbursedAt = &at
	l.LastAccrualDate = at
	l.Touch(by, at)
	return nil
}

// AllocatePayment runs the repayment waterfall without mutating the loan:
// interest first, then principal.
func (l *Loan) AllocatePayment(payment Money) (PaymentAllocation, error) {
	if !payment.IsPositive() {
		return PaymentAllocation{}, fmt.Errorf("%w: repayment of %s", apperrors.ErrInvalidAmount, payment)
	}
	interest, err := MinMoney(payment, l.AccruedInterest)
	if err != nil {
		return PaymentAllocation{}, err
	}
	principal, err := payment.Sub(interest)
	if err != nil {
		return PaymentAllocation{}, err
	}
	remaining, err := l.OutstandingPrincipal.Sub(principal)
	if err != nil {
		return PaymentAllocation{}, err
	}
	return PaymentAllocation{
		Total:              payment,
		Interest:           interest,
		Principal:          principal,
		RemainingPrincipal: remaining,
	}, nil
}

// ApplyRepayment mutates the loan with an allocation produced by
// AllocatePayment. A loan whose principal and interest both reach zero closes.
func (l *Loan) ApplyRepayment(alloc PaymentAllocation, by string, at time.Time) error {
	if l.Status != LoanActive {
		return fmt.Errorf("%w: loan %s is %s, only active loans accept payments", apperrors.ErrValidation, l.LoanNumber, l.Status)
	}
	ai, err := l.AccruedInterest.Sub(alloc.Interest)
	if err != nil {
		return err
	}
	op, err := l.OutstandingPrincipal.Sub(alloc.Principal)
	if err != nil {
		return err
	}
	if op.IsNegative() {
		return fmt.Errorf("%w: repayment principal %s exceeds outstanding %s",
			apperrors.ErrValidation, alloc.Principal, l.OutstandingPrincipal)
	}
	l.AccruedInterest = ai
	l.OutstandingPrincipal = op
	if l.OutstandingPrincipal.IsZero() && l.AccruedInterest.IsZero() {
		l.Status = LoanPaidInFull
		l.ClosedAt = &at
	}
	l.Touch(by, at)
	return nil
}

// AccrueInterest accrues daily simple interest since the last accrual date
// and returns the newly accrued amount (zero when nothing accrued). The daily
// rate is rate/100/365; the accrued amount rounds to minor units.
func (l *Loan) AccrueInterest(asOf time.Time, by string) (Money, error) {
	zero := ZeroMoney(l.Principal.Currency.Code)
	if l.Status != LoanActive {
		return zero, nil
	}
	days := int(asOf.Sub(l.LastAccrualDate).Hours() / 24)
	if days <= 0 {
		return zero, nil
	}
	dailyRate := l.InterestRate.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(365))
	accrued := l.OutstandingPrincipal.MulRate(dailyRate.Mul(decimal.NewFromInt(int64(days))))
	if !accrued.IsPositive() {
		return zero, nil
	}
	ai, err := l.AccruedInterest.Add(accrued)
	if err != nil {
		return zero, err
	}
	l.AccruedInterest = ai
	l.LastAccrualDate = asOf
	l.Touch(by, asOf)
	return accrued, nil
}

// RecomputeProvision applies the policy to the current days-past-due and
// returns the signed delta against the previously held provision. A positive
// delta means the provision grew; negative means part of it releases.
func (l *Loan) RecomputeProvision(policy ProvisionPolicy, asOf time.Time, by string) (Money, error) {
	zero := ZeroMoney(l.Principal.Currency.Code)
	if l.Status != LoanActive {
		return zero, nil
	}
	newRate := policy(l.DaysPastDue)
	if newRate.Equal(l.ProvisionRate) {
		return zero, nil
	}
	newAmount := l.OutstandingPrincipal.MulRate(newRate)
	delta, err := newAmount.Sub(l.ProvisionAmount)
	if err != nil {
		return zero, err
	}
	l.ProvisionRate = newRate
	l.ProvisionAmount = newAmount
	l.Touch(by, asOf)
	return delta, nil
}
