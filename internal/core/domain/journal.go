package domain

import (
	"fmt"
	"time"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// JournalType classifies a journal entry.
type JournalType string

const (
	JournalStandard  JournalType = "STANDARD"
	JournalAccrual   JournalType = "ACCRUAL"
	JournalProvision JournalType = "PROVISION"
	JournalReversal  JournalType = "REVERSAL"
)

// JournalStatus is the lifecycle state of a journal entry.
type JournalStatus string

const (
	JournalDraft    JournalStatus = "DRAFT"
	JournalPosted   JournalStatus = "POSTED"
	JournalReversed JournalStatus = "REVERSED"
)

// JournalLine is one debit or credit against a GL code. Exactly one of
// Debit/Credit is non-zero.
type JournalLine struct {
	LineNo      int             `json:"lineNo"`
	GLCode      string          `json:"glCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// JournalEntry is an ordered, balanced set of debit/credit lines recording one
// accounting event. Entries are built in Draft, validated, then posted; a
// posted entry is immutable and corrections go through reversing entries.
type JournalEntry struct {
	JournalID     string        `json:"journalID"`
	JournalNumber string        `json:"journalNumber"` // unique, sequential per type
	EntryDate     time.Time     `json:"entryDate"`
	ValueDate     time.Time     `json:"valueDate"`
	Type          JournalType   `json:"type"`
	Status        JournalStatus `json:"status"`
	SourceType    string        `json:"sourceType"` // e.g. AccountTransaction, LoanRepayment
	SourceID      string        `json:"sourceID"`   // originating aggregate, traceability only
	Reference     string        `json:"reference"`
	CurrencyCode  string        `json:"currencyCode"`
	Description   string        `json:"description"`
	Lines         []JournalLine `json:"lines"`
	PostedBy      string        `json:"postedBy,omitempty"`
	PostedAt      *time.Time    `json:"postedAt,omitempty"`
	// ReversalJournalID links a reversed entry to the entry that reversed it.
	ReversalJournalID string `json:"reversalJournalID,omitempty"`
	// OriginalJournalID links a reversal entry back to the entry it reverses.
	OriginalJournalID string `json:"originalJournalID,omitempty"`
	AuditFields
}

// NewJournalEntry constructs a Draft entry with no lines.
func NewJournalEntry(journalID, journalNumber string, entryDate, valueDate time.Time, jType JournalType,
	sourceType, sourceID, reference, currencyCode, createdBy, description string) *JournalEntry {
	return &JournalEntry{
		JournalID:     journalID,
		JournalNumber: journalNumber,
		EntryDate:     entryDate,
		ValueDate:     valueDate,
		Type:          jType,
		Status:        JournalDraft,
		SourceType:    sourceType,
		SourceID:      sourceID,
		Reference:     reference,
		CurrencyCode:  currencyCode,
		Description:   description,
		AuditFields:   NewAuditFields(createdBy, entryDate),
	}
}

func (j *JournalEntry) addLine(glCode string, debit, credit decimal.Decimal, description string) error {
	if j.Status != JournalDraft {
		return fmt.Errorf("%w: journal %s is %s", apperrors.ErrAlreadyPosted, j.JournalNumber, j.Status)
	}
	amount := debit
	if amount.IsZero() {
		amount = credit
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: line amount %s on journal %s", apperrors.ErrInvalidAmount, amount, j.JournalNumber)
	}
	j.Lines = append(j.Lines, JournalLine{
		LineNo:      len(j.Lines) + 1,
		GLCode:      glCode,
		Debit:       debit,
		Credit:      credit,
		Description: description,
	})
	return nil
}

// AddDebitLine appends a debit against the given GL code.
func (j *JournalEntry) AddDebitLine(glCode string, amount decimal.Decimal, description string) error {
	return j.addLine(glCode, amount, decimal.Zero, description)
}

// AddCreditLine appends a credit against the given GL code.
func (j *JournalEntry) AddCreditLine(glCode string, amount decimal.Decimal, description string) error {
	return j.addLine(glCode, decimal.Zero, amount, description)
}

// TotalDebit sums all debit lines.
func (j *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range j.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredit sums all credit lines.
func (j *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range j.Lines {
		total = total.Add(l.Credit)
	}
	return total
}

// IsBalanced reports exact equality of total debits and credits. No tolerance.
func (j *JournalEntry) IsBalanced() bool {
	return j.TotalDebit().Equal(j.TotalCredit())
}

// Post transitions the entry from Draft to Posted. After Post the entry is
// immutable; GL balance application happens in the same atomic commit.
func (j *JournalEntry) Post(by string, at time.Time) error {
	if j.Status != JournalDraft {
		return fmt.Errorf("%w: journal %s is %s", apperrors.ErrAlreadyPosted, j.JournalNumber, j.Status)
	}
	if len(j.Lines) == 0 {
		return fmt.Errorf("%w: journal %s has no lines", apperrors.ErrValidation, j.JournalNumber)
	}
	if !j.IsBalanced() {
		return fmt.Errorf("%w: journal %s debit %s credit %s",
			apperrors.ErrUnbalancedEntry, j.JournalNumber, j.TotalDebit(), j.TotalCredit())
	}
	j.Status = JournalPosted
	j.PostedBy = by
	j.PostedAt = &at
	j.Touch(by, at)
	return nil
}

// BuildReversal creates a new Draft entry with swapped debit/credit sides
// referencing this entry. Only posted, not-yet-reversed entries can reverse.
func (j *JournalEntry) BuildReversal(journalID, journalNumber, by string, at time.Time) (*JournalEntry, error) {
	if j.Status != JournalPosted {
		return nil, fmt.Errorf("%w: can only reverse a posted journal, %s is %s",
			apperrors.ErrValidation, j.JournalNumber, j.Status)
	}
	rev := NewJournalEntry(journalID, journalNumber, at, at, JournalReversal,
		j.SourceType, j.SourceID, fmt.Sprintf("Reversal of %s", j.Reference), j.CurrencyCode, by,
		fmt.Sprintf("Reversal of journal %s", j.JournalNumber))
	rev.OriginalJournalID = j.JournalID
	for _, l := range j.Lines {
		rev.Lines = append(rev.Lines, JournalLine{
			LineNo:      l.LineNo,
			GLCode:      l.GLCode,
			Debit:       l.Credit, // swap
			Credit:      l.Debit,  // swap
			Description: fmt.Sprintf("Reversal: %s", l.Description),
		})
	}
	return rev, nil
}

// MarkReversed records that a reversal entry has been posted against this one.
func (j *JournalEntry) MarkReversed(reversalJournalID, by string, at time.Time) error {
	if j.Status != JournalPosted {
		return fmt.Errorf("%w: journal %s is %s", apperrors.ErrValidation, j.JournalNumber, j.Status)
	}
	j.Status = JournalReversed
	j.ReversalJournalID = reversalJournalID
	j.Touch(by, at)
	return nil
}
