package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal represents a journal entry header row.
type Journal struct {
	JournalID         string     `db:"journal_id"`
	JournalNumber     string     `db:"journal_number"`
	EntryDate         time.Time  `db:"entry_date"`
	ValueDate         time.Time  `db:"value_date"`
	JournalType       string     `db:"journal_type"`
	Status            string     `db:"status"`
	SourceType        string     `db:"source_type"`
	SourceID          string     `db:"source_id"`
	Reference         string     `db:"reference"`
	CurrencyCode      string     `db:"currency_code"`
	Description       string     `db:"description"`
	PostedBy          string     `db:"posted_by"`
	PostedAt          *time.Time `db:"posted_at"`
	ReversalJournalID string     `db:"reversal_journal_id"`
	OriginalJournalID string     `db:"original_journal_id"`
	AuditFields
}

// JournalLine represents one debit or credit line of a journal entry.
type JournalLine struct {
	JournalID   string          `db:"journal_id"`
	LineNo      int             `db:"line_no"`
	GLCode      string          `db:"gl_code"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	Description string          `db:"description"`
}

// JournalAccountDelta records the signed customer-account balance change a
// journal applied, used to undo the balance effect on reversal.
type JournalAccountDelta struct {
	JournalID string          `db:"journal_id"`
	AccountID string          `db:"account_id"`
	Delta     decimal.Decimal `db:"delta"`
}
