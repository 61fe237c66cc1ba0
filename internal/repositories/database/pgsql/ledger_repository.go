package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	"github.com/hazina-bank/core_ledger/internal/models"
)

// PgxLedgerRepository is the unit-of-work boundary. Everything a posting
// touches commits in one database transaction: journal header and lines,
// customer account balances, GL balances, aggregate snapshots and the
// authorization record.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

func toModelJournal(d *domain.JournalEntry) models.Journal {
	return models.Journal{
		JournalID:         d.JournalID,
		JournalNumber:     d.JournalNumber,
		EntryDate:         d.EntryDate,
		ValueDate:         d.ValueDate,
		JournalType:       string(d.Type),
		Status:            string(d.Status),
		SourceType:        d.SourceType,
		SourceID:          d.SourceID,
		Reference:         d.Reference,
		CurrencyCode:      d.CurrencyCode,
		Description:       d.Description,
		PostedBy:          d.PostedBy,
		PostedAt:          d.PostedAt,
		ReversalJournalID: d.ReversalJournalID,
		OriginalJournalID: d.OriginalJournalID,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// CommitPosting persists the posting atomically or not at all. The entry must
// already be posted and balanced; unbalanced entries are rejected again here
// as the last line of defense before durability.
func (r *PgxLedgerRepository) CommitPosting(ctx context.Context, p portsrepo.Posting) error {
	if p.Entry == nil {
		return fmt.Errorf("%w: posting without a journal entry", apperrors.ErrValidation)
	}
	entries := append([]*domain.JournalEntry{p.Entry}, p.SupplementalEntries...)
	for _, entry := range entries {
		if entry.Status != domain.JournalPosted {
			return fmt.Errorf("%w: journal %s is %s", apperrors.ErrValidation, entry.JournalNumber, entry.Status)
		}
		if !entry.IsBalanced() {
			return fmt.Errorf("%w: journal %s debit %s credit %s",
				apperrors.ErrUnbalancedEntry, entry.JournalNumber, entry.TotalDebit(), entry.TotalCredit())
		}
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	for _, entry := range entries {
		if err := insertJournalTx(ctx, tx, entry); err != nil {
			return err
		}
	}
	if len(p.AccountDeltas) > 0 {
		if err := lockAndApplyDeltas(ctx, tx, p.AccountDeltas, p.Entry.PostedBy, p.Entry.LastUpdatedAt); err != nil {
			return err
		}
		if err := insertAccountDeltasTx(ctx, tx, p.Entry.JournalID, p.AccountDeltas); err != nil {
			return err
		}
	}
	for _, entry := range entries {
		if err := applyGLBalancesTx(ctx, tx, entry); err != nil {
			return err
		}
	}
	if p.Loan != nil {
		if err := updateLoanTx(ctx, tx, *p.Loan); err != nil {
			return err
		}
	}
	if p.Card != nil {
		if err := updateCardTx(ctx, tx, *p.Card); err != nil {
			return err
		}
	}
	if p.Authorization != nil {
		if err := insertAuthorizationTx(ctx, tx, *p.Authorization); err != nil {
			return err
		}
	}
	if p.ReversedJournal != nil {
		if err := markJournalReversedTx(ctx, tx, p.ReversedJournal); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

func insertJournalTx(ctx context.Context, tx pgx.Tx, entry *domain.JournalEntry) error {
	m := toModelJournal(entry)
	_, err := tx.Exec(ctx, `
		INSERT INTO journals (`+journalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`,
		m.JournalID, m.JournalNumber, m.EntryDate, m.ValueDate, m.JournalType, m.Status,
		m.SourceType, m.SourceID, m.Reference, m.CurrencyCode, m.Description,
		m.PostedBy, m.PostedAt, m.ReversalJournalID, m.OriginalJournalID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert journal %s: %w", m.JournalNumber, translatePgError(err))
	}

	batch := &pgx.Batch{}
	for _, l := range entry.Lines {
		batch.Queue(`
			INSERT INTO journal_lines (journal_id, line_no, gl_code, debit, credit, description)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, entry.JournalID, l.LineNo, l.GLCode, l.Debit, l.Credit, l.Description)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range entry.Lines {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert lines for journal %s: %w", m.JournalNumber, translatePgError(err))
		}
	}
	return results.Close()
}

func insertAccountDeltasTx(ctx context.Context, tx pgx.Tx, journalID string, deltas map[string]decimal.Decimal) error {
	batch := &pgx.Batch{}
	for accountID, delta := range deltas {
		batch.Queue(`
			INSERT INTO journal_account_deltas (journal_id, account_id, delta)
			VALUES ($1, $2, $3);
		`, journalID, accountID, delta)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range deltas {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to record account deltas for journal %s: %w", journalID, translatePgError(err))
		}
	}
	return results.Close()
}

// applyGLBalancesTx aggregates the entry lines per GL code and applies them to
// the chart of accounts. Rows lock in code order to keep lock acquisition
// deterministic across concurrent postings.
func applyGLBalancesTx(ctx context.Context, tx pgx.Tx, entry *domain.JournalEntry) error {
	type glMovement struct {
		debit  decimal.Decimal
		credit decimal.Decimal
	}
	movements := make(map[string]glMovement)
	for _, l := range entry.Lines {
		m := movements[l.GLCode]
		m.debit = m.debit.Add(l.Debit)
		m.credit = m.credit.Add(l.Credit)
		movements[l.GLCode] = m
	}
	codes := make([]string, 0, len(movements))
	for code := range movements {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		var current decimal.Decimal
		err := tx.QueryRow(ctx, `SELECT debit_balance FROM gl_accounts WHERE gl_code = $1 FOR UPDATE;`, code).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("gl account %s: %w", code, apperrors.ErrMissingGLConfiguration)
			}
			return fmt.Errorf("failed to lock gl account %s: %w", code, translatePgError(err))
		}
	}
	for _, code := range codes {
		m := movements[code]
		_, err := tx.Exec(ctx, `
			UPDATE gl_accounts
			SET debit_balance = debit_balance + $2, credit_balance = credit_balance + $3,
			    last_updated_at = $4, last_updated_by = $5
			WHERE gl_code = $1;
		`, code, m.debit, m.credit, entry.LastUpdatedAt, entry.PostedBy)
		if err != nil {
			return fmt.Errorf("failed to apply movement to gl account %s: %w", code, translatePgError(err))
		}
	}
	return nil
}

func markJournalReversedTx(ctx context.Context, tx pgx.Tx, original *domain.JournalEntry) error {
	tag, err := tx.Exec(ctx, `
		UPDATE journals
		SET status = $2, reversal_journal_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE journal_id = $1 AND status = $6;
	`, original.JournalID, string(domain.JournalReversed), original.ReversalJournalID,
		original.LastUpdatedAt, original.LastUpdatedBy, string(domain.JournalPosted))
	if err != nil {
		return fmt.Errorf("failed to mark journal %s reversed: %w", original.JournalNumber, translatePgError(err))
	}
	// Zero rows means someone else reversed it between our read and this
	// commit. Surface as a conflict so the caller re-reads and fails cleanly.
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("journal %s already reversed: %w", original.JournalNumber, apperrors.ErrConcurrencyConflict)
	}
	return nil
}
