package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	"github.com/hazina-bank/core_ledger/internal/models"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal reads and
// journal number issuance.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepository = (*PgxJournalRepository)(nil)

// journalNumberPrefixes maps journal types to their number series.
var journalNumberPrefixes = map[domain.JournalType]string{
	domain.JournalStandard:  "STD",
	domain.JournalAccrual:   "ACR",
	domain.JournalProvision: "PRV",
	domain.JournalReversal:  "REV",
}

func toDomainJournal(m models.Journal, lines []models.JournalLine) domain.JournalEntry {
	j := domain.JournalEntry{
		JournalID:         m.JournalID,
		JournalNumber:     m.JournalNumber,
		EntryDate:         m.EntryDate,
		ValueDate:         m.ValueDate,
		Type:              domain.JournalType(m.JournalType),
		Status:            domain.JournalStatus(m.Status),
		SourceType:        m.SourceType,
		SourceID:          m.SourceID,
		Reference:         m.Reference,
		CurrencyCode:      m.CurrencyCode,
		Description:       m.Description,
		PostedBy:          m.PostedBy,
		PostedAt:          m.PostedAt,
		ReversalJournalID: m.ReversalJournalID,
		OriginalJournalID: m.OriginalJournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	for _, l := range lines {
		j.Lines = append(j.Lines, domain.JournalLine{
			LineNo:      l.LineNo,
			GLCode:      l.GLCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}
	return j
}

const journalColumns = `journal_id, journal_number, entry_date, value_date, journal_type, status, source_type, source_id, reference, currency_code, description, posted_by, posted_at, reversal_journal_id, original_journal_id, created_at, created_by, last_updated_at, last_updated_by`

func scanJournal(row pgx.Row) (models.Journal, error) {
	var m models.Journal
	err := row.Scan(&m.JournalID, &m.JournalNumber, &m.EntryDate, &m.ValueDate, &m.JournalType, &m.Status,
		&m.SourceType, &m.SourceID, &m.Reference, &m.CurrencyCode, &m.Description,
		&m.PostedBy, &m.PostedAt, &m.ReversalJournalID, &m.OriginalJournalID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

func (r *PgxJournalRepository) findLines(ctx context.Context, journalIDs []string) (map[string][]models.JournalLine, error) {
	query := `
		SELECT journal_id, line_no, gl_code, debit, credit, description
		FROM journal_lines WHERE journal_id = ANY($1) ORDER BY journal_id, line_no;
	`
	rows, err := r.Pool.Query(ctx, query, journalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]models.JournalLine, len(journalIDs))
	for rows.Next() {
		var l models.JournalLine
		if err := rows.Scan(&l.JournalID, &l.LineNo, &l.GLCode, &l.Debit, &l.Credit, &l.Description); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		result[l.JournalID] = append(result[l.JournalID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal lines: %w", err)
	}
	return result, nil
}

func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE journal_id = $1;`
	m, err := scanJournal(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("journal %s: %w", journalID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find journal %s: %w", journalID, err)
	}
	lines, err := r.findLines(ctx, []string{journalID})
	if err != nil {
		return nil, err
	}
	j := toDomainJournal(m, lines[journalID])
	return &j, nil
}

func (r *PgxJournalRepository) ListJournalsBySource(ctx context.Context, sourceType, sourceID string) ([]domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE source_type = $1 AND source_id = $2 ORDER BY entry_date, journal_number;`
	rows, err := r.Pool.Query(ctx, query, sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals for %s/%s: %w", sourceType, sourceID, err)
	}
	defer rows.Close()

	var headers []models.Journal
	var ids []string
	for rows.Next() {
		m, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal: %w", err)
		}
		headers = append(headers, m)
		ids = append(ids, m.JournalID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journals: %w", err)
	}
	if len(headers) == 0 {
		return nil, nil
	}

	lines, err := r.findLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make([]domain.JournalEntry, 0, len(headers))
	for _, m := range headers {
		result = append(result, toDomainJournal(m, lines[m.JournalID]))
	}
	return result, nil
}

// NextJournalNumber issues the next number in the per-type series with one
// atomic upsert. Safe under concurrent callers; numbers never repeat.
func (r *PgxJournalRepository) NextJournalNumber(ctx context.Context, jType domain.JournalType) (string, error) {
	prefix, ok := journalNumberPrefixes[jType]
	if !ok {
		return "", fmt.Errorf("%w: unknown journal type %q", apperrors.ErrValidation, jType)
	}
	var value int64
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO journal_counters (journal_type, value) VALUES ($1, 1)
		ON CONFLICT (journal_type) DO UPDATE SET value = journal_counters.value + 1
		RETURNING value;
	`, string(jType)).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("failed to issue journal number for %s: %w", jType, translatePgError(err))
	}
	return fmt.Sprintf("%s-%08d", prefix, value), nil
}

// FindAccountDeltas returns the signed account balance changes recorded when
// the journal committed.
func (r *PgxJournalRepository) FindAccountDeltas(ctx context.Context, journalID string) (map[string]decimal.Decimal, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT account_id, delta FROM journal_account_deltas WHERE journal_id = $1;
	`, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account deltas for %s: %w", journalID, err)
	}
	defer rows.Close()

	result := make(map[string]decimal.Decimal)
	for rows.Next() {
		var accountID string
		var delta decimal.Decimal
		if err := rows.Scan(&accountID, &delta); err != nil {
			return nil, fmt.Errorf("failed to scan account delta: %w", err)
		}
		result[accountID] = delta
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account deltas: %w", err)
	}
	return result, nil
}
