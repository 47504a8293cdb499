package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/hrms-lite/internal/models"
)

const journalSchema = `CREATE TABLE IF NOT EXISTS attendance_batch_journal (
	id UUID PRIMARY KEY,
	batch_id TEXT NOT NULL,
	target_date DATE NOT NULL,
	total INTEGER NOT NULL,
	succeeded INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS attendance_batch_failures (
	journal_id UUID NOT NULL REFERENCES attendance_batch_journal(id) ON DELETE CASCADE,
	employee_id TEXT NOT NULL,
	status TEXT NOT NULL,
	reason TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attendance_batch_journal_submitted ON attendance_batch_journal (submitted_at DESC);`

// BatchJournalRepository persists the outcome of every batch submission.
type BatchJournalRepository struct {
	db *sqlx.DB
}

// NewBatchJournalRepository creates the repository.
func NewBatchJournalRepository(db *sqlx.DB) *BatchJournalRepository {
	return &BatchJournalRepository{db: db}
}

// EnsureSchema creates the journal tables when they are missing.
func (r *BatchJournalRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, journalSchema); err != nil {
		return fmt.Errorf("ensure batch journal schema: %w", err)
	}
	return nil
}

// Insert stores the journal entry and its failures in one transaction.
func (r *BatchJournalRepository) Insert(ctx context.Context, entry *models.BatchJournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SubmittedAt.IsZero() {
		entry.SubmittedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch journal insert: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	const insertEntry = `INSERT INTO attendance_batch_journal (id, batch_id, target_date, total, succeeded, failed, submitted_at)
VALUES (:id, :batch_id, :target_date, :total, :succeeded, :failed, :submitted_at)`
	if _, err := tx.NamedExecContext(ctx, insertEntry, entry); err != nil {
		return fmt.Errorf("insert batch journal: %w", err)
	}

	const insertFailure = `INSERT INTO attendance_batch_failures (journal_id, employee_id, status, reason) VALUES ($1, $2, $3, $4)`
	for _, failure := range entry.Failures {
		if _, err := tx.ExecContext(ctx, insertFailure, entry.ID, failure.EmployeeID, failure.Status, failure.Reason); err != nil {
			return fmt.Errorf("insert batch failure for %s: %w", failure.EmployeeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch journal: %w", err)
	}
	commit = true
	return nil
}

type journalFailureRow struct {
	JournalID  string                  `db:"journal_id"`
	EmployeeID string                  `db:"employee_id"`
	Status     models.AttendanceStatus `db:"status"`
	Reason     string                  `db:"reason"`
}

// ListRecent returns the latest journal entries, newest first, with their failures attached.
func (r *BatchJournalRepository) ListRecent(ctx context.Context, limit int) ([]models.BatchJournalEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	entries := []models.BatchJournalEntry{}
	query := `SELECT id, batch_id, to_char(target_date, 'YYYY-MM-DD') AS target_date, total, succeeded, failed, submitted_at
FROM attendance_batch_journal ORDER BY submitted_at DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("list batch journal: %w", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	var rows []journalFailureRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT journal_id, employee_id, status, reason
FROM attendance_batch_failures WHERE journal_id = ANY($1) ORDER BY employee_id`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list batch failures: %w", err)
	}

	byJournal := make(map[string][]models.BatchItemFailure, len(entries))
	for _, row := range rows {
		byJournal[row.JournalID] = append(byJournal[row.JournalID], models.BatchItemFailure{
			EmployeeID: row.EmployeeID,
			Status:     row.Status,
			Reason:     row.Reason,
		})
	}
	for i := range entries {
		entries[i].Failures = byJournal[entries[i].ID]
	}
	return entries, nil
}
