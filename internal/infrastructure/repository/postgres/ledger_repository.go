package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Record books an approved submission. The unique index on
// submission_id makes redelivered side effects a no-op.
func (r *LedgerRepository) Record(ctx context.Context, submissionID string, amount float64, category string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO ledger_entries (submission_id, amount, category, recorded_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (submission_id) DO NOTHING
`, submissionID, amount, category, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}
