package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Enqueue(ctx context.Context, sub *domain.ExpenseSubmission, classificationOutcome, riskOutcome string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO review_queue (submission_id, user_id, classification_outcome, risk_outcome, enqueued_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (submission_id) DO NOTHING
`, sub.ID, sub.UserID, classificationOutcome, riskOutcome, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("enqueue review: %w", err)
	}
	return nil
}
