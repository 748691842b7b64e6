package ports

import (
	"context"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

// ExpenseProcessor is the inbound contract for running the full
// intake-to-disposition pipeline on one submission.
type ExpenseProcessor interface {
	Process(ctx context.Context, userID, artifactRef string) (*domain.ExpenseSubmission, error)
}

// SubmissionReader is the inbound read model for submission state.
type SubmissionReader interface {
	GetByID(ctx context.Context, id string) (*domain.ExpenseSubmission, error)
	List(ctx context.Context, userID string, limit, offset int, category string) ([]domain.ExpenseSubmission, error)
}

// ForecastUpdater is the inbound contract for the worker's
// fire-and-forget consumer side.
type ForecastUpdater interface {
	Apply(ctx context.Context, update domain.ForecastUpdate) error
}
