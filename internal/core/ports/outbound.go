package ports

import (
	"context"
	"io"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

// SubmissionRepository persists submission state and decisions.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.ExpenseSubmission) error
	GetByID(ctx context.Context, id string) (*domain.ExpenseSubmission, error)
	List(ctx context.Context, userID string, limit, offset int, category string) ([]domain.ExpenseSubmission, error)
	SaveDecision(ctx context.Context, sub *domain.ExpenseSubmission) error
}

// ArtifactStorage stores uploaded receipt files. The pipeline only ever
// holds the opaque key it returns.
type ArtifactStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ExpenseClassifier is the external classification collaborator.
// Implementations must return an error (not a zeroed result) when the
// response lacks a confidence value.
type ExpenseClassifier interface {
	Classify(ctx context.Context, artifactRef string) (*domain.ClassificationResult, error)
}

// FraudScorer is the external fraud-scoring collaborator. The returned
// severity is advisory; the pipeline rebands from the numeric score.
type FraudScorer interface {
	Score(ctx context.Context, sub *domain.ExpenseSubmission, cls *domain.ClassificationResult) (*domain.FraudAssessment, error)
}

// Ledger receives approved submissions.
type Ledger interface {
	Record(ctx context.Context, submissionID string, amount float64, category string) error
}

// ForecastQueue publishes/consumes post-approval forecast updates.
type ForecastQueue interface {
	PublishForecastUpdate(ctx context.Context, update domain.ForecastUpdate) error
	SubscribeForecastUpdates(ctx context.Context, handler func(context.Context, domain.ForecastUpdate) error) error
}

// Notifier alerts an external channel about held submissions.
type Notifier interface {
	NotifyHold(ctx context.Context, alert domain.FraudAlert) error
}

// ReviewQueue makes low-confidence submissions visible to manual review.
type ReviewQueue interface {
	Enqueue(ctx context.Context, sub *domain.ExpenseSubmission, classificationOutcome, riskOutcome string) error
}

// AlertStore persists fraud alerts and their resolutions.
type AlertStore interface {
	Create(ctx context.Context, alert *domain.FraudAlert) error
	List(ctx context.Context, userID string, limit int, severity string) ([]domain.FraudAlert, error)
	Resolve(ctx context.Context, alertID, action string) error
}

// ForecastRepository maintains rolling cashflow aggregates.
type ForecastRepository interface {
	ApplyUpdate(ctx context.Context, update domain.ForecastUpdate) error
	Snapshots(ctx context.Context, userID string) ([]domain.ForecastSnapshot, error)
}

// PipelineTelemetry receives decision and dispatch observations. The
// usecase reports through this so gate logic stays free of metrics
// plumbing.
type PipelineTelemetry interface {
	DispositionDecided(status domain.DispositionStatus, reason domain.DecisionReason)
	RiskGateSkipped()
	SideEffectDispatchFailure(kind string)
}
