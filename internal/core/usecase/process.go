package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finagent/expense-pipeline/internal/core/domain"
	"github.com/finagent/expense-pipeline/internal/core/ports"
)

const defaultDispatchTimeout = 10 * time.Second

// ProcessSubmissionUseCase runs one submission through intake, the two
// gates, and the decision router. Each call is independent; there is no
// shared mutable state between concurrent submissions.
type ProcessSubmissionUseCase struct {
	repo       ports.SubmissionRepository
	classifier ports.ExpenseClassifier
	scorer     ports.FraudScorer
	ledger     ports.Ledger
	forecasts  ports.ForecastQueue
	notifier   ports.Notifier
	reviews    ports.ReviewQueue
	alerts     ports.AlertStore
	telemetry  ports.PipelineTelemetry

	policy          domain.DecisionPolicy
	dispatchTimeout time.Duration
}

func NewProcessSubmissionUseCase(
	repo ports.SubmissionRepository,
	classifier ports.ExpenseClassifier,
	scorer ports.FraudScorer,
	ledger ports.Ledger,
	forecasts ports.ForecastQueue,
	notifier ports.Notifier,
	reviews ports.ReviewQueue,
	alerts ports.AlertStore,
	telemetry ports.PipelineTelemetry,
	policy domain.DecisionPolicy,
) *ProcessSubmissionUseCase {
	return &ProcessSubmissionUseCase{
		repo:            repo,
		classifier:      classifier,
		scorer:          scorer,
		ledger:          ledger,
		forecasts:       forecasts,
		notifier:        notifier,
		reviews:         reviews,
		alerts:          alerts,
		telemetry:       telemetry,
		policy:          policy.Normalize(),
		dispatchTimeout: defaultDispatchTimeout,
	}
}

func (uc *ProcessSubmissionUseCase) Process(ctx context.Context, userID, artifactRef string) (*domain.ExpenseSubmission, error) {
	sub, err := NewSubmission(userID, artifactRef)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission record: %w", err)
	}

	cls, err := uc.classify(ctx, sub)
	if err != nil {
		return nil, err
	}

	clsOutcome, err := classificationGate(uc.policy, cls)
	if err != nil {
		return nil, err
	}

	risk, err := uc.assessRisk(ctx, sub, cls)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	disposition := route(clsOutcome, risk, time.Now().UTC())

	sub.Classification = cls
	sub.Fraud = risk.Assessment
	sub.Disposition = &disposition

	if err := uc.repo.SaveDecision(ctx, sub); err != nil {
		return nil, fmt.Errorf("persist decision: %w", err)
	}
	if uc.telemetry != nil {
		uc.telemetry.DispositionDecided(disposition.Status, disposition.Reason)
	}

	uc.runSideEffects(ctx, sub, clsOutcome, risk)

	return sub, nil
}

func (uc *ProcessSubmissionUseCase) classify(ctx context.Context, sub *domain.ExpenseSubmission) (*domain.ClassificationResult, error) {
	cls, err := uc.classifier.Classify(ctx, sub.ArtifactRef)
	if err != nil {
		return nil, domain.WrapError(domain.ErrMissingClassification, "classify artifact", err)
	}
	return cls, nil
}

// assessRisk runs the fraud check only above the policy amount; the
// skip is recorded so the branch stays visible in telemetry.
func (uc *ProcessSubmissionUseCase) assessRisk(ctx context.Context, sub *domain.ExpenseSubmission, cls *domain.ClassificationResult) (RiskGateResult, error) {
	if !riskGateRequired(uc.policy, cls.Amount) {
		if uc.telemetry != nil {
			uc.telemetry.RiskGateSkipped()
		}
		return skippedRiskGate(), nil
	}

	assessment, err := uc.scorer.Score(ctx, sub, cls)
	if err != nil {
		return RiskGateResult{}, domain.WrapError(domain.ErrMissingFraudAssessment, "score transaction", err)
	}
	return riskGate(uc.policy, assessment)
}

// runSideEffects fires after the Disposition is persisted. Nothing in
// here may fail the pipeline or alter the already-final decision.
func (uc *ProcessSubmissionUseCase) runSideEffects(ctx context.Context, sub *domain.ExpenseSubmission, clsOutcome ClassificationOutcome, risk RiskGateResult) {
	switch sub.Disposition.Status {
	case domain.StatusApproved:
		if err := uc.ledger.Record(ctx, sub.ID, sub.Classification.Amount, sub.Classification.Category); err != nil {
			uc.reportDispatchFailure("ledger", sub.ID, err)
		}
		update := domain.ForecastUpdate{
			UserID:   sub.UserID,
			Amount:   sub.Classification.Amount,
			Category: sub.Classification.Category,
		}
		uc.dispatchAsync("forecast_update", sub.ID, func(dispatchCtx context.Context) error {
			return uc.forecasts.PublishForecastUpdate(dispatchCtx, update)
		})

	case domain.StatusHeld:
		alert := domain.FraudAlert{
			ID:           uuid.NewString(),
			SubmissionID: sub.ID,
			UserID:       sub.UserID,
			RiskScore:    sub.Fraud.RiskScore,
			Severity:     sub.Fraud.Severity,
			CreatedAt:    sub.Disposition.DecidedAt,
		}
		if err := uc.alerts.Create(ctx, &alert); err != nil {
			uc.reportDispatchFailure("fraud_alert", sub.ID, err)
		}
		uc.dispatchAsync("hold_notification", sub.ID, func(dispatchCtx context.Context) error {
			return uc.notifier.NotifyHold(dispatchCtx, alert)
		})

	case domain.StatusPendingReview:
		if err := uc.reviews.Enqueue(ctx, sub, string(clsOutcome), string(risk.Outcome)); err != nil {
			uc.reportDispatchFailure("review_queue", sub.ID, err)
		}
	}
}

// dispatchAsync detaches a side effect from the request lifecycle. The
// caller's response never blocks on it and its failure is only logged
// and counted.
func (uc *ProcessSubmissionUseCase) dispatchAsync(kind, submissionID string, fn func(context.Context) error) {
	go func() {
		dispatchCtx, cancel := context.WithTimeout(context.Background(), uc.dispatchTimeout)
		defer cancel()
		if err := fn(dispatchCtx); err != nil {
			uc.reportDispatchFailure(kind, submissionID, err)
		}
	}()
}

func (uc *ProcessSubmissionUseCase) reportDispatchFailure(kind, submissionID string, err error) {
	slog.Error("side_effect_dispatch_failure",
		"kind", kind,
		"submission_id", submissionID,
		"error", err,
	)
	if uc.telemetry != nil {
		uc.telemetry.SideEffectDispatchFailure(kind)
	}
}
