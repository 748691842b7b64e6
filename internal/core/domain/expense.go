package domain

import "time"

type DispositionStatus string

const (
	StatusApproved      DispositionStatus = "approved"
	StatusPendingReview DispositionStatus = "pending_review"
	StatusHeld          DispositionStatus = "held"
)

type DecisionReason string

const (
	ReasonNone          DecisionReason = "none"
	ReasonLowConfidence DecisionReason = "low_confidence"
	ReasonHighFraudRisk DecisionReason = "high_fraud_risk"
)

// ExpenseSubmission is one uploaded receipt event moving through the
// decision pipeline. The record itself is immutable after intake;
// classifier and fraud-scorer outputs are attached as they arrive.
type ExpenseSubmission struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ArtifactRef string    `json:"artifact_ref"`
	SubmittedAt time.Time `json:"submitted_at"`

	Classification *ClassificationResult `json:"classification,omitempty"`
	Fraud          *FraudAssessment      `json:"fraud_assessment,omitempty"`
	Disposition    *Disposition          `json:"disposition,omitempty"`
}

// ClassificationResult is the classifier collaborator's structured
// output. Confidence is required at the boundary; a response without it
// is a classifier failure, never zero confidence.
type ClassificationResult struct {
	Amount     float64 `json:"amount"`
	Merchant   string  `json:"merchant"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// FraudAssessment is the fraud scorer's output. Severity is always
// recomputed here from the numeric score so the banding policy lives in
// one place.
type FraudAssessment struct {
	RiskScore int          `json:"risk_score"`
	Severity  RiskSeverity `json:"severity"`
}

// Disposition is the terminal routing decision for a submission.
// Exactly one is produced per submission and it never changes
// afterward; resolving a hold or review is a separate workflow.
type Disposition struct {
	Status    DispositionStatus `json:"status"`
	Reason    DecisionReason    `json:"reason"`
	DecidedAt time.Time         `json:"decided_at"`
}

// FraudAlert records a blocked submission for the alerting/resolution
// surface. Resolution attaches an action; the submission's Disposition
// stays as decided.
type FraudAlert struct {
	ID               string       `json:"id"`
	SubmissionID     string       `json:"submission_id"`
	UserID           string       `json:"user_id"`
	RiskScore        int          `json:"risk_score"`
	Severity         RiskSeverity `json:"severity"`
	CreatedAt        time.Time    `json:"created_at"`
	ResolvedAt       *time.Time   `json:"resolved_at,omitempty"`
	ResolutionAction string       `json:"resolution_action,omitempty"`
}

// ForecastUpdate is the fire-and-forget message published after an
// approval and folded into cashflow aggregates by the worker.
type ForecastUpdate struct {
	UserID   string  `json:"user_id"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

// ForecastSnapshot is a rolling per-user, per-category cashflow
// aggregate maintained by the worker.
type ForecastSnapshot struct {
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	TotalAmount float64   `json:"total_amount"`
	EntryCount  int64     `json:"entry_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}
