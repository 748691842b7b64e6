package usecase

import (
	"errors"
	"time"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

type ClassificationOutcome string

const (
	OutcomeAutoEligible ClassificationOutcome = "auto-eligible"
	OutcomeNeedsReview  ClassificationOutcome = "needs-review"
)

type RiskOutcome string

const (
	RiskPassed  RiskOutcome = "passed"
	RiskBlocked RiskOutcome = "blocked"
)

// RiskGateResult keeps the skip branch explicit so the small-amount
// path is observable instead of an implicit fallthrough.
type RiskGateResult struct {
	Outcome    RiskOutcome
	Skipped    bool
	Assessment *domain.FraudAssessment
}

// classificationGate applies the confidence threshold. The boundary is
// inclusive: confidence exactly at the threshold is auto-eligible.
func classificationGate(policy domain.DecisionPolicy, cls *domain.ClassificationResult) (ClassificationOutcome, error) {
	if cls == nil {
		return "", domain.WrapError(domain.ErrMissingClassification, "classification gate", errors.New("no classifier output attached"))
	}
	if cls.Confidence >= policy.AutoApproveConfidence {
		return OutcomeAutoEligible, nil
	}
	return OutcomeNeedsReview, nil
}

// riskGateRequired reports whether the fraud check runs at all for this
// amount. Small submissions skip it as a cost/latency tradeoff.
func riskGateRequired(policy domain.DecisionPolicy, amount float64) bool {
	return amount > policy.RiskCheckMinAmount
}

// riskGate bands the score for telemetry and decides blocking from the
// raw cutoff comparison only.
func riskGate(policy domain.DecisionPolicy, assessment *domain.FraudAssessment) (RiskGateResult, error) {
	if assessment == nil {
		return RiskGateResult{}, domain.WrapError(domain.ErrMissingFraudAssessment, "risk gate", errors.New("no fraud assessment attached"))
	}
	banded := &domain.FraudAssessment{
		RiskScore: assessment.RiskScore,
		Severity:  domain.SeverityForScore(assessment.RiskScore),
	}
	outcome := RiskPassed
	if banded.RiskScore > policy.FraudBlockCutoff {
		outcome = RiskBlocked
	}
	return RiskGateResult{Outcome: outcome, Assessment: banded}, nil
}

func skippedRiskGate() RiskGateResult {
	return RiskGateResult{Outcome: RiskPassed, Skipped: true}
}

// route combines the gate outcomes into the terminal disposition.
// Risk blocking outranks confidence review; it is the higher-severity
// concern. Pure function of its inputs.
func route(clsOutcome ClassificationOutcome, risk RiskGateResult, now time.Time) domain.Disposition {
	switch {
	case risk.Outcome == RiskBlocked:
		return domain.Disposition{Status: domain.StatusHeld, Reason: domain.ReasonHighFraudRisk, DecidedAt: now}
	case clsOutcome == OutcomeNeedsReview:
		return domain.Disposition{Status: domain.StatusPendingReview, Reason: domain.ReasonLowConfidence, DecidedAt: now}
	default:
		return domain.Disposition{Status: domain.StatusApproved, Reason: domain.ReasonNone, DecidedAt: now}
	}
}
