package usecase

import (
	"testing"
	"time"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

func TestClassificationGateBoundaryInclusive(t *testing.T) {
	policy := domain.DefaultDecisionPolicy()

	cases := []struct {
		confidence float64
		want       ClassificationOutcome
	}{
		{0.0, OutcomeNeedsReview},
		{0.8999, OutcomeNeedsReview},
		{0.90, OutcomeAutoEligible},
		{0.953, OutcomeAutoEligible},
		{1.0, OutcomeAutoEligible},
	}
	for _, tc := range cases {
		got, err := classificationGate(policy, &domain.ClassificationResult{Confidence: tc.confidence})
		if err != nil {
			t.Fatalf("classificationGate(%v) error = %v", tc.confidence, err)
		}
		if got != tc.want {
			t.Fatalf("classificationGate(%v) = %s, want %s", tc.confidence, got, tc.want)
		}
	}
}

func TestClassificationGateNilResult(t *testing.T) {
	_, err := classificationGate(domain.DefaultDecisionPolicy(), nil)
	if !domain.IsKind(err, domain.ErrMissingClassification) {
		t.Fatalf("expected ErrMissingClassification, got %v", err)
	}
}

func TestRiskGateBlockingCutoff(t *testing.T) {
	policy := domain.DefaultDecisionPolicy()

	cases := []struct {
		score int
		want  RiskOutcome
	}{
		{0, RiskPassed},
		{45, RiskPassed},
		{70, RiskPassed},
		{71, RiskBlocked},
		{85, RiskBlocked},
		{95, RiskBlocked},
	}
	for _, tc := range cases {
		got, err := riskGate(policy, &domain.FraudAssessment{RiskScore: tc.score})
		if err != nil {
			t.Fatalf("riskGate(%d) error = %v", tc.score, err)
		}
		if got.Outcome != tc.want {
			t.Fatalf("riskGate(%d) = %s, want %s", tc.score, got.Outcome, tc.want)
		}
		if got.Skipped {
			t.Fatalf("riskGate(%d) unexpectedly skipped", tc.score)
		}
	}
}

func TestRiskGateRebandsSeverityFromScore(t *testing.T) {
	// Scorer-supplied severity is not trusted; the band comes from the
	// numeric score alone.
	got, err := riskGate(domain.DefaultDecisionPolicy(), &domain.FraudAssessment{
		RiskScore: 45,
		Severity:  domain.SeverityCritical,
	})
	if err != nil {
		t.Fatalf("riskGate() error = %v", err)
	}
	if got.Assessment.Severity != domain.SeverityMedium {
		t.Fatalf("severity = %s, want medium", got.Assessment.Severity)
	}
	if got.Outcome != RiskPassed {
		t.Fatalf("outcome = %s, want passed", got.Outcome)
	}
}

func TestRiskGateRequiredAmountCutoff(t *testing.T) {
	policy := domain.DefaultDecisionPolicy()
	if riskGateRequired(policy, 100) {
		t.Fatalf("amount 100 should skip the risk gate")
	}
	if riskGateRequired(policy, 45.80) {
		t.Fatalf("amount 45.80 should skip the risk gate")
	}
	if !riskGateRequired(policy, 100.01) {
		t.Fatalf("amount 100.01 should require the risk gate")
	}
}

func TestRouteBlockedOutranksNeedsReview(t *testing.T) {
	now := time.Now().UTC()
	blocked := RiskGateResult{Outcome: RiskBlocked}

	d := route(OutcomeNeedsReview, blocked, now)
	if d.Status != domain.StatusHeld || d.Reason != domain.ReasonHighFraudRisk {
		t.Fatalf("route(needs-review, blocked) = %s/%s", d.Status, d.Reason)
	}
}

func TestRouteTable(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		cls        ClassificationOutcome
		risk       RiskGateResult
		wantStatus domain.DispositionStatus
		wantReason domain.DecisionReason
	}{
		{OutcomeAutoEligible, RiskGateResult{Outcome: RiskPassed}, domain.StatusApproved, domain.ReasonNone},
		{OutcomeAutoEligible, skippedRiskGate(), domain.StatusApproved, domain.ReasonNone},
		{OutcomeNeedsReview, RiskGateResult{Outcome: RiskPassed}, domain.StatusPendingReview, domain.ReasonLowConfidence},
		{OutcomeAutoEligible, RiskGateResult{Outcome: RiskBlocked}, domain.StatusHeld, domain.ReasonHighFraudRisk},
		{OutcomeNeedsReview, RiskGateResult{Outcome: RiskBlocked}, domain.StatusHeld, domain.ReasonHighFraudRisk},
	}
	for _, tc := range cases {
		d := route(tc.cls, tc.risk, now)
		if d.Status != tc.wantStatus || d.Reason != tc.wantReason {
			t.Fatalf("route(%s, %s) = %s/%s, want %s/%s",
				tc.cls, tc.risk.Outcome, d.Status, d.Reason, tc.wantStatus, tc.wantReason)
		}
	}
}

func TestRouteIsIdempotent(t *testing.T) {
	now := time.Now().UTC()
	risk := RiskGateResult{Outcome: RiskBlocked}

	first := route(OutcomeNeedsReview, risk, now)
	second := route(OutcomeNeedsReview, risk, now)
	if first != second {
		t.Fatalf("route not idempotent: %+v vs %+v", first, second)
	}
}
