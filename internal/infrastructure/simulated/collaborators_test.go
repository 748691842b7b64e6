package simulated

import (
	"context"
	"testing"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

func TestClassifierDeterministic(t *testing.T) {
	c := NewClassifier()
	first, err := c.Classify(context.Background(), "receipts/a.jpg")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	second, err := c.Classify(context.Background(), "receipts/a.jpg")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if *first != *second {
		t.Fatalf("same artifact produced different results: %+v vs %+v", first, second)
	}
	if first.Amount < 50 || first.Amount >= 1250 {
		t.Fatalf("amount %v outside synthetic range", first.Amount)
	}
	if first.Confidence <= 0 || first.Confidence > 1 {
		t.Fatalf("confidence %v out of range", first.Confidence)
	}
}

func TestClassifierCategoryTracksAmount(t *testing.T) {
	c := NewClassifier()
	cls, err := c.Classify(context.Background(), "receipts/b.jpg")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if cls.Amount > 300 && cls.Category != "Travel" {
		t.Fatalf("amount %v should classify as Travel, got %s", cls.Amount, cls.Category)
	}
	if cls.Amount <= 300 && cls.Category != "Meals" {
		t.Fatalf("amount %v should classify as Meals, got %s", cls.Amount, cls.Category)
	}
}

func TestScorerFlagsLargeAmounts(t *testing.T) {
	s := NewScorer()
	sub := &domain.ExpenseSubmission{ID: "sub-1", UserID: "u1"}

	routine, err := s.Score(context.Background(), sub, &domain.ClassificationResult{Amount: 120, Merchant: "Starbucks"})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if routine.RiskScore != 45 || routine.Severity != domain.SeverityMedium {
		t.Fatalf("routine assessment = %+v", routine)
	}

	flagged, err := s.Score(context.Background(), sub, &domain.ClassificationResult{Amount: 6200, Merchant: "Sharp Electronics"})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if flagged.RiskScore != 85 || flagged.Severity != domain.SeverityHigh {
		t.Fatalf("flagged assessment = %+v", flagged)
	}
}

func TestScorerFlagsTechMerchants(t *testing.T) {
	s := NewScorer()
	sub := &domain.ExpenseSubmission{ID: "sub-2", UserID: "u1"}
	got, err := s.Score(context.Background(), sub, &domain.ClassificationResult{Amount: 90, Merchant: "TechWorld"})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if got.RiskScore != 85 {
		t.Fatalf("risk score = %d, want 85", got.RiskScore)
	}
}
