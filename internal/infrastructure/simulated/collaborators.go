// Package simulated provides in-process collaborator implementations for
// demo and local development runs. Outputs are deterministic per artifact
// so repeated submissions reproduce the same pipeline path.
package simulated

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

// Classifier fabricates a plausible classification from the artifact
// reference alone. Larger synthetic amounts look like travel expenses,
// smaller ones like meals.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

func (c *Classifier) Classify(_ context.Context, artifactRef string) (*domain.ClassificationResult, error) {
	amount := syntheticAmount(artifactRef)

	cls := &domain.ClassificationResult{
		Amount:     amount,
		Merchant:   "Starbucks",
		Category:   "Meals",
		Confidence: 0.972,
	}
	if amount > 300 {
		cls.Merchant = "Delta Airlines"
		cls.Category = "Travel"
		cls.Confidence = 0.953
	}
	return cls, nil
}

// Scorer flags large amounts and electronics-style merchants, everything
// else scores as routine.
type Scorer struct{}

func NewScorer() *Scorer { return &Scorer{} }

func (s *Scorer) Score(_ context.Context, _ *domain.ExpenseSubmission, cls *domain.ClassificationResult) (*domain.FraudAssessment, error) {
	score := 45
	if cls.Amount >= 5000 || strings.HasPrefix(cls.Merchant, "Tech") {
		score = 85
	}
	return &domain.FraudAssessment{
		RiskScore: score,
		Severity:  domain.SeverityForScore(score),
	}, nil
}

// syntheticAmount maps an artifact reference onto [50, 1250) with two
// decimal places.
func syntheticAmount(artifactRef string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(artifactRef))
	cents := 5000 + int(h.Sum32()%120000)
	return float64(cents) / 100
}
