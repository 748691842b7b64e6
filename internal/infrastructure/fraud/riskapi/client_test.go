package riskapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

func sampleSubmission() (*domain.ExpenseSubmission, *domain.ClassificationResult) {
	sub := &domain.ExpenseSubmission{
		ID:          "sub-1",
		UserID:      "user-7",
		ArtifactRef: "receipts/r1.jpg",
		SubmittedAt: time.Now().UTC(),
	}
	cls := &domain.ClassificationResult{
		Amount:     6200,
		Merchant:   "Sharp Electronics",
		Category:   "Equipment",
		Confidence: 0.97,
	}
	return sub, cls
}

func TestScoreSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/transactions/score" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["transaction_id"] != "sub-1" || req["user_id"] != "user-7" {
			t.Fatalf("unexpected identifiers in request: %v", req)
		}
		if req["amount"] != 6200.0 {
			t.Fatalf("amount = %v", req["amount"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"risk_score": 85,
			"severity":   "low",
		})
	}))
	defer srv.Close()

	sub, cls := sampleSubmission()
	client := New(srv.URL, 0, nil)
	assessment, err := client.Score(context.Background(), sub, cls)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if assessment.RiskScore != 85 {
		t.Fatalf("risk score = %d, want 85", assessment.RiskScore)
	}
	if assessment.Severity != domain.SeverityHigh {
		t.Fatalf("severity = %s, want %s; remote label must be ignored", assessment.Severity, domain.SeverityHigh)
	}
}

func TestScoreMissingScoreIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"severity": "medium"})
	}))
	defer srv.Close()

	sub, cls := sampleSubmission()
	client := New(srv.URL, 0, nil)
	if _, err := client.Score(context.Background(), sub, cls); err == nil {
		t.Fatalf("expected error for missing risk_score")
	}
}

func TestScoreOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"risk_score": 140})
	}))
	defer srv.Close()

	sub, cls := sampleSubmission()
	client := New(srv.URL, 0, nil)
	if _, err := client.Score(context.Background(), sub, cls); err == nil {
		t.Fatalf("expected error for out-of-range risk_score")
	}
}

func TestScoreServerErrorWrappedTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	sub, cls := sampleSubmission()
	client := New(srv.URL, 0, nil)
	_, err := client.Score(context.Background(), sub, cls)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary for 502, got %v", err)
	}
}
