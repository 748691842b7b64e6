package usecase

import (
	"testing"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

func TestNewSubmissionSuccess(t *testing.T) {
	sub, err := NewSubmission("user-1", "receipts/abc.jpg")
	if err != nil {
		t.Fatalf("NewSubmission() error = %v", err)
	}
	if sub.ID == "" {
		t.Fatalf("expected generated submission id")
	}
	if sub.SubmittedAt.IsZero() {
		t.Fatalf("expected submitted_at to be set")
	}
	if sub.Disposition != nil || sub.Classification != nil || sub.Fraud != nil {
		t.Fatalf("intake record must not carry downstream attachments")
	}
}

func TestNewSubmissionGeneratesUniqueIDs(t *testing.T) {
	a, err := NewSubmission("user-1", "receipts/a.jpg")
	if err != nil {
		t.Fatalf("NewSubmission() error = %v", err)
	}
	b, err := NewSubmission("user-1", "receipts/a.jpg")
	if err != nil {
		t.Fatalf("NewSubmission() error = %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %s twice", a.ID)
	}
}

func TestNewSubmissionEmptyUserID(t *testing.T) {
	_, err := NewSubmission("", "receipts/abc.jpg")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewSubmissionBlankArtifactRef(t *testing.T) {
	_, err := NewSubmission("user-1", "   ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
