package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

func newAlertRepoWithMock(t *testing.T) (*AlertRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &AlertRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestResolveReturnsDomainNotFoundWhenAlreadyResolved(t *testing.T) {
	repo, mock, done := newAlertRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE fraud_alerts").
		WithArgs("alert-1", sqlmock.AnyArg(), "dismissed").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Resolve(context.Background(), "alert-1", "dismissed")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrAlertNotFound) {
		t.Fatalf("expected ErrAlertNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListScansResolution(t *testing.T) {
	repo, mock, done := newAlertRepoWithMock(t)
	defer done()

	created := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	resolved := created.Add(time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "submission_id", "user_id", "risk_score", "severity", "created_at", "resolved_at", "resolution_action",
	}).
		AddRow("alert-1", "sub-1", "user-7", 85, "high", created, resolved, "confirmed_fraud").
		AddRow("alert-2", "sub-2", "user-7", 91, "critical", created, nil, nil)
	mock.ExpectQuery("SELECT id, submission_id, user_id").
		WithArgs("user-7", "", 50).
		WillReturnRows(rows)

	alerts, err := repo.List(context.Background(), "user-7", 0, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("len(alerts) = %d", len(alerts))
	}
	if alerts[0].ResolvedAt == nil || alerts[0].ResolutionAction != "confirmed_fraud" {
		t.Fatalf("resolved alert not hydrated: %+v", alerts[0])
	}
	if alerts[1].ResolvedAt != nil {
		t.Fatalf("open alert should have nil ResolvedAt: %+v", alerts[1])
	}
	if alerts[1].Severity != domain.SeverityCritical {
		t.Fatalf("severity = %s", alerts[1].Severity)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
