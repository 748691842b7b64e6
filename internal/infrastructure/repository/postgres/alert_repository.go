package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.FraudAlert) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO fraud_alerts (id, submission_id, user_id, risk_score, severity, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, alert.ID, alert.SubmissionID, alert.UserID, alert.RiskScore, string(alert.Severity), alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert fraud alert: %w", err)
	}
	return nil
}

func (r *AlertRepository) List(ctx context.Context, userID string, limit int, severity string) ([]domain.FraudAlert, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, submission_id, user_id, risk_score, severity, created_at, resolved_at, resolution_action
FROM fraud_alerts
WHERE ($1 = '' OR user_id = $1)
  AND ($2 = '' OR severity = $2)
ORDER BY created_at DESC
LIMIT $3
`, userID, severity, limit)
	if err != nil {
		return nil, fmt.Errorf("list fraud alerts: %w", err)
	}
	defer rows.Close()

	var out []domain.FraudAlert
	for rows.Next() {
		var alert domain.FraudAlert
		var sev string
		var resolvedAt sql.NullTime
		var action sql.NullString
		if err := rows.Scan(&alert.ID, &alert.SubmissionID, &alert.UserID, &alert.RiskScore, &sev, &alert.CreatedAt, &resolvedAt, &action); err != nil {
			return nil, fmt.Errorf("scan fraud alert: %w", err)
		}
		alert.Severity = domain.RiskSeverity(sev)
		if resolvedAt.Valid {
			t := resolvedAt.Time
			alert.ResolvedAt = &t
		}
		alert.ResolutionAction = action.String
		out = append(out, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fraud alerts: %w", err)
	}
	return out, nil
}

// Resolve stamps the alert once. A second resolution attempt finds no
// unresolved row and reports not found.
func (r *AlertRepository) Resolve(ctx context.Context, alertID, action string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE fraud_alerts
SET resolved_at = $2, resolution_action = $3
WHERE id = $1 AND resolved_at IS NULL
`, alertID, time.Now().UTC(), action)
	if err != nil {
		return fmt.Errorf("resolve fraud alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrAlertNotFound, "resolve fraud alert", sql.ErrNoRows)
	}
	return nil
}
