package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *SubmissionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	artifact_ref TEXT NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL,
	classification JSONB,
	fraud_assessment JSONB,
	disposition_status TEXT,
	disposition_reason TEXT,
	decided_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(user_id, submitted_at DESC);
CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(disposition_status);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id BIGSERIAL PRIMARY KEY,
	submission_id TEXT NOT NULL REFERENCES submissions(id),
	amount DOUBLE PRECISION NOT NULL,
	category TEXT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_submission ON ledger_entries(submission_id);

CREATE TABLE IF NOT EXISTS review_queue (
	id BIGSERIAL PRIMARY KEY,
	submission_id TEXT NOT NULL REFERENCES submissions(id),
	user_id TEXT NOT NULL,
	classification_outcome TEXT NOT NULL,
	risk_outcome TEXT NOT NULL,
	enqueued_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_review_submission ON review_queue(submission_id);

CREATE TABLE IF NOT EXISTS fraud_alerts (
	id TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL REFERENCES submissions(id),
	user_id TEXT NOT NULL,
	risk_score INTEGER NOT NULL,
	severity TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	resolved_at TIMESTAMPTZ,
	resolution_action TEXT
);

CREATE INDEX IF NOT EXISTS idx_fraud_alerts_user ON fraud_alerts(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS forecast_snapshots (
	user_id TEXT NOT NULL,
	category TEXT NOT NULL,
	total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	entry_count BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, category)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.ExpenseSubmission) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO submissions (id, user_id, artifact_ref, submitted_at)
VALUES ($1,$2,$3,$4)
`, sub.ID, sub.UserID, sub.ArtifactRef, sub.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*domain.ExpenseSubmission, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, artifact_ref, submitted_at, classification, fraud_assessment, disposition_status, disposition_reason, decided_at
FROM submissions
WHERE id = $1
`, id)

	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSubmissionNotFound, "get submission", err)
		}
		return nil, err
	}
	return sub, nil
}

func (r *SubmissionRepository) List(ctx context.Context, userID string, limit, offset int, category string) ([]domain.ExpenseSubmission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, artifact_ref, submitted_at, classification, fraud_assessment, disposition_status, disposition_reason, decided_at
FROM submissions
WHERE ($1 = '' OR user_id = $1)
  AND ($2 = '' OR classification->>'category' = $2)
ORDER BY submitted_at DESC
LIMIT $3 OFFSET $4
`, userID, category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.ExpenseSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

// SaveDecision writes the collaborator outputs and the final disposition
// in one statement so a submission is never visible half decided.
func (r *SubmissionRepository) SaveDecision(ctx context.Context, sub *domain.ExpenseSubmission) error {
	if sub.Disposition == nil {
		return fmt.Errorf("submission %s has no disposition", sub.ID)
	}

	clsJSON, err := marshalNullable(sub.Classification)
	if err != nil {
		return fmt.Errorf("marshal classification: %w", err)
	}
	fraudJSON, err := marshalNullable(sub.Fraud)
	if err != nil {
		return fmt.Errorf("marshal fraud assessment: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE submissions
SET classification = $2, fraud_assessment = $3, disposition_status = $4, disposition_reason = $5, decided_at = $6
WHERE id = $1
`, sub.ID, clsJSON, fraudJSON, string(sub.Disposition.Status), string(sub.Disposition.Reason), sub.Disposition.DecidedAt)
	if err != nil {
		return fmt.Errorf("save decision: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save decision rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrSubmissionNotFound, "save decision", sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*domain.ExpenseSubmission, error) {
	var sub domain.ExpenseSubmission
	var clsRaw, fraudRaw []byte
	var status, reason sql.NullString
	var decidedAt sql.NullTime

	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.ArtifactRef, &sub.SubmittedAt,
		&clsRaw, &fraudRaw, &status, &reason, &decidedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}

	if len(clsRaw) > 0 {
		var cls domain.ClassificationResult
		if err := json.Unmarshal(clsRaw, &cls); err != nil {
			return nil, fmt.Errorf("unmarshal classification: %w", err)
		}
		sub.Classification = &cls
	}
	if len(fraudRaw) > 0 {
		var fraud domain.FraudAssessment
		if err := json.Unmarshal(fraudRaw, &fraud); err != nil {
			return nil, fmt.Errorf("unmarshal fraud assessment: %w", err)
		}
		sub.Fraud = &fraud
	}
	if status.Valid {
		sub.Disposition = &domain.Disposition{
			Status:    domain.DispositionStatus(status.String),
			Reason:    domain.DecisionReason(reason.String),
			DecidedAt: decidedAt.Time,
		}
	}
	return &sub, nil
}

func marshalNullable(v any) (any, error) {
	switch t := v.(type) {
	case *domain.ClassificationResult:
		if t == nil {
			return nil, nil
		}
	case *domain.FraudAssessment:
		if t == nil {
			return nil, nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
