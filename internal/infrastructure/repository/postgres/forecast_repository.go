package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

type ForecastRepository struct {
	db *sql.DB
}

func NewForecastRepository(db *sql.DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

func (r *ForecastRepository) ApplyUpdate(ctx context.Context, update domain.ForecastUpdate) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO forecast_snapshots (user_id, category, total_amount, entry_count, updated_at)
VALUES ($1,$2,$3,1,$4)
ON CONFLICT (user_id, category) DO UPDATE
SET total_amount = forecast_snapshots.total_amount + EXCLUDED.total_amount,
	entry_count = forecast_snapshots.entry_count + 1,
	updated_at = EXCLUDED.updated_at
`, update.UserID, update.Category, update.Amount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("apply forecast update: %w", err)
	}
	return nil
}

func (r *ForecastRepository) Snapshots(ctx context.Context, userID string) ([]domain.ForecastSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, category, total_amount, entry_count, updated_at
FROM forecast_snapshots
WHERE ($1 = '' OR user_id = $1)
ORDER BY user_id, category
`, userID)
	if err != nil {
		return nil, fmt.Errorf("query forecast snapshots: %w", err)
	}
	defer rows.Close()

	var out []domain.ForecastSnapshot
	for rows.Next() {
		var snap domain.ForecastSnapshot
		if err := rows.Scan(&snap.UserID, &snap.Category, &snap.TotalAmount, &snap.EntryCount, &snap.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan forecast snapshot: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forecast snapshots: %w", err)
	}
	return out, nil
}
