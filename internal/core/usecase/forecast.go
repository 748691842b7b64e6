package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finagent/expense-pipeline/internal/core/domain"
	"github.com/finagent/expense-pipeline/internal/core/ports"
)

// ForecastUpdateUseCase is the consumer side of the fire-and-forget
// branch: the worker folds approved amounts into rolling aggregates.
// Nothing here reaches back into the decision pipeline.
type ForecastUpdateUseCase struct {
	snapshots ports.ForecastRepository
}

func NewForecastUpdateUseCase(snapshots ports.ForecastRepository) *ForecastUpdateUseCase {
	return &ForecastUpdateUseCase{snapshots: snapshots}
}

func (uc *ForecastUpdateUseCase) Apply(ctx context.Context, update domain.ForecastUpdate) error {
	if strings.TrimSpace(update.UserID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "forecast update", errors.New("empty user id"))
	}
	if update.Amount < 0 {
		return domain.WrapError(domain.ErrInvalidInput, "forecast update", fmt.Errorf("negative amount %v", update.Amount))
	}
	if update.Category == "" {
		update.Category = "Other"
	}

	if err := uc.snapshots.ApplyUpdate(ctx, update); err != nil {
		return fmt.Errorf("apply forecast update: %w", err)
	}
	return nil
}
