package usecase

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

// NewSubmission validates intake inputs and mints the submission
// record. Content-level checks (is the artifact really an image) belong
// to the storage/OCR side, not here.
func NewSubmission(userID, artifactRef string) (*domain.ExpenseSubmission, error) {
	userID = strings.TrimSpace(userID)
	artifactRef = strings.TrimSpace(artifactRef)

	if userID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "intake", errors.New("empty user id"))
	}
	if artifactRef == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "intake", errors.New("empty artifact ref"))
	}

	return &domain.ExpenseSubmission{
		ID:          uuid.NewString(),
		UserID:      userID,
		ArtifactRef: artifactRef,
		SubmittedAt: time.Now().UTC(),
	}, nil
}
