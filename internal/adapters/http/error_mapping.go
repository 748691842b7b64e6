package httpadapter

import (
	"net/http"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrSubmissionNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrAlertNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrMissingClassification):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrMissingFraudAssessment):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
