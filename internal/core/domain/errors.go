package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrMissingClassification  = errors.New("missing classification result")
	ErrMissingFraudAssessment = errors.New("missing fraud assessment")
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrAlertNotFound          = errors.New("fraud alert not found")
	ErrTemporary              = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
