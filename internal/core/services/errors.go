package services

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// storageError classifies a store failure. Not-found and validation errors
// keep their meaning; anything else is an external service failure.
func storageError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrExternalService) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrExternalService, err)
}

// externalError marks a provider failure as an external service failure.
func externalError(op string, err error) error {
	if errors.Is(err, domain.ErrExternalService) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrExternalService, err)
}
