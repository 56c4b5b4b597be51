package services

import (
	"fmt"

	"github.com/google/uuid"
)

// newID returns a UUIDv7. Its text sorts by creation order within the
// process, so records sharing a timestamp still list newest first.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}
