package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// HistoryService exposes answered questions.
type HistoryService interface {
	// List returns the owner's history newest first, optionally for one document.
	List(ctx context.Context, ownerID, documentID string) ([]domain.HistoryEntry, error)
}
