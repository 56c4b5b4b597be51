package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// HistoryStore persists answered questions. Entries are never updated or deleted.
type HistoryStore interface {
	// Append validates and stores one entry atomically.
	Append(ctx context.Context, entry *domain.HistoryEntry) error

	// List returns an owner's entries newest first.
	// An empty documentID lists entries across all documents.
	List(ctx context.Context, ownerID, documentID string) ([]domain.HistoryEntry, error)
}
