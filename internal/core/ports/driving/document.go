package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentService exposes an owner's documents.
type DocumentService interface {
	// List returns the owner's documents, newest first.
	List(ctx context.Context, ownerID string) ([]domain.Document, error)

	// Get retrieves a document. Documents owned by someone else are reported
	// as domain.ErrNotFound.
	Get(ctx context.Context, ownerID, documentID string) (*domain.Document, error)
}
