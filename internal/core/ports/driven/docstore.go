package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// Chunks are append-only: there is no update path, and a document
// becomes visible together with all of its chunks or not at all.
type DocumentStore interface {
	// Commit validates and writes a document and all of its chunks in one
	// transaction. Malformed records are rejected with domain.ErrValidation.
	Commit(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListDocuments returns an owner's documents, newest first.
	ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error)
}
