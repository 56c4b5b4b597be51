package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestService turns uploaded documents into queryable chunk sets.
type IngestService interface {
	// Ingest chunks and embeds raw text and commits the document atomically.
	Ingest(ctx context.Context, ownerID, text, filename string) (*domain.IngestResult, error)

	// IngestFile stores the original bytes, extracts their text and ingests it.
	IngestFile(ctx context.Context, ownerID string, content []byte, filename, mimeType string) (*domain.IngestResult, error)
}
