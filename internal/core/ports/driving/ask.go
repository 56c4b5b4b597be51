package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskService answers questions about a single document.
type AskService interface {
	// Ask retrieves the topK most relevant chunks, generates a grounded answer
	// and records it in history. topK <= 0 uses the configured default.
	Ask(ctx context.Context, ownerID, documentID, question string, topK int) (*domain.AskResult, error)
}
