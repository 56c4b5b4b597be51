package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AIConfigValidator checks that configured AI providers are reachable.
type AIConfigValidator interface {
	ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error
	ValidateLLM(ctx context.Context, config *domain.LLMSettings) error
}
