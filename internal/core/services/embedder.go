package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// embedBatch embeds texts in a single provider call and checks that the
// provider returned one non-empty vector per input, all of one dimension.
func embedBatch(ctx context.Context, embedder driven.EmbeddingService, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, externalError("embed chunks", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed chunks: %w: %s returned %d vectors for %d inputs",
			domain.ErrExternalService, embedder.ModelName(), len(vectors), len(texts))
	}

	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("embed chunks: %w: empty vector for input %d",
				domain.ErrExternalService, i)
		}
		if len(v) != dims {
			return nil, fmt.Errorf("embed chunks: %w: vector %d has %d dimensions, expected %d",
				domain.ErrExternalService, i, len(v), dims)
		}
	}
	return vectors, nil
}

// embedOne embeds a single text such as a question.
func embedOne(ctx context.Context, embedder driven.EmbeddingService, text string) ([]float32, error) {
	vector, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, externalError("embed question", err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("embed question: %w: empty vector", domain.ErrExternalService)
	}
	return vector, nil
}

func embeddingUnavailable() error {
	return fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrEmbeddingUnavailable)
}

func llmUnavailable() error {
	return fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrLLMUnavailable)
}
