package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// RateLimiter is a token bucket shared by every call through one wrapper.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter from settings. A burst below one is
// raised to one so that a single request can always proceed.
func NewRateLimiter(cfg domain.RateLimitSettings) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1)),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// RateLimitedEmbedding throttles an embedding service. A batch counts as one request.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *RateLimiter
}

var _ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)

// NewRateLimitedEmbedding wraps svc with limiter.
func NewRateLimitedEmbedding(svc driven.EmbeddingService, limiter *RateLimiter) *RateLimitedEmbedding {
	return &RateLimitedEmbedding{EmbeddingService: svc, limiter: limiter}
}

// Embed waits for a token, then embeds text.
func (e *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return e.EmbeddingService.Embed(ctx, text)
}

// EmbedBatch waits for a token, then embeds texts.
func (e *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return e.EmbeddingService.EmbedBatch(ctx, texts)
}

// RateLimitedLLM throttles an LLM service.
type RateLimitedLLM struct {
	driven.LLMService
	limiter *RateLimiter
}

var _ driven.LLMService = (*RateLimitedLLM)(nil)

// NewRateLimitedLLM wraps svc with limiter.
func NewRateLimitedLLM(svc driven.LLMService, limiter *RateLimiter) *RateLimitedLLM {
	return &RateLimitedLLM{LLMService: svc, limiter: limiter}
}

// Chat waits for a token, then chats.
func (l *RateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.LLMService.Chat(ctx, messages, opts)
}
