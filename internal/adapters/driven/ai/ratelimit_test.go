package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	c.calls++
	return []float32{1}, nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int            { return 1 }
func (c *countingEmbedder) ModelName() string          { return "counting" }
func (c *countingEmbedder) Ping(context.Context) error { return nil }
func (c *countingEmbedder) Close() error               { return nil }

type countingLLM struct {
	calls int
}

func (c *countingLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	c.calls++
	return "chat", nil
}

func (c *countingLLM) ModelName() string          { return "counting" }
func (c *countingLLM) Ping(context.Context) error { return nil }
func (c *countingLLM) Close() error               { return nil }

func TestRateLimiter_BurstFloor(t *testing.T) {
	limiter := NewRateLimiter(domain.RateLimitSettings{RequestsPerSecond: 0.001, Burst: 0})

	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Wait(ctx))
}

func TestRateLimitedEmbedding_PassesThrough(t *testing.T) {
	inner := &countingEmbedder{}
	svc := NewRateLimitedEmbedding(inner, NewRateLimiter(domain.RateLimitSettings{RequestsPerSecond: 1000, Burst: 10}))

	vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)

	_, err = svc.Embed(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "counting", svc.ModelName())
}

func TestRateLimitedEmbedding_WaitHonoursContext(t *testing.T) {
	inner := &countingEmbedder{}
	svc := NewRateLimitedEmbedding(inner, NewRateLimiter(domain.RateLimitSettings{RequestsPerSecond: 0.001, Burst: 1}))

	_, err := svc.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.EmbedBatch(ctx, []string{"second"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Equal(t, 1, inner.calls, "throttled call must not reach the provider")
}

func TestRateLimitedLLM(t *testing.T) {
	inner := &countingLLM{}
	svc := NewRateLimitedLLM(inner, NewRateLimiter(domain.RateLimitSettings{RequestsPerSecond: 0.001, Burst: 1}))

	out, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "chat", out)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Chat(ctx, nil, driven.ChatOptions{})

	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
