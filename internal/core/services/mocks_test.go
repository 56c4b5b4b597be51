package services

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// mockEmbedder returns fixed vectors for known texts and a hash-derived
// vector for anything else.
type mockEmbedder struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	dims       int
	batchErr   error
	embedErr   error
	batchCalls int
	embedCalls int
	lastBatch  []string
	batchHook  func(texts []string) [][]float32
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{vectors: make(map[string][]float32), dims: dims}
}

func (m *mockEmbedder) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return append([]float32(nil), v...)
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum64()
	v := make([]float32, m.dims)
	for i := range v {
		v[i] = float32((sum>>(uint(i)%64))&0xff) + 1
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	m.lastBatch = append([]string(nil), texts...)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	if m.batchHook != nil {
		return m.batchHook(texts), nil
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error { return nil }

// mockLLM echoes a canned answer and records what it was sent.
type mockLLM struct {
	mu       sync.Mutex
	answer   string
	err      error
	calls    int
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

// failingDocStore fails Commit while reads go to the wrapped memory store.
type failingDocStore struct {
	*memory.DocumentStore
	commitErr error
}

func (s *failingDocStore) Commit(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	return s.DocumentStore.Commit(ctx, doc, chunks)
}

// failingHistoryStore rejects every append.
type failingHistoryStore struct {
	*memory.HistoryStore
	err error
}

func (s *failingHistoryStore) Append(context.Context, *domain.HistoryEntry) error {
	return s.err
}

type mockObjectStore struct {
	puts []string
	err  error
}

func (m *mockObjectStore) Put(_ context.Context, _ []byte, name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.puts = append(m.puts, name)
	return "objects/" + name, nil
}

type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) Extract(_ context.Context, _ []byte, _, _ string) (string, error) {
	return m.text, m.err
}

type metricEvent struct {
	count int
	err   error
}

type mockMetrics struct {
	ingests []metricEvent
	asks    []metricEvent
}

func (m *mockMetrics) ObserveIngest(chunks int, _ time.Duration, err error) {
	m.ingests = append(m.ingests, metricEvent{chunks, err})
}

func (m *mockMetrics) ObserveAsk(sources int, _ time.Duration, err error) {
	m.asks = append(m.asks, metricEvent{sources, err})
}

type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

// tickingClock returns successive instants one second apart.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Second)
		return t
	}
}

var (
	_ driven.EmbeddingService = (*mockEmbedder)(nil)
	_ driven.LLMService       = (*mockLLM)(nil)
	_ driven.DocumentStore    = (*failingDocStore)(nil)
	_ driven.HistoryStore     = (*failingHistoryStore)(nil)
	_ driven.ObjectStore      = (*mockObjectStore)(nil)
	_ driven.TextExtractor    = (*mockExtractor)(nil)
	_ driven.Metrics          = (*mockMetrics)(nil)
	_ driven.PromptStore      = (*mockPromptStore)(nil)
)
