package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// AskService answers questions about a single document.
type AskService struct {
	docStore    driven.DocumentStore
	embedder    driven.EmbeddingService
	llm         driven.LLMService
	retriever   *Retriever
	assembler   *ContextAssembler
	recorder    *HistoryRecorder
	metrics     driven.Metrics
	maxTokens   int
	defaultTopK int
	now         func() time.Time
}

// NewAskService creates a new ask service.
// The embedder and llm parameters may be nil; Ask then fails with
// domain.ErrEmbeddingUnavailable or domain.ErrLLMUnavailable.
func NewAskService(
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	assembler *ContextAssembler,
	recorder *HistoryRecorder,
) *AskService {
	if assembler == nil {
		assembler = NewContextAssembler(nil, 0)
	}
	return &AskService{
		docStore:    docStore,
		embedder:    embedder,
		llm:         llm,
		retriever:   NewRetriever(docStore),
		assembler:   assembler,
		recorder:    recorder,
		maxTokens:   domain.DefaultAppSettings().LLM.MaxTokens,
		defaultTopK: domain.DefaultTopK,
		now:         time.Now,
	}
}

// SetMaxTokens caps the generated answer length. Zero leaves it to the provider.
func (s *AskService) SetMaxTokens(n int) {
	s.maxTokens = n
}

// SetDefaultTopK sets the K used when Ask is called with topK == 0.
func (s *AskService) SetDefaultTopK(k int) {
	if k > 0 {
		s.defaultTopK = k
	}
}

// SetMetrics sets the metrics recorder.
func (s *AskService) SetMetrics(m driven.Metrics) {
	s.metrics = m
}

// Ask embeds the question, retrieves the best chunks of the document,
// generates a grounded answer and records it in history. topK == 0 selects
// the default; a negative topK is rejected. Nothing is recorded on failure.
func (s *AskService) Ask(
	ctx context.Context, ownerID, documentID, question string, topK int,
) (result *domain.AskResult, err error) {
	start := s.now()
	defer func() {
		if s.metrics != nil {
			sources := 0
			if result != nil {
				sources = len(result.Sources)
			}
			s.metrics.ObserveAsk(sources, s.now().Sub(start), err)
		}
		if err != nil {
			logger.Warn("Ask failed: %v", err)
		}
	}()

	logger.Section("Ask")

	ownerID = strings.TrimSpace(ownerID)
	documentID = strings.TrimSpace(documentID)
	question = strings.TrimSpace(question)
	switch {
	case ownerID == "":
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrValidation)
	case documentID == "":
		return nil, fmt.Errorf("%w: document id is required", domain.ErrValidation)
	case question == "":
		return nil, fmt.Errorf("%w: question is required", domain.ErrValidation)
	case topK < 0:
		return nil, fmt.Errorf("%w: top-k must not be negative, got %d", domain.ErrValidation, topK)
	}
	if topK == 0 {
		topK = s.defaultTopK
	}
	if s.embedder == nil {
		return nil, embeddingUnavailable()
	}
	if s.llm == nil {
		return nil, llmUnavailable()
	}

	if _, err := ownedDocument(ctx, s.docStore, ownerID, documentID); err != nil {
		return nil, err
	}
	logger.Debug("Question: %q (doc=%s, k=%d)", question, documentID, topK)

	query, err := embedOne(ctx, s.embedder, question)
	if err != nil {
		return nil, err
	}

	ranked, err := s.retriever.Retrieve(ctx, documentID, query, topK)
	if err != nil {
		return nil, err
	}

	messages, sources := s.assembler.Assemble(question, ranked)

	done := logger.Timed("generate")
	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: s.maxTokens})
	done()
	if err != nil {
		return nil, externalError("generate answer", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("generate answer: %w: %s returned an empty answer",
			domain.ErrExternalService, s.llm.ModelName())
	}

	if s.recorder != nil {
		if _, err := s.recorder.Record(ctx, ownerID, documentID, question, answer, sources); err != nil {
			return nil, err
		}
	}

	return &domain.AskResult{Answer: answer, Sources: sources}, nil
}

// ownedDocument loads a document and hides it from anyone but its owner.
func ownedDocument(ctx context.Context, store driven.DocumentStore, ownerID, documentID string) (*domain.Document, error) {
	doc, err := store.GetDocument(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, storageError("load document", err)
	}
	if doc.OwnerID != ownerID {
		logger.Debug("Document %s is owned by another user", documentID)
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return doc, nil
}
