package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"


	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService turns document text into a queryable document.
//
// The pipeline is chunk, embed, then commit. Nothing is written until every
// chunk has an embedding, and the document and its chunks are committed in
// one store call, so a failed ingest leaves no trace.
type IngestService struct {
	docStore  driven.DocumentStore
	embedder  driven.EmbeddingService
	chunker   driven.Chunker
	objects   driven.ObjectStore
	extractor driven.TextExtractor
	metrics   driven.Metrics
	now       func() time.Time
}

// NewIngestService creates a new ingest service.
// The embedder may be nil, in which case every ingest fails with
// domain.ErrEmbeddingUnavailable.
func NewIngestService(
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	chunker driven.Chunker,
) *IngestService {
	return &IngestService{
		docStore: docStore,
		embedder: embedder,
		chunker:  chunker,
		now:      time.Now,
	}
}

// SetObjectStore sets where original uploads are kept.
func (s *IngestService) SetObjectStore(store driven.ObjectStore) {
	s.objects = store
}

// SetExtractor sets the text extractor used by IngestFile.
func (s *IngestService) SetExtractor(extractor driven.TextExtractor) {
	s.extractor = extractor
}

// SetMetrics sets the metrics recorder.
func (s *IngestService) SetMetrics(m driven.Metrics) {
	s.metrics = m
}

// SetClock overrides the time source.
func (s *IngestService) SetClock(now func() time.Time) {
	s.now = now
}

// Ingest chunks, embeds and stores raw text.
func (s *IngestService) Ingest(ctx context.Context, ownerID, text, filename string) (*domain.IngestResult, error) {
	return s.run(ctx, ownerID, filename, func() (string, string, error) {
		return text, "text/plain", nil
	}, nil)
}

// IngestFile extracts text from an uploaded file and ingests it. The original
// bytes go to the object store only once embedding has succeeded.
func (s *IngestService) IngestFile(
	ctx context.Context, ownerID string, content []byte, filename, mimeType string,
) (*domain.IngestResult, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("%w: no text extractor configured", domain.ErrConfiguration)
	}

	extract := func() (string, string, error) {
		done := logger.Timed("extract")
		defer done()
		text, err := s.extractor.Extract(ctx, content, mimeType, filename)
		if err != nil {
			return "", "", extractError(err)
		}
		return text, mimeType, nil
	}

	store := func() (string, error) {
		if s.objects == nil {
			return "", nil
		}
		ref, err := s.objects.Put(ctx, content, filename)
		if err != nil {
			return "", storageError("store original", err)
		}
		logger.Debug("Stored original as %s", ref)
		return ref, nil
	}

	return s.run(ctx, ownerID, filename, extract, store)
}

// run executes the ingest pipeline. source yields the text; store, when
// non-nil, persists the original and returns its reference.
func (s *IngestService) run(
	ctx context.Context,
	ownerID, filename string,
	source func() (text, mimeType string, err error),
	store func() (string, error),
) (result *domain.IngestResult, err error) {
	start := s.now()
	chunkCount := 0
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveIngest(chunkCount, s.now().Sub(start), err)
		}
		if err != nil {
			logger.Warn("Ingest failed: %v", err)
		}
	}()

	logger.Section("Ingest")

	ownerID = strings.TrimSpace(ownerID)
	filename = strings.TrimSpace(filepath.Base(filename))
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrValidation)
	}
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrValidation)
	}
	if s.embedder == nil {
		return nil, embeddingUnavailable()
	}

	logger.Debug("State: %s (%s)", domain.StateUploading, filename)

	text, mimeType, err := source()
	if err != nil {
		return nil, err
	}

	texts := s.chunker.Chunk(text)
	chunkCount = len(texts)
	logger.Debug("Chunked %d characters into %d chunks", utf8.RuneCountInString(text), len(texts))

	done := logger.Timed("embed")
	vectors, err := embedBatch(ctx, s.embedder, texts)
	done()
	if err != nil {
		return nil, err
	}

	objectRef := ""
	if store != nil {
		if objectRef, err = store(); err != nil {
			return nil, err
		}
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	doc := &domain.Document{
		ID:              id,
		OwnerID:         ownerID,
		Filename:        filename,
		MIMEType:        mimeType,
		ObjectRef:       objectRef,
		TotalTextLength: utf8.RuneCountInString(text),
		ChunkCount:      len(texts),
		CreatedAt:       now,
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = domain.Chunk{
			DocumentID: doc.ID,
			Index:      i,
			Text:       t,
			Embedding:  vectors[i],
			CreatedAt:  now,
		}
	}

	if err := s.docStore.Commit(ctx, doc, chunks); err != nil {
		return nil, storageError("commit document", err)
	}

	logger.Info("State: %s, document %s with %d chunks", domain.StateQueryable, doc.ID, doc.ChunkCount)
	return &domain.IngestResult{DocumentID: doc.ID, ChunkCount: doc.ChunkCount}, nil
}

// extractError treats unclassified extraction failures as bad input.
func extractError(err error) error {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrExternalService) {
		return fmt.Errorf("extract text: %w", err)
	}
	return fmt.Errorf("extract text: %w: %w", domain.ErrValidation, err)
}
