package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes a user's documents.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// List returns the owner's documents, newest first.
func (s *DocumentService) List(ctx context.Context, ownerID string) ([]domain.Document, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrValidation)
	}

	docs, err := s.docStore.ListDocuments(ctx, ownerID)
	if err != nil {
		return nil, storageError("list documents", err)
	}
	domain.SortDocumentsNewestFirst(docs)
	return docs, nil
}

// Get returns one document. Documents owned by someone else are reported as not found.
func (s *DocumentService) Get(ctx context.Context, ownerID, documentID string) (*domain.Document, error) {
	ownerID = strings.TrimSpace(ownerID)
	documentID = strings.TrimSpace(documentID)
	if ownerID == "" || documentID == "" {
		return nil, fmt.Errorf("%w: owner id and document id are required", domain.ErrValidation)
	}
	return ownedDocument(ctx, s.docStore, ownerID, documentID)
}
