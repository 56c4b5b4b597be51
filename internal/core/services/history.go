package services

import (
	"context"
	"fmt"
	"strings"
	"time"


	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure HistoryRecorder implements the interface.
var _ driving.HistoryService = (*HistoryRecorder)(nil)

// HistoryRecorder appends answered questions and lists them back.
type HistoryRecorder struct {
	store driven.HistoryStore
	now   func() time.Time
}

// NewHistoryRecorder creates a history recorder over store.
func NewHistoryRecorder(store driven.HistoryStore) *HistoryRecorder {
	return &HistoryRecorder{store: store, now: time.Now}
}

// SetClock overrides the time source.
func (r *HistoryRecorder) SetClock(now func() time.Time) {
	r.now = now
}

// Record appends one entry holding the exact ordered sources used as context.
func (r *HistoryRecorder) Record(
	ctx context.Context, ownerID, documentID, question, answer string, sources []domain.QueryResult,
) (*domain.HistoryEntry, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	entry := &domain.HistoryEntry{
		ID:         id,
		OwnerID:    ownerID,
		DocumentID: documentID,
		Question:   question,
		Answer:     answer,
		Sources:    append([]domain.QueryResult{}, sources...),
		CreatedAt:  r.now().UTC(),
	}

	if err := r.store.Append(ctx, entry); err != nil {
		return nil, storageError("record history", err)
	}
	return entry, nil
}

// List returns the owner's entries newest first, optionally for one document.
func (r *HistoryRecorder) List(ctx context.Context, ownerID, documentID string) ([]domain.HistoryEntry, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrValidation)
	}

	entries, err := r.store.List(ctx, ownerID, strings.TrimSpace(documentID))
	if err != nil {
		return nil, storageError("list history", err)
	}
	domain.SortHistoryNewestFirst(entries)
	return entries, nil
}
