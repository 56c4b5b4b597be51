package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an append-only in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Append records a history entry.
func (s *HistoryStore) Append(_ context.Context, entry *domain.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	e := *entry
	e.Sources = append([]domain.QueryResult(nil), entry.Sources...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

// List returns the owner's entries newest first. An empty documentID matches every document.
func (s *HistoryStore) List(_ context.Context, ownerID, documentID string) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.HistoryEntry, 0)
	for _, e := range s.entries {
		if e.OwnerID != ownerID {
			continue
		}
		if documentID != "" && e.DocumentID != documentID {
			continue
		}
		e.Sources = append([]domain.QueryResult(nil), e.Sources...)
		out = append(out, e)
	}
	domain.SortHistoryNewestFirst(out)
	return out, nil
}
