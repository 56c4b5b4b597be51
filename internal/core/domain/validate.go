package domain

import (
	"fmt"
	"strings"
)

// Validate checks a document record before it is persisted.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil document", ErrValidation)
	}
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: document id is required", ErrValidation)
	}
	if strings.TrimSpace(d.OwnerID) == "" {
		return fmt.Errorf("%w: document owner is required", ErrValidation)
	}
	if d.TotalTextLength < 0 || d.ChunkCount < 0 {
		return fmt.Errorf("%w: negative document counters", ErrValidation)
	}
	if d.CreatedAt.IsZero() {
		return fmt.Errorf("%w: document created_at is required", ErrValidation)
	}
	return nil
}

// ValidateChunks checks that chunks form a complete, well-formed set for doc.
// Indexes must be 0..n-1 in order, and every embedding must share one
// non-zero dimension.
func ValidateChunks(doc *Document, chunks []Chunk) error {
	if doc.ChunkCount != len(chunks) {
		return fmt.Errorf("%w: document declares %d chunks, got %d",
			ErrValidation, doc.ChunkCount, len(chunks))
	}

	dims := -1
	for i := range chunks {
		c := &chunks[i]
		if c.DocumentID != doc.ID {
			return fmt.Errorf("%w: chunk %d belongs to %q, not %q", ErrValidation, i, c.DocumentID, doc.ID)
		}
		if c.Index != i {
			return fmt.Errorf("%w: chunk at position %d has index %d", ErrValidation, i, c.Index)
		}
		if strings.TrimSpace(c.Text) == "" {
			return fmt.Errorf("%w: chunk %d has empty text", ErrValidation, i)
		}
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %d has no embedding", ErrValidation, i)
		}
		if dims == -1 {
			dims = len(c.Embedding)
		} else if len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %d embedding has %d dimensions, expected %d",
				ErrValidation, i, len(c.Embedding), dims)
		}
	}
	return nil
}

// Validate checks a history entry before it is persisted.
func (h *HistoryEntry) Validate() error {
	if h == nil {
		return fmt.Errorf("%w: nil history entry", ErrValidation)
	}
	switch {
	case strings.TrimSpace(h.ID) == "":
		return fmt.Errorf("%w: history id is required", ErrValidation)
	case strings.TrimSpace(h.OwnerID) == "":
		return fmt.Errorf("%w: history owner is required", ErrValidation)
	case strings.TrimSpace(h.DocumentID) == "":
		return fmt.Errorf("%w: history document is required", ErrValidation)
	case strings.TrimSpace(h.Question) == "":
		return fmt.Errorf("%w: history question is required", ErrValidation)
	case strings.TrimSpace(h.Answer) == "":
		return fmt.Errorf("%w: history answer is required", ErrValidation)
	case h.CreatedAt.IsZero():
		return fmt.Errorf("%w: history created_at is required", ErrValidation)
	}
	return nil
}
