package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validDocument(chunks int) *Document {
	return &Document{
		ID:              "doc-1",
		OwnerID:         "user-1",
		Filename:        "a.txt",
		TotalTextLength: 10,
		ChunkCount:      chunks,
		CreatedAt:       time.Now(),
	}
}

func validChunks(n int) []Chunk {
	chunks := make([]Chunk, n)
	for i := range chunks {
		chunks[i] = Chunk{
			DocumentID: "doc-1",
			Index:      i,
			Text:       "text",
			Embedding:  []float32{1, 0},
		}
	}
	return chunks
}

func TestDocument_Validate(t *testing.T) {
	assert.NoError(t, validDocument(0).Validate())

	var nilDoc *Document
	assert.ErrorIs(t, nilDoc.Validate(), ErrValidation)

	missingID := validDocument(0)
	missingID.ID = ""
	assert.ErrorIs(t, missingID.Validate(), ErrValidation)

	missingOwner := validDocument(0)
	missingOwner.OwnerID = "  "
	assert.ErrorIs(t, missingOwner.Validate(), ErrValidation)

	negative := validDocument(0)
	negative.ChunkCount = -1
	assert.ErrorIs(t, negative.Validate(), ErrValidation)

	noTime := validDocument(0)
	noTime.CreatedAt = time.Time{}
	assert.ErrorIs(t, noTime.Validate(), ErrValidation)
}

func TestValidateChunks(t *testing.T) {
	t.Run("valid set", func(t *testing.T) {
		assert.NoError(t, ValidateChunks(validDocument(3), validChunks(3)))
	})

	t.Run("empty set", func(t *testing.T) {
		assert.NoError(t, ValidateChunks(validDocument(0), nil))
	})

	t.Run("count mismatch", func(t *testing.T) {
		err := ValidateChunks(validDocument(2), validChunks(3))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("gap in indexes", func(t *testing.T) {
		chunks := validChunks(3)
		chunks[2].Index = 3
		assert.ErrorIs(t, ValidateChunks(validDocument(3), chunks), ErrValidation)
	})

	t.Run("foreign document", func(t *testing.T) {
		chunks := validChunks(2)
		chunks[1].DocumentID = "doc-2"
		assert.ErrorIs(t, ValidateChunks(validDocument(2), chunks), ErrValidation)
	})

	t.Run("blank text", func(t *testing.T) {
		chunks := validChunks(1)
		chunks[0].Text = " \n"
		assert.ErrorIs(t, ValidateChunks(validDocument(1), chunks), ErrValidation)
	})

	t.Run("missing embedding", func(t *testing.T) {
		chunks := validChunks(1)
		chunks[0].Embedding = nil
		assert.ErrorIs(t, ValidateChunks(validDocument(1), chunks), ErrValidation)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		chunks := validChunks(2)
		chunks[1].Embedding = []float32{1, 0, 0}
		assert.ErrorIs(t, ValidateChunks(validDocument(2), chunks), ErrValidation)
	})
}

func TestHistoryEntry_Validate(t *testing.T) {
	valid := func() *HistoryEntry {
		return &HistoryEntry{
			ID:         "h-1",
			OwnerID:    "user-1",
			DocumentID: "doc-1",
			Question:   "why?",
			Answer:     "because",
			CreatedAt:  time.Now(),
		}
	}

	assert.NoError(t, valid().Validate())

	var nilEntry *HistoryEntry
	assert.ErrorIs(t, nilEntry.Validate(), ErrValidation)

	for name, mutate := range map[string]func(*HistoryEntry){
		"id":       func(h *HistoryEntry) { h.ID = "" },
		"owner":    func(h *HistoryEntry) { h.OwnerID = "" },
		"document": func(h *HistoryEntry) { h.DocumentID = "" },
		"question": func(h *HistoryEntry) { h.Question = "" },
		"answer":   func(h *HistoryEntry) { h.Answer = " " },
		"time":     func(h *HistoryEntry) { h.CreatedAt = time.Time{} },
	} {
		t.Run(name, func(t *testing.T) {
			h := valid()
			mutate(h)
			assert.ErrorIs(t, h.Validate(), ErrValidation)
		})
	}
}
