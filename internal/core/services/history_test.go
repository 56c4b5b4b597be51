package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestHistoryRecorder_Record(t *testing.T) {
	store := memory.NewHistoryStore()
	recorder := NewHistoryRecorder(store)
	at := time.Date(2024, 5, 5, 9, 30, 0, 0, time.UTC)
	recorder.SetClock(func() time.Time { return at })

	sources := []domain.QueryResult{{ChunkIndex: 2, Text: "b", Score: 0.9}, {ChunkIndex: 0, Text: "a", Score: 0.4}}
	entry, err := recorder.Record(context.Background(), "alice", "doc-1", "why?", "because", sources)

	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, at, entry.CreatedAt)
	assert.Equal(t, sources, entry.Sources)

	// The entry keeps its own copy of the sources.
	sources[0].Text = "mutated"
	assert.Equal(t, "b", entry.Sources[0].Text)

	entries, err := recorder.List(context.Background(), "alice", "doc-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestHistoryRecorder_Record_Invalid(t *testing.T) {
	recorder := NewHistoryRecorder(memory.NewHistoryStore())

	_, err := recorder.Record(context.Background(), "alice", "doc-1", "why?", "", nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestHistoryRecorder_List(t *testing.T) {
	recorder := NewHistoryRecorder(memory.NewHistoryStore())
	recorder.SetClock(tickingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	for _, r := range []struct{ owner, doc, question string }{
		{"alice", "doc-1", "first"},
		{"alice", "doc-2", "second"},
		{"bob", "doc-1", "bob's"},
		{"alice", "doc-1", "third"},
	} {
		_, err := recorder.Record(ctx, r.owner, r.doc, r.question, "answer", nil)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		owner string
		docID string
		want  []string
	}{
		{"one document", "alice", "doc-1", []string{"third", "first"}},
		{"all documents", "alice", "", []string{"third", "second", "first"}},
		{"other owner", "bob", "", []string{"bob's"}},
		{"no entries", "carol", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := recorder.List(ctx, tt.owner, tt.docID)
			require.NoError(t, err)

			var got []string
			for _, e := range entries {
				got = append(got, e.Question)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHistoryRecorder_List_SameInstantNewestFirst(t *testing.T) {
	recorder := NewHistoryRecorder(memory.NewHistoryStore())
	at := time.Date(2024, 5, 5, 9, 30, 0, 0, time.UTC)
	recorder.SetClock(func() time.Time { return at })
	ctx := context.Background()

	var questions []string
	for i := 0; i < 20; i++ {
		q := fmt.Sprintf("question %02d", i)
		_, err := recorder.Record(ctx, "alice", "doc-1", q, "answer", nil)
		require.NoError(t, err)
		questions = append([]string{q}, questions...)
	}

	entries, err := recorder.List(ctx, "alice", "doc-1")
	require.NoError(t, err)

	var got []string
	for _, e := range entries {
		got = append(got, e.Question)
	}
	assert.Equal(t, questions, got)
}

func TestHistoryRecorder_List_RequiresOwner(t *testing.T) {
	recorder := NewHistoryRecorder(memory.NewHistoryStore())

	_, err := recorder.List(context.Background(), " ", "")

	assert.ErrorIs(t, err, domain.ErrValidation)
}
